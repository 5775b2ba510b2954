package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Session errors
	ErrorTypeAuthRequired   ErrorType = "auth_required"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeForbidden      ErrorType = "forbidden"

	// Validation errors
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFileNotFound ErrorType = "file_not_found"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	ErrorTypeUnknown ErrorType = "unknown"
)

// StatusCoder is implemented by transport errors that carry an HTTP status
type StatusCoder interface {
	HTTPStatus() int
}

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil && e.Type != ErrorTypeUnknown {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// WithCause attaches the underlying error
func (e *CLIError) WithCause(cause error) *CLIError {
	e.Cause = cause
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// AuthRequiredError is raised locally when a mutating action has no viewer.
// No request is sent.
func AuthRequiredError(action string) *CLIError {
	err := NewCLIError(ErrorTypeAuthRequired, fmt.Sprintf("You must be logged in to %s", action), nil)
	err.Suggestion = "Run 'tathya auth login' first."
	return err
}

// SessionExpiredError is raised when the store rejects the session
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.StatusCode = http.StatusUnauthorized
	err.Suggestion = "Run 'tathya auth login' to sign in again."
	return err
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check your connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *CLIError {
	if message == "" {
		message = "Access denied"
	}
	err := NewCLIError(ErrorTypeForbidden, message, nil)
	err.StatusCode = http.StatusForbidden
	err.Suggestion = "This action needs a moderator account."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	return NewCLIError(ErrorTypeValidation, fmt.Sprintf("Validation error: %s - %s", field, reason), nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Suggestion = "Check the file path and try again."
	return err
}

// ServerError creates a server error
func ServerError(status int) *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.StatusCode = status
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	err := NewCLIError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", resourceType, identifier), nil)
	err.StatusCode = http.StatusNotFound
	return err
}

// RateLimitError creates a rate limit error
func RateLimitError() *CLIError {
	err := NewCLIError(ErrorTypeRateLimit, "Rate limit exceeded. Too many requests.", nil)
	err.StatusCode = http.StatusTooManyRequests
	err.Suggestion = "Wait a minute before trying again."
	return err
}

// IsType reports whether err categorizes as t
func IsType(err error, t ErrorType) bool {
	if err == nil {
		return false
	}
	return CategorizeError(err).Type == t
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return fromStatus(sc.HTTPStatus(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError().WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return NetworkError("Request cancelled").WithCause(err)
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.").WithCause(err)
	case strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not resolve the server address.").WithCause(err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError().WithCause(err)
	case strings.Contains(errMsg, "EOF"), strings.Contains(errMsg, "connection reset"):
		return NetworkError("Connection to server was interrupted.").WithCause(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

func fromStatus(status int, cause error) *CLIError {
	switch {
	case status == http.StatusUnauthorized:
		return SessionExpiredError().WithCause(cause)
	case status == http.StatusForbidden:
		return ForbiddenError("").WithCause(cause)
	case status == http.StatusNotFound:
		return NotFoundError("Resource", "unknown").WithCause(cause)
	case status == http.StatusTooManyRequests:
		return RateLimitError().WithCause(cause)
	case status >= 500:
		return ServerError(status).WithCause(cause)
	case status >= 400:
		err := NewCLIError(ErrorTypeValidation, "Request rejected", cause)
		err.StatusCode = status
		return err
	default:
		return NewCLIError(ErrorTypeUnknown, cause.Error(), cause)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Error())
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
