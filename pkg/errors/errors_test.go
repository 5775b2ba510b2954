package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) HTTPStatus() int { return e.code }

func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "Test error: underlying error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil).WithSuggestion("Try something else")

	assert.True(t, err.HasSuggestion())
	assert.Equal(t, "Try something else", err.Suggestion)
}

func TestAuthRequiredError(t *testing.T) {
	err := AuthRequiredError("like posts")

	assert.Equal(t, ErrorTypeAuthRequired, err.Type)
	assert.Contains(t, err.Message, "like posts")
	assert.Contains(t, err.Suggestion, "auth login")
}

func TestCategorizeByStatus(t *testing.T) {
	testCases := []struct {
		code int
		want ErrorType
	}{
		{http.StatusUnauthorized, ErrorTypeSessionExpired},
		{http.StatusForbidden, ErrorTypeForbidden},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusBadGateway, ErrorTypeServer},
		{http.StatusBadRequest, ErrorTypeValidation},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			wrapped := fmt.Errorf("toggle like: %w", statusErr{tc.code})
			got := CategorizeError(wrapped)
			assert.Equal(t, tc.want, got.Type)
			assert.True(t, IsType(wrapped, tc.want))
		})
	}
}

func TestCategorizeTransportErrors(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, CategorizeError(context.DeadlineExceeded).Type)
	assert.Equal(t, ErrorTypeNetwork, CategorizeError(context.Canceled).Type)
	assert.Equal(t, ErrorTypeNetwork, CategorizeError(errors.New("dial tcp: connection refused")).Type)
	assert.Equal(t, ErrorTypeUnknown, CategorizeError(errors.New("weird")).Type)
	assert.Nil(t, CategorizeError(nil))
}

func TestCategorizeKeepsCLIError(t *testing.T) {
	orig := AuthRequiredError("comment")
	got := CategorizeError(fmt.Errorf("wrap: %w", orig))
	assert.Same(t, orig, got)
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))

	msg := FormatError(AuthRequiredError("like posts"))
	assert.Contains(t, msg, "Error (auth_required)")
	assert.Contains(t, msg, "Suggestion:")

	msg = FormatError(errors.New("plain"))
	assert.Equal(t, "Error: plain\n", msg)
}
