package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tathya/tathya-cli/pkg/credentials"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/feed"
	"github.com/tathya/tathya-cli/pkg/formatter"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// PasswordReader reads a secret without echo
type PasswordReader func(label string) (string, error)

// AuthService handles login state
type AuthService struct {
	app          *App
	readPassword PasswordReader
}

// NewAuthService creates a new auth service
func NewAuthService(app *App, readPassword PasswordReader) *AuthService {
	return &AuthService{app: app, readPassword: readPassword}
}

// Login prompts for email and password and stores the new session
func (s *AuthService) Login(ctx context.Context, email string) error {
	out := s.app.Out

	if current := s.app.Session(); current != nil {
		out.Warning("Already logged in as %s", current.Username)
		confirm, err := s.app.In.Confirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	if email == "" {
		var err error
		email, err = s.app.In.ReadLine("Email: ")
		if err != nil {
			return err
		}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return cliErrors.ValidationError("email", "cannot be empty")
	}

	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return cliErrors.ValidationError("password", "cannot be empty")
	}

	out.Info("Authenticating...")
	resp, err := s.app.Store.Login(ctx, email, password)
	if err != nil {
		return cliErrors.CategorizeError(err)
	}

	creds := &credentials.Credentials{
		AccessToken: resp.Token,
		UserID:      resp.User.Key(),
		Username:    feed.DisplayName(resp.User),
		Email:       resp.User.Email,
		Role:        resp.User.Role,
	}
	if resp.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if creds.Role == "" {
		creds.Role = credentials.RoleUser
	}

	if path := s.app.opts.CredentialsPath; path != "" {
		if err := credentials.SaveTo(path, creds); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
	}
	s.app.SetSession(creds)
	logger.Info("Logged in", "user_id", creds.UserID)

	out.Success("✓ Login successful!")
	out.Info("Logged in as %s", formatter.Bold.Sprint(creds.Username))
	return nil
}

// Logout forgets the stored session
func (s *AuthService) Logout() error {
	if s.app.Session() == nil {
		s.app.Out.Warning("Not logged in")
		return nil
	}

	if path := s.app.opts.CredentialsPath; path != "" {
		if err := credentials.DeleteFrom(path); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}
	}
	s.app.SetSession(nil)

	s.app.Out.Success("✓ Logged out successfully")
	return nil
}

// Me prints the account behind the session
func (s *AuthService) Me(ctx context.Context) error {
	if s.app.Session() == nil {
		return cliErrors.AuthRequiredError("view your account")
	}

	user, err := s.app.Store.Me(ctx)
	if err != nil {
		cliErr := cliErrors.CategorizeError(err)
		if cliErr.Type == cliErrors.ErrorTypeSessionExpired {
			s.app.sessionExpired()
			s.app.Feed.SetSession(nil)
		}
		return cliErr
	}

	role := user.Role
	if role == "" {
		role = credentials.RoleUser
	}
	return s.app.Out.Record("Account", map[string]interface{}{
		"ID":           user.Key(),
		"Display Name": feed.DisplayName(*user),
		"Email":        user.Email,
		"Role":         role,
	})
}
