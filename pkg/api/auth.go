package api

import (
	"context"
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/tathya/tathya-cli/pkg/logger"
)

// Login authenticates with email and password
func (s *Store) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	logger.Debug("Attempting login", "email", email)

	reqBody, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post("/api/auth/login")

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(resp.Body(), &loginResp); err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "username", loginResp.User.Username)
	return &loginResp, nil
}

// Me returns the user behind the current session
func (s *Store) Me(ctx context.Context) (*RawUser, error) {
	logger.Debug("Fetching current user")

	resp, err := s.http.R().
		SetContext(ctx).
		Get("/api/auth/me")

	if err := CheckResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}

	var response struct {
		User RawUser `json:"user"`
	}
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return nil, err
	}

	return &response.User, nil
}
