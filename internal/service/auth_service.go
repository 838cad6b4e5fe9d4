package service

import (
	"context"
	"fmt"
	"log/slog"

	"sitecms/internal/auth"
	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
)

// ErrInvalidCredentials is returned when username or password is incorrect.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", apperrors.ErrUnauthorized)

// SessionManager is the part of auth.SessionManager the auth service needs.
type SessionManager interface {
	ValidateCredentials(username, password string) *model.User
	CreateSession(ctx context.Context, user *model.User) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

var _ SessionManager = (*auth.SessionManager)(nil)

// AuthService handles login and logout.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	sessions SessionManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(sessions SessionManager) AuthService {
	return &authService{sessions: sessions}
}

// Login checks the admin credentials and opens a session.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user := s.sessions.ValidateCredentials(username, password)
	if user == nil {
		slog.WarnContext(ctx, "login rejected", "username", username)
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return "", nil, storageErr("create session", err)
	}
	return token, user, nil
}

// Logout ends the session identified by token. Unknown tokens are not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return storageErr("delete session", err)
	}
	return nil
}
