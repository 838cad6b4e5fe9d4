package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"sitecms/internal/model"
	"sitecms/internal/session"
)

// tokenBytes is the entropy of a session token (256 bits).
const tokenBytes = 32

// adminUserID is the fixed identifier of the configured administrator.
const adminUserID = 1

// SessionManager creates, resolves and invalidates sessions.
type SessionManager struct {
	store  session.Store
	creds  *Credentials
	maxAge time.Duration
}

// NewSessionManager creates a manager; sessions expire in the store after maxAge.
func NewSessionManager(store session.Store, creds *Credentials, maxAge time.Duration) *SessionManager {
	return &SessionManager{store: store, creds: creds, maxAge: maxAge}
}

// MaxAge is the lifetime of a session and its cookie.
func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// IssueToken returns a fresh token from crypto/rand, base64url encoded.
func IssueToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CreateSession stores a new session for user and returns its token.
func (m *SessionManager) CreateSession(ctx context.Context, user *model.User) (string, error) {
	token, err := IssueToken()
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if err := m.store.Save(ctx, token, user, m.maxAge); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "session created", "user", user.Username)
	return token, nil
}

// GetSession returns the user bound to token, or nil when it is unknown.
func (m *SessionManager) GetSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	return m.store.Get(ctx, token)
}

// DeleteSession invalidates token. Unknown tokens are ignored.
func (m *SessionManager) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return err
	}
	slog.InfoContext(ctx, "session deleted")
	return nil
}

// ValidateCredentials returns the admin user on an exact match, nil otherwise.
func (m *SessionManager) ValidateCredentials(username, password string) *model.User {
	if !m.creds.Matches(username, password) {
		return nil
	}
	return &model.User{
		ID:       adminUserID,
		Username: m.creds.Username,
		Email:    m.creds.Email,
		Role:     model.RoleAdmin,
	}
}
