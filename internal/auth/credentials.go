package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"sitecms/internal/config"
)

// Fallbacks used when ADMIN_USERNAME or ADMIN_PASSWORD is unset. They are public
// knowledge and must be overridden outside local development.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

const bcryptCost = 10

// Credentials are the resolved administrator credentials.
type Credentials struct {
	Username string
	Email    string
	// PasswordHash is a bcrypt hash; the plaintext is never kept.
	PasswordHash []byte

	usedDefaults bool
}

// UsesDefaults reports whether a well-known default was substituted.
func (c *Credentials) UsesDefaults() bool {
	return c.usedDefaults
}

// Matches reports whether username and password are exactly the admin credentials.
func (c *Credentials) Matches(username, password string) bool {
	if username != c.Username {
		return false
	}
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) == nil
}

// ResolveAdminCredentials reads the admin credentials from cfg, substituting the
// defaults for missing values. ADMIN_PASSWORD_HASH takes precedence over ADMIN_PASSWORD.
func ResolveAdminCredentials(cfg *config.Config) (*Credentials, error) {
	creds := &Credentials{Username: cfg.AdminUsername, Email: cfg.AdminEmail}
	if creds.Username == "" {
		creds.Username = DefaultAdminUsername
		creds.usedDefaults = true
	}

	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		creds.PasswordHash = []byte(cfg.AdminPasswordHash)
		return creds, nil
	}

	password := cfg.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
		creds.usedDefaults = true
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	creds.PasswordHash = hash
	return creds, nil
}
