// Package session holds the backends that map opaque session tokens to the
// authenticated user. Stores are created by the composition root and injected;
// there is no package-level store.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"sitecms/internal/model"
)

// Store persists token -> user mappings.
//
// Get returns (nil, nil) when the token is unknown or expired. Delete on an
// unknown token is a no-op.
type Store interface {
	Save(ctx context.Context, token string, user *model.User, ttl time.Duration) error
	Get(ctx context.Context, token string) (*model.User, error)
	Delete(ctx context.Context, token string) error
}

// Purger is implemented by stores that need expired entries removed out of band.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// HashToken returns the SHA-256 hex digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
