package session

import (
	"context"
	"fmt"
	"time"

	"sitecms/internal/model"
	"sitecms/internal/repository"
)

// DatabaseStore keeps sessions in the admin_sessions table.
type DatabaseStore struct {
	repo repository.SessionRepository
	now  func() time.Time
}

var (
	_ Store  = (*DatabaseStore)(nil)
	_ Purger = (*DatabaseStore)(nil)
)

// farFuture stands in for "no expiry" since expires_at is NOT NULL.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDatabaseStore creates a store backed by the session repository.
func NewDatabaseStore(repo repository.SessionRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo, now: time.Now}
}

func (s *DatabaseStore) Save(ctx context.Context, token string, user *model.User, ttl time.Duration) error {
	now := s.now().UTC()
	expires := farFuture
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	row := &model.AdminSession{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *DatabaseStore) Get(ctx context.Context, token string) (*model.User, error) {
	row, err := s.repo.FindActive(ctx, HashToken(token), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return row.User(), nil
}

func (s *DatabaseStore) Delete(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}
