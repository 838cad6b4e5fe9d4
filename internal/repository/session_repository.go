package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sitecms/internal/model"
)

// SessionRepository defines durable session persistence keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, session *model.AdminSession) error
	// FindActive returns nil, nil when no unexpired session has the hash.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*model.AdminSession, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.AdminSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindActive(ctx context.Context, tokenHash string, now time.Time) (*model.AdminSession, error) {
	var session model.AdminSession
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.AdminSession{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.AdminSession{})
	return res.RowsAffected, res.Error
}
