package repository

import (
	"context"

	"gorm.io/gorm"

	"sitecms/internal/model"
)

// HistoryRepository defines the append-only publish audit trail.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.PublishHistory) error
	ListRecent(ctx context.Context, pageName string, limit int) ([]model.PublishHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Append inserts an audit entry.
func (r *historyRepository) Append(ctx context.Context, entry *model.PublishHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListRecent lists up to limit entries for a page, newest first.
func (r *historyRepository) ListRecent(ctx context.Context, pageName string, limit int) ([]model.PublishHistory, error) {
	var entries []model.PublishHistory
	if err := r.db.WithContext(ctx).
		Where("page_name = ?", pageName).
		Order(newestFirst).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
