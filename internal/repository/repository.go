package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories that must share a transaction.
type Repositories struct {
	db       *gorm.DB
	Content  ContentRepository
	Backups  BackupRepository
	History  HistoryRepository
	Sessions SessionRepository
}

// New builds every GORM-backed repository on db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		Content:  NewContentRepository(db),
		Backups:  NewBackupRepository(db),
		History:  NewHistoryRepository(db),
		Sessions: NewSessionRepository(db),
	}
}

// WithTransaction executes fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(ctx, New(txDB))
	})
}
