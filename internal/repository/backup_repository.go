package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sitecms/internal/model"
)

// BackupRepository defines append-only backup persistence.
type BackupRepository interface {
	Create(ctx context.Context, backup *model.BackupRecord) error
	// Latest returns the newest backup of a page, or gorm.ErrRecordNotFound.
	Latest(ctx context.Context, pageName string) (*model.BackupRecord, error)
	ListSince(ctx context.Context, pageName string, since time.Time, limit int) ([]model.BackupRecord, error)
}

type backupRepository struct {
	db *gorm.DB
}

// NewBackupRepository creates a new backup repository.
func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepository{db: db}
}

// newestFirst orders by insertion. created_at only bounds time windows, since the
// wall clock may step back between inserts.
const newestFirst = "id DESC"

// Create inserts a backup record.
func (r *backupRepository) Create(ctx context.Context, backup *model.BackupRecord) error {
	return r.db.WithContext(ctx).Create(backup).Error
}

// Latest finds the most recently inserted backup for a page.
func (r *backupRepository) Latest(ctx context.Context, pageName string) (*model.BackupRecord, error) {
	var backup model.BackupRecord
	if err := r.db.WithContext(ctx).
		Where("page_name = ?", pageName).
		Order(newestFirst).
		Take(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

// ListSince lists up to limit backups created at or after since, newest first.
func (r *backupRepository) ListSince(ctx context.Context, pageName string, since time.Time, limit int) ([]model.BackupRecord, error) {
	var backups []model.BackupRecord
	if err := r.db.WithContext(ctx).
		Where("page_name = ? AND created_at >= ?", pageName, since).
		Order(newestFirst).
		Limit(limit).
		Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}
