package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupType describes why a snapshot was taken.
type BackupType string

const (
	BackupTypePrePublish BackupType = "pre-publish"
	BackupTypeManual     BackupType = "manual"
)

// BackupRecord is an immutable snapshot of a page's published content.
// The autoincrement ID preserves insertion order for records sharing a timestamp.
type BackupRecord struct {
	ID          uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	UUID        uuid.UUID  `json:"id" gorm:"type:char(36);uniqueIndex;not null"`
	PageName    string     `json:"page_name" gorm:"size:100;not null;index:idx_backup_page_created"`
	BackupType  BackupType `json:"backup_type" gorm:"type:varchar(32);not null"`
	BackupName  string     `json:"backup_name" gorm:"size:255;not null"`
	ContentData Document   `json:"content_data" gorm:"type:longtext;serializer:json"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;index:idx_backup_page_created"`
	CreatedBy   string     `json:"created_by" gorm:"size:255;not null"`
}

// TableName overrides the default table name.
func (BackupRecord) TableName() string { return "content_backups" }

// BeforeCreate sets UUID before creating the record.
func (b *BackupRecord) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}

// BeforeUpdate rejects any attempt to rewrite a snapshot.
func (b *BackupRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}
