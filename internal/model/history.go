package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrImmutableRecord is returned by GORM hooks on append-only tables.
var ErrImmutableRecord = errors.New("record is immutable")

// HistoryAction is the kind of mutating operation recorded in the audit trail.
type HistoryAction string

const (
	HistoryActionPublish HistoryAction = "publish"
	HistoryActionUndo    HistoryAction = "undo"
)

// HistoryStatus is the outcome of a recorded operation.
type HistoryStatus string

const (
	HistoryStatusSuccess HistoryStatus = "success"
	HistoryStatusFailure HistoryStatus = "failure"
)

// PublishHistory is one append-only audit entry.
type PublishHistory struct {
	ID        uint          `json:"-" gorm:"primaryKey;autoIncrement"`
	UUID      uuid.UUID     `json:"id" gorm:"type:char(36);uniqueIndex;not null"`
	PageName  string        `json:"page_name" gorm:"size:100;not null;index:idx_history_page_created"`
	Action    HistoryAction `json:"action" gorm:"type:varchar(32);not null"`
	Status    HistoryStatus `json:"status" gorm:"type:varchar(20);not null"`
	Message   string        `json:"message" gorm:"type:text"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null;index:idx_history_page_created"`
	CreatedBy string        `json:"created_by" gorm:"size:255;not null"`
}

// TableName overrides the default table name.
func (PublishHistory) TableName() string { return "publish_history" }

// BeforeCreate sets UUID before creating the record.
func (h *PublishHistory) BeforeCreate(tx *gorm.DB) error {
	if h.UUID == uuid.Nil {
		h.UUID = uuid.New()
	}
	return nil
}

// BeforeUpdate keeps the audit trail append-only.
func (h *PublishHistory) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}
