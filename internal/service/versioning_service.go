package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"sitecms/internal/cache"
	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/repository"
)

const (
	historyBackupLimit  = 50
	historyBackupWindow = 7 * 24 * time.Hour
	historyEntryLimit   = 10
)

// Ack acknowledges a publish or undo.
type Ack struct {
	Page       string    `json:"page"`
	BackupName string    `json:"backupName,omitempty"`
	At         time.Time `json:"at"`
}

// History is the recent versioning activity of a page.
type History struct {
	Backups []model.BackupRecord   `json:"backups"`
	History []model.PublishHistory `json:"history"`
}

// VersioningService handles backups, publishing and undo of published content.
type VersioningService interface {
	CreateBackup(ctx context.Context, page string, snapshot model.Document, backupType model.BackupType, actor string) (*model.BackupRecord, error)
	Publish(ctx context.Context, page string, content model.Document, actor string) (*Ack, error)
	BackupPublished(ctx context.Context, page string, actor string) (*model.BackupRecord, error)
	PublishDraft(ctx context.Context, page string, actor string) (*Ack, error)
	Undo(ctx context.Context, page string, actor string) (*Ack, error)
	GetHistory(ctx context.Context, page string) (*History, error)
}

type versioningService struct {
	repos *repository.Repositories
	cache *cache.Client
	now   func() time.Time
}

// NewVersioningService creates a new versioning service. cache may be nil.
func NewVersioningService(repos *repository.Repositories, cache *cache.Client) VersioningService {
	return &versioningService{
		repos: repos,
		cache: cache,
		now:   time.Now,
	}
}

func (s *versioningService) newBackup(page string, snapshot model.Document, backupType model.BackupType, actor string, at time.Time) *model.BackupRecord {
	return &model.BackupRecord{
		PageName:    page,
		BackupType:  backupType,
		BackupName:  fmt.Sprintf("%s-%s-%d", page, backupType, at.UnixNano()),
		ContentData: snapshot.Clone(),
		CreatedAt:   at,
		CreatedBy:   actor,
	}
}

// CreateBackup stores an immutable snapshot. Drafts and published content are not touched.
func (s *versioningService) CreateBackup(ctx context.Context, page string, snapshot model.Document, backupType model.BackupType, actor string) (*model.BackupRecord, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is required", apperrors.ErrValidation)
	}
	backup := s.newBackup(page, snapshot, backupType, actor, s.now().UTC())
	if err := s.repos.Backups.Create(ctx, backup); err != nil {
		return nil, storageErr("create backup", err)
	}
	return backup, nil
}

// BackupPublished takes a manual snapshot of the current published document of page.
func (s *versioningService) BackupPublished(ctx context.Context, page string, actor string) (*model.BackupRecord, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	current, err := s.repos.Content.FindPublished(ctx, page)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("published content for %q: %w", page, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("read published", err)
	}
	return s.CreateBackup(ctx, page, current.ContentData, model.BackupTypeManual, actor)
}

// Publish replaces the published document of page. The previous published document,
// if any, is backed up in the same transaction.
func (s *versioningService) Publish(ctx context.Context, page string, content model.Document, actor string) (*Ack, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content to publish is empty", apperrors.ErrValidation)
	}

	now := s.now().UTC()
	ack := &Ack{Page: page, At: now}
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		current, err := tx.Content.FindPublished(ctx, page)
		switch {
		case err == nil:
			backup := s.newBackup(page, current.ContentData, model.BackupTypePrePublish, actor, now)
			if err := tx.Backups.Create(ctx, backup); err != nil {
				return fmt.Errorf("backup published: %w", err)
			}
			ack.BackupName = backup.BackupName
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("read published: %w", err)
		}

		if err := tx.Content.UpsertPublished(ctx, &model.ContentPublished{
			PageName:    page,
			ContentData: content.Clone(),
			LastUpdated: now,
		}); err != nil {
			return fmt.Errorf("write published: %w", err)
		}
		return tx.History.Append(ctx, &model.PublishHistory{
			PageName:  page,
			Action:    model.HistoryActionPublish,
			Status:    model.HistoryStatusSuccess,
			Message:   "content published",
			CreatedAt: now,
			CreatedBy: actor,
		})
	})
	if err != nil {
		s.recordFailure(ctx, page, model.HistoryActionPublish, actor, err)
		return nil, storageErr("publish", err)
	}

	invalidatePublished(ctx, s.cache, page)
	slog.InfoContext(ctx, "content published", "page", page, "actor", actor, "backup", ack.BackupName)
	return ack, nil
}

// PublishDraft publishes the current draft of page.
func (s *versioningService) PublishDraft(ctx context.Context, page string, actor string) (*Ack, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	draft, err := s.repos.Content.FindDraft(ctx, page)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("draft for %q: %w", page, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("read draft", err)
	}
	return s.Publish(ctx, page, draft.ContentData, actor)
}

// Undo restores the published document of page from its most recent backup.
// There is no redo; the restored snapshot is not itself backed up.
func (s *versioningService) Undo(ctx context.Context, page string, actor string) (*Ack, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ack := &Ack{Page: page, At: now}
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		backup, err := tx.Backups.Latest(ctx, page)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no backup for %q: %w", page, apperrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("find latest backup: %w", err)
		}
		ack.BackupName = backup.BackupName

		if err := tx.Content.UpsertPublished(ctx, &model.ContentPublished{
			PageName:    page,
			ContentData: backup.ContentData,
			LastUpdated: now,
		}); err != nil {
			return fmt.Errorf("restore published: %w", err)
		}
		return tx.History.Append(ctx, &model.PublishHistory{
			PageName:  page,
			Action:    model.HistoryActionUndo,
			Status:    model.HistoryStatusSuccess,
			Message:   "restored backup " + backup.BackupName,
			CreatedAt: now,
			CreatedBy: actor,
		})
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.recordFailure(ctx, page, model.HistoryActionUndo, actor, err)
		return nil, storageErr("undo", err)
	}

	invalidatePublished(ctx, s.cache, page)
	slog.InfoContext(ctx, "publish undone", "page", page, "actor", actor, "backup", ack.BackupName)
	return ack, nil
}

// GetHistory lists the page's backups from the last seven days and its latest audit entries.
func (s *versioningService) GetHistory(ctx context.Context, page string) (*History, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-historyBackupWindow)
	backups, err := s.repos.Backups.ListSince(ctx, page, since, historyBackupLimit)
	if err != nil {
		return nil, storageErr("list backups", err)
	}
	entries, err := s.repos.History.ListRecent(ctx, page, historyEntryLimit)
	if err != nil {
		return nil, storageErr("list history", err)
	}
	if backups == nil {
		backups = []model.BackupRecord{}
	}
	if entries == nil {
		entries = []model.PublishHistory{}
	}
	return &History{Backups: backups, History: entries}, nil
}

// recordFailure appends a failure entry outside the failed transaction. The cause
// only goes to the log; history is readable by API callers.
func (s *versioningService) recordFailure(ctx context.Context, page string, action model.HistoryAction, actor string, cause error) {
	slog.ErrorContext(ctx, "versioning operation failed", "page", page, "action", action, "error", cause)
	if err := s.repos.History.Append(ctx, &model.PublishHistory{
		PageName:  page,
		Action:    action,
		Status:    model.HistoryStatusFailure,
		Message:   string(action) + " failed",
		CreatedAt: s.now().UTC(),
		CreatedBy: actor,
	}); err != nil {
		slog.ErrorContext(ctx, "record failure in history", "page", page, "error", err)
	}
}
