package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sitecms/internal/model"
)

// ContentRepository defines draft and published document persistence.
// Finders return gorm.ErrRecordNotFound when the page has no document.
type ContentRepository interface {
	FindDraft(ctx context.Context, pageName string) (*model.ContentDraft, error)
	UpsertDraft(ctx context.Context, draft *model.ContentDraft) error
	FindPublished(ctx context.Context, pageName string) (*model.ContentPublished, error)
	UpsertPublished(ctx context.Context, published *model.ContentPublished) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

var upsertByPage = clause.OnConflict{
	Columns:   []clause.Column{{Name: "page_name"}},
	DoUpdates: clause.AssignmentColumns([]string{"content_data", "last_updated"}),
}

// FindDraft finds the draft of a page.
func (r *contentRepository) FindDraft(ctx context.Context, pageName string) (*model.ContentDraft, error) {
	var draft model.ContentDraft
	if err := r.db.WithContext(ctx).Where("page_name = ?", pageName).Take(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// UpsertDraft creates the draft or replaces its content.
func (r *contentRepository) UpsertDraft(ctx context.Context, draft *model.ContentDraft) error {
	return r.db.WithContext(ctx).Clauses(upsertByPage).Create(draft).Error
}

// FindPublished finds the published document of a page.
func (r *contentRepository) FindPublished(ctx context.Context, pageName string) (*model.ContentPublished, error) {
	var published model.ContentPublished
	if err := r.db.WithContext(ctx).Where("page_name = ?", pageName).Take(&published).Error; err != nil {
		return nil, err
	}
	return &published, nil
}

// UpsertPublished creates the published document or replaces its content.
func (r *contentRepository) UpsertPublished(ctx context.Context, published *model.ContentPublished) error {
	return r.db.WithContext(ctx).Clauses(upsertByPage).Create(published).Error
}
