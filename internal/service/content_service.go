package service

import (
	"context"
	"encoding/json"
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

// TimestampFormat is the lastUpdated format, as produced by Date.toISOString.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// WriteResult acknowledges a draft write.
type WriteResult struct {
	Page        string    `json:"page"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// InitResult reports the outcome of seeding a draft from the live site.
type InitResult struct {
	AlreadyExists bool           `json:"alreadyExists"`
	Content       model.Document `json:"content,omitempty"`
}

// ContentService handles draft and published document access.
type ContentService interface {
	ReadDraft(ctx context.Context, page string) (model.Document, error)
	WriteDraft(ctx context.Context, page string, content model.Document) (*WriteResult, error)
	ReadPublished(ctx context.Context, page string) (model.Document, error)
	InitDraftFromLive(ctx context.Context, page string) (*InitResult, error)
}

type contentService struct {
	repo     repository.ContentRepository
	live     LiveSource
	cache    *cache.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewContentService creates a new content service. cache may be nil.
func NewContentService(repo repository.ContentRepository, live LiveSource, cache *cache.Client, cacheTTL time.Duration) ContentService {
	return &contentService{
		repo:     repo,
		live:     live,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Cached published documents are keyed by a per-page generation. Publish and undo
// bump the generation after commit, so a reader that loaded the previous row
// before the commit can only fill a key that is no longer read.
func publishedGenerationKey(page string) string {
	return "published-gen:" + page
}

func publishedCacheKey(page, generation string) string {
	return "published:" + page + ":" + generation
}

func publishedGeneration(ctx context.Context, c *cache.Client, page string) string {
	gen, _ := c.Get(ctx, publishedGenerationKey(page))
	if len(gen) == 0 {
		return "0"
	}
	return string(gen)
}

// invalidatePublished retires every cached copy of page's published document.
func invalidatePublished(ctx context.Context, c *cache.Client, page string) {
	_, _ = c.Incr(ctx, publishedGenerationKey(page))
}

// ReadDraft returns the draft of page, or an empty document when there is none.
func (s *contentService) ReadDraft(ctx context.Context, page string) (model.Document, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	draft, err := s.repo.FindDraft(ctx, page)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Document{}, nil
	}
	if err != nil {
		return nil, storageErr("read draft", err)
	}
	if draft.ContentData == nil {
		return model.Document{}, nil
	}
	return draft.ContentData, nil
}

// WriteDraft upserts the draft of page. The stored document always carries the
// page name and write time, whatever the caller put in those fields.
func (s *contentService) WriteDraft(ctx context.Context, page string, content model.Document) (*WriteResult, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("%w: content body is required", apperrors.ErrValidation)
	}
	now := s.now().UTC()
	doc := content.Clone()
	doc[model.DocKeyLastUpdated] = now.Format(TimestampFormat)
	doc[model.DocKeyPage] = page

	if err := s.repo.UpsertDraft(ctx, &model.ContentDraft{
		PageName:    page,
		ContentData: doc,
		LastUpdated: now,
	}); err != nil {
		return nil, storageErr("write draft", err)
	}
	slog.InfoContext(ctx, "draft saved", "page", page)
	return &WriteResult{Page: page, LastUpdated: now}, nil
}

// ReadPublished returns the live document of page, or ErrNotFound.
func (s *contentService) ReadPublished(ctx context.Context, page string) (model.Document, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	gen := publishedGeneration(ctx, s.cache, page)
	if data, _ := s.cache.Get(ctx, publishedCacheKey(page, gen)); data != nil {
		var cached model.Document
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	published, err := s.repo.FindPublished(ctx, page)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("published content for %q: %w", page, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("read published", err)
	}

	if payload, err := json.Marshal(published.ContentData); err == nil {
		_ = s.cache.Set(ctx, publishedCacheKey(page, gen), payload, s.cacheTTL)
	}
	return published.ContentData, nil
}

// InitDraftFromLive seeds the draft of page from the live site when no draft exists.
// An existing draft is left untouched and reported with AlreadyExists.
func (s *contentService) InitDraftFromLive(ctx context.Context, page string) (*InitResult, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	_, err := s.repo.FindDraft(ctx, page)
	if err == nil {
		return &InitResult{AlreadyExists: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("check draft", err)
	}

	doc, err := s.live.Fetch(ctx, page)
	if err != nil {
		slog.WarnContext(ctx, "live content fetch failed", "page", page, "error", err)
		return nil, err
	}
	if _, err := s.WriteDraft(ctx, page, doc); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "draft initialized from live site", "page", page)
	return &InitResult{Content: doc}, nil
}
