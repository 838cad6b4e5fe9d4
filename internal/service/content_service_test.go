package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/repository"
	"sitecms/internal/testutil"
)

// MockLiveSource is a mock implementation of LiveSource.
type MockLiveSource struct {
	mock.Mock
}

func (m *MockLiveSource) Fetch(ctx context.Context, page string) (model.Document, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Document), args.Error(1)
}

// MockContentRepository is a mock implementation of ContentRepository.
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) FindDraft(ctx context.Context, page string) (*model.ContentDraft, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentDraft), args.Error(1)
}

func (m *MockContentRepository) UpsertDraft(ctx context.Context, draft *model.ContentDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockContentRepository) FindPublished(ctx context.Context, page string) (*model.ContentPublished, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentPublished), args.Error(1)
}

func (m *MockContentRepository) UpsertPublished(ctx context.Context, published *model.ContentPublished) error {
	args := m.Called(ctx, published)
	return args.Error(0)
}

func newContentServiceTest(t *testing.T, live LiveSource) (ContentService, *repository.Repositories) {
	t.Helper()
	repos := repository.New(testutil.NewTestDB(t))
	return NewContentService(repos.Content, live, nil, time.Minute), repos
}

func TestContentService_ReadDraftEmpty(t *testing.T) {
	svc, _ := newContentServiceTest(t, new(MockLiveSource))

	doc, err := svc.ReadDraft(context.Background(), "home")
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestContentService_WriteReadRoundTrip(t *testing.T) {
	svc, _ := newContentServiceTest(t, new(MockLiveSource))
	ctx := context.Background()
	content := model.Document{
		"hero":  map[string]any{"title": "Fresh tortillas daily"},
		"items": []any{"al pastor", "carnitas"},
		"page":  "somewhere-else",
	}

	res, err := svc.WriteDraft(ctx, "home", content)
	require.NoError(t, err)
	assert.Equal(t, "home", res.Page)

	got, err := svc.ReadDraft(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "home", got[model.DocKeyPage])
	assert.NotEmpty(t, got[model.DocKeyLastUpdated])

	delete(got, model.DocKeyPage)
	delete(got, model.DocKeyLastUpdated)
	delete(content, model.DocKeyPage)
	assert.Equal(t, content, got)
}

func TestContentService_WriteDraftDoesNotMutateInput(t *testing.T) {
	svc, _ := newContentServiceTest(t, new(MockLiveSource))
	content := model.Document{"title": "Menu"}

	_, err := svc.WriteDraft(context.Background(), "menu", content)
	require.NoError(t, err)
	assert.Equal(t, model.Document{"title": "Menu"}, content)
}

func TestContentService_Validation(t *testing.T) {
	svc, _ := newContentServiceTest(t, new(MockLiveSource))
	ctx := context.Background()

	for _, page := range []string{"", "../etc", "Home", "a b", string(make([]byte, 101))} {
		_, err := svc.ReadDraft(ctx, page)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "page %q", page)
	}

	for _, page := range []string{"home", "-draft", "_menu", "summer-2026_specials"} {
		_, err := svc.ReadDraft(ctx, page)
		assert.NoError(t, err, "page %q", page)
	}

	_, err := svc.WriteDraft(ctx, "home", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestContentService_StorageFailure(t *testing.T) {
	repo := new(MockContentRepository)
	repo.On("FindDraft", mock.Anything, "home").Return(nil, errors.New("connection refused"))
	repo.On("UpsertDraft", mock.Anything, mock.AnythingOfType("*model.ContentDraft")).Return(errors.New("disk full"))
	svc := NewContentService(repo, new(MockLiveSource), nil, time.Minute)
	ctx := context.Background()

	_, err := svc.ReadDraft(ctx, "home")
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	_, err = svc.WriteDraft(ctx, "home", model.Document{"a": "b"})
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	_, err = svc.InitDraftFromLive(ctx, "home")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	repo.AssertExpectations(t)
}

func TestContentService_ReadPublished(t *testing.T) {
	svc, repos := newContentServiceTest(t, new(MockLiveSource))
	ctx := context.Background()

	_, err := svc.ReadPublished(ctx, "home")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repos.Content.UpsertPublished(ctx, &model.ContentPublished{
		PageName: "home", ContentData: model.Document{"title": "Live"}, LastUpdated: time.Now().UTC(),
	}))
	doc, err := svc.ReadPublished(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Live", doc["title"])
}

func TestContentService_InitDraftFromLive(t *testing.T) {
	live := new(MockLiveSource)
	live.On("Fetch", mock.Anything, "locations").Return(model.Document{"title": "Our locations"}, nil).Once()
	svc, _ := newContentServiceTest(t, live)
	ctx := context.Background()

	first, err := svc.InitDraftFromLive(ctx, "locations")
	require.NoError(t, err)
	assert.False(t, first.AlreadyExists)

	before, err := svc.ReadDraft(ctx, "locations")
	require.NoError(t, err)
	assert.Equal(t, "Our locations", before["title"])

	second, err := svc.InitDraftFromLive(ctx, "locations")
	require.NoError(t, err)
	assert.True(t, second.AlreadyExists)

	after, err := svc.ReadDraft(ctx, "locations")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	live.AssertExpectations(t)
}

func TestContentService_InitDraftFromLiveRemoteFailure(t *testing.T) {
	live := new(MockLiveSource)
	live.On("Fetch", mock.Anything, "catering").Return(nil, apperrors.ErrRemoteFetch)
	svc, repos := newContentServiceTest(t, live)
	ctx := context.Background()

	_, err := svc.InitDraftFromLive(ctx, "catering")
	assert.ErrorIs(t, err, apperrors.ErrRemoteFetch)

	_, err = repos.Content.FindDraft(ctx, "catering")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHTTPLiveSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/content/home":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"title":"Home"}`))
		case "/api/content/empty":
			_, _ = w.Write([]byte(`{}`))
		case "/api/content/broken":
			_, _ = w.Write([]byte(`not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	live := NewHTTPLiveSource(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	doc, err := live.Fetch(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Home", doc["title"])

	for _, page := range []string{"empty", "broken", "missing"} {
		_, err := live.Fetch(ctx, page)
		assert.ErrorIs(t, err, apperrors.ErrRemoteFetch, page)
	}

	_, err = NewHTTPLiveSource("", time.Second).Fetch(ctx, "home")
	assert.ErrorIs(t, err, apperrors.ErrRemoteFetch)
}
