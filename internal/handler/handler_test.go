package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/service"
)

// MockContentService is a mock implementation of service.ContentService.
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) ReadDraft(ctx context.Context, page string) (model.Document, error) {
	args := m.Called(ctx, page)
	doc, _ := args.Get(0).(model.Document)
	return doc, args.Error(1)
}

func (m *MockContentService) WriteDraft(ctx context.Context, page string, content model.Document) (*service.WriteResult, error) {
	args := m.Called(ctx, page, content)
	res, _ := args.Get(0).(*service.WriteResult)
	return res, args.Error(1)
}

func (m *MockContentService) ReadPublished(ctx context.Context, page string) (model.Document, error) {
	args := m.Called(ctx, page)
	doc, _ := args.Get(0).(model.Document)
	return doc, args.Error(1)
}

func (m *MockContentService) InitDraftFromLive(ctx context.Context, page string) (*service.InitResult, error) {
	args := m.Called(ctx, page)
	res, _ := args.Get(0).(*service.InitResult)
	return res, args.Error(1)
}

// MockVersioningService is a mock implementation of service.VersioningService.
type MockVersioningService struct {
	mock.Mock
}

func (m *MockVersioningService) CreateBackup(ctx context.Context, page string, snapshot model.Document, backupType model.BackupType, actor string) (*model.BackupRecord, error) {
	args := m.Called(ctx, page, snapshot, backupType, actor)
	rec, _ := args.Get(0).(*model.BackupRecord)
	return rec, args.Error(1)
}

func (m *MockVersioningService) BackupPublished(ctx context.Context, page string, actor string) (*model.BackupRecord, error) {
	args := m.Called(ctx, page, actor)
	rec, _ := args.Get(0).(*model.BackupRecord)
	return rec, args.Error(1)
}

func (m *MockVersioningService) Publish(ctx context.Context, page string, content model.Document, actor string) (*service.Ack, error) {
	args := m.Called(ctx, page, content, actor)
	ack, _ := args.Get(0).(*service.Ack)
	return ack, args.Error(1)
}

func (m *MockVersioningService) PublishDraft(ctx context.Context, page string, actor string) (*service.Ack, error) {
	args := m.Called(ctx, page, actor)
	ack, _ := args.Get(0).(*service.Ack)
	return ack, args.Error(1)
}

func (m *MockVersioningService) Undo(ctx context.Context, page string, actor string) (*service.Ack, error) {
	args := m.Called(ctx, page, actor)
	ack, _ := args.Get(0).(*service.Ack)
	return ack, args.Error(1)
}

func (m *MockVersioningService) GetHistory(ctx context.Context, page string) (*service.History, error) {
	args := m.Called(ctx, page)
	h, _ := args.Get(0).(*service.History)
	return h, args.Error(1)
}

func newContext(method, target, body string, page string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("page")
	c.SetParamValues(page)
	return c, rec
}

// run invokes h and renders any returned error the way the server does.
func run(c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		ErrorHandler(err, c)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"domain unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
		{"storage detail hidden", fmt.Errorf("%w: dial tcp 10.0.0.3:3306", apperrors.ErrStorage), http.StatusInternalServerError, "STORAGE_FAILURE", "storage failure"},
		{"echo route not found", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Not Found"},
		{"echo body limit", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request Entity Too Large"},
		{"prepared response", respondError(fmt.Errorf("%w: page name", apperrors.ErrValidation)), http.StatusBadRequest, "VALIDATION_ERROR", "validation failed: page name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "", "")
			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestContentHandler_GetDraft(t *testing.T) {
	svc := new(MockContentService)
	svc.On("ReadDraft", mock.Anything, "home").Return(model.Document{"title": "Welcome"}, nil)
	h := NewContentHandler(svc)

	c, rec := newContext(http.MethodGet, "/api/content/home", "", "home")
	run(c, h.GetDraft)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Welcome"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestContentHandler_SaveDraft(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockContentService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "saves object body",
			body: `{"title":"Menu","items":[1,2]}`,
			setupMock: func(m *MockContentService) {
				m.On("WriteDraft", mock.Anything, "menu", model.Document{"title": "Menu", "items": []any{float64(1), float64(2)}}).
					Return(&service.WriteResult{Page: "menu", LastUpdated: at}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"page":"menu","lastUpdated":"2026-03-01T12:00:00.000Z"}`,
		},
		{
			name:       "rejects non-object body",
			body:       `[1,2,3]`,
			setupMock:  func(m *MockContentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: `{"title":"Menu"}`,
			setupMock: func(m *MockContentService) {
				m.On("WriteDraft", mock.Anything, "menu", mock.Anything).
					Return(nil, fmt.Errorf("upsert draft: %w", apperrors.ErrStorage))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockContentService)
			tt.setupMock(svc)
			h := NewContentHandler(svc)

			c, rec := newContext(http.MethodPost, "/api/content/menu", tt.body, "menu")
			run(c, h.SaveDraft)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestContentHandler_InitFromLive(t *testing.T) {
	svc := new(MockContentService)
	svc.On("InitDraftFromLive", mock.Anything, "about").Return(&service.InitResult{AlreadyExists: true}, nil).Once()
	svc.On("InitDraftFromLive", mock.Anything, "contact").Return(nil, fmt.Errorf("fetch: %w", apperrors.ErrRemoteFetch)).Once()
	h := NewContentHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/init-content/about", "", "about")
	run(c, h.InitFromLive)
	assert.Equal(t, http.StatusOK, rec.Code)
	var res InitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyExists)

	c, rec = newContext(http.MethodPost, "/api/init-content/contact", "", "contact")
	run(c, h.InitFromLive)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "LIVE_CONTENT_NOT_FOUND", decodeError(t, rec).Code)
}

func TestVersioningHandler_Publish(t *testing.T) {
	editor := &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
	ack := &service.Ack{Page: "home", At: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	tests := []struct {
		name       string
		body       string
		user       *model.User
		setupMock  func(*MockVersioningService)
		wantStatus int
	}{
		{
			name: "empty body publishes the draft",
			user: editor,
			setupMock: func(m *MockVersioningService) {
				m.On("PublishDraft", mock.Anything, "home", "admin").Return(ack, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "body is published as given",
			body: `{"title":"New"}`,
			user: editor,
			setupMock: func(m *MockVersioningService) {
				m.On("Publish", mock.Anything, "home", model.Document{"title": "New"}, "admin").Return(ack, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no user",
			setupMock:  func(m *MockVersioningService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing draft",
			user: editor,
			setupMock: func(m *MockVersioningService) {
				m.On("PublishDraft", mock.Anything, "home", "admin").Return(nil, fmt.Errorf("draft home: %w", apperrors.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockVersioningService)
			tt.setupMock(svc)
			h := NewVersioningHandler(svc)

			c, rec := newContext(http.MethodPost, "/api/publish/home", tt.body, "home")
			if tt.user != nil {
				c.Set("user", tt.user)
			}
			run(c, h.Publish)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestVersioningHandler_Backup(t *testing.T) {
	svc := new(MockVersioningService)
	svc.On("BackupPublished", mock.Anything, "home", "admin").
		Return(&model.BackupRecord{PageName: "home", BackupType: model.BackupTypeManual, BackupName: "home-manual-1"}, nil)
	h := NewVersioningHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/backup/home", "", "home")
	c.Set("user", &model.User{Username: "admin"})
	run(c, h.Backup)
	assert.Equal(t, http.StatusOK, rec.Code)
	var res BackupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "home-manual-1", res.Backup.BackupName)
	svc.AssertExpectations(t)

	c, rec = newContext(http.MethodPost, "/api/backup/home", "", "home")
	run(c, h.Backup)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVersioningHandler_UndoAndHistory(t *testing.T) {
	svc := new(MockVersioningService)
	svc.On("Undo", mock.Anything, "home", "admin").Return(nil, fmt.Errorf("undo home: %w", apperrors.ErrNotFound))
	svc.On("GetHistory", mock.Anything, "home").Return(&service.History{
		Backups: []model.BackupRecord{},
		History: []model.PublishHistory{},
	}, nil)
	h := NewVersioningHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/undo/home", "", "home")
	c.Set("user", &model.User{Username: "admin"})
	run(c, h.Undo)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodGet, "/api/history/home", "", "home")
	run(c, h.History)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"backups":[],"history":[]}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestAuthHandler_VerifyWithoutUser(t *testing.T) {
	h := NewAuthHandler(nil, nil)

	c, rec := newContext(http.MethodGet, "/api/auth/verify", "", "")
	run(c, h.Verify)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
