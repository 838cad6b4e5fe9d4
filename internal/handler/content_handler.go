package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/service"
)

// ContentHandler handles draft and published content endpoints.
type ContentHandler struct {
	contentService service.ContentService
}

// NewContentHandler creates a new content handler.
func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// SaveResponse acknowledges a draft write.
type SaveResponse struct {
	Success     bool   `json:"success"`
	Page        string `json:"page"`
	LastUpdated string `json:"lastUpdated"`
}

// InitResponse reports the outcome of a draft bootstrap.
type InitResponse struct {
	Success       bool   `json:"success"`
	AlreadyExists bool   `json:"alreadyExists"`
	Message       string `json:"message"`
}

// bindDocument decodes a JSON object body. Path parameters are not merged in.
func bindDocument(c echo.Context) (model.Document, error) {
	var doc model.Document
	if err := (&echo.DefaultBinder{}).BindBody(c, &doc); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", apperrors.ErrValidation)
	}
	return doc, nil
}

// GetDraft godoc
// @Summary Get the draft content of a page
// @Tags content
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /content/{page} [get]
func (h *ContentHandler) GetDraft(c echo.Context) error {
	doc, err := h.contentService.ReadDraft(c.Request().Context(), c.Param("page"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// SaveDraft godoc
// @Summary Create or replace the draft content of a page
// @Tags content
// @Accept json
// @Produce json
// @Param page path string true "Page name"
// @Param request body map[string]interface{} true "Page content"
// @Success 200 {object} SaveResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /content/{page} [post]
func (h *ContentHandler) SaveDraft(c echo.Context) error {
	doc, err := bindDocument(c)
	if err != nil {
		return respondError(err)
	}
	res, err := h.contentService.WriteDraft(c.Request().Context(), c.Param("page"), doc)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, SaveResponse{
		Success:     true,
		Page:        res.Page,
		LastUpdated: res.LastUpdated.Format(service.TimestampFormat),
	})
}

// GetPublished godoc
// @Summary Get the published content of a page
// @Tags content
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /published/{page} [get]
func (h *ContentHandler) GetPublished(c echo.Context) error {
	doc, err := h.contentService.ReadPublished(c.Request().Context(), c.Param("page"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// InitFromLive godoc
// @Summary Seed the draft of a page from the live site
// @Tags content
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} InitResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /init-content/{page} [post]
func (h *ContentHandler) InitFromLive(c echo.Context) error {
	res, err := h.contentService.InitDraftFromLive(c.Request().Context(), c.Param("page"))
	if err != nil {
		return respondError(err)
	}
	msg := "draft initialized from live content"
	if res.AlreadyExists {
		msg = "draft already exists"
	}
	return c.JSON(http.StatusOK, InitResponse{Success: true, AlreadyExists: res.AlreadyExists, Message: msg})
}
