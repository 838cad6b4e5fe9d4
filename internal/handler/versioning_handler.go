package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/auth"
	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/service"
)

// VersioningHandler handles publish, undo and history endpoints.
type VersioningHandler struct {
	versioningService service.VersioningService
}

// NewVersioningHandler creates a new versioning handler.
func NewVersioningHandler(versioningService service.VersioningService) *VersioningHandler {
	return &VersioningHandler{versioningService: versioningService}
}

// AckResponse acknowledges a publish or undo.
type AckResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Result  *service.Ack `json:"result"`
}

func actor(c echo.Context) (string, error) {
	user := auth.UserFromContext(c)
	if user == nil {
		return "", apperrors.ErrUnauthorized
	}
	return user.Username, nil
}

// BackupResponse acknowledges a manual backup.
type BackupResponse struct {
	Success bool                `json:"success"`
	Backup  *model.BackupRecord `json:"backup"`
}

// Backup godoc
// @Summary Snapshot the current published content of a page
// @Tags versioning
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} BackupResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /backup/{page} [post]
func (h *VersioningHandler) Backup(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return respondError(err)
	}
	backup, err := h.versioningService.BackupPublished(c.Request().Context(), c.Param("page"), who)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, BackupResponse{Success: true, Backup: backup})
}

// Publish godoc
// @Summary Publish a page, backing up the previous published content
// @Description Publishes the request body, or the current draft when the body is empty.
// @Tags versioning
// @Accept json
// @Produce json
// @Param page path string true "Page name"
// @Param request body map[string]interface{} false "Content to publish"
// @Success 200 {object} AckResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /publish/{page} [post]
func (h *VersioningHandler) Publish(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return respondError(err)
	}
	doc, err := bindDocument(c)
	if err != nil {
		return respondError(err)
	}

	page := c.Param("page")
	var ack *service.Ack
	if len(doc) == 0 {
		ack, err = h.versioningService.PublishDraft(c.Request().Context(), page, who)
	} else {
		ack, err = h.versioningService.Publish(c.Request().Context(), page, doc, who)
	}
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, AckResponse{Success: true, Message: "content published", Result: ack})
}

// Undo godoc
// @Summary Restore published content from the latest backup
// @Tags versioning
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} AckResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /undo/{page} [post]
func (h *VersioningHandler) Undo(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return respondError(err)
	}
	ack, err := h.versioningService.Undo(c.Request().Context(), c.Param("page"), who)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, AckResponse{Success: true, Message: "restored from backup", Result: ack})
}

// History godoc
// @Summary List recent backups and publish history of a page
// @Tags versioning
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} service.History
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /history/{page} [get]
func (h *VersioningHandler) History(c echo.Context) error {
	hist, err := h.versioningService.GetHistory(c.Request().Context(), c.Param("page"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, hist)
}
