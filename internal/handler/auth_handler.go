package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/auth"
	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
	"sitecms/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	gate        *auth.Gate
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{authService: authService, gate: gate}
}

// LoginRequest represents an admin login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user,omitempty"`
}

// Login godoc
// @Summary Log in as the site administrator
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(fmt.Errorf("%w: invalid request body", apperrors.ErrValidation))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(fmt.Errorf("%w: username and password are required", apperrors.ErrValidation))
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(err)
	}
	if err := h.gate.SetSessionCookie(c, token); err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{Success: true, User: user})
}

// Logout godoc
// @Summary End the current session
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := h.gate.TokenFromRequest(c); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			return respondError(err)
		}
	}
	h.gate.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, AuthResponse{Success: true})
}

// Verify godoc
// @Summary Return the user of the current session
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return respondError(apperrors.ErrUnauthorized)
	}
	return c.JSON(http.StatusOK, AuthResponse{Success: true, User: user})
}
