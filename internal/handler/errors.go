package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "sitecms/internal/errors"
)

// respondError converts a service error into an echo HTTP error with a safe body.
func respondError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	he := echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	he.Internal = err
	return he
}

// ErrorHandler renders every failure as a JSON ErrorResponse. Internal causes are
// logged for 5xx responses and never written to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = respondError(err)
	}

	status := he.Code
	var body apperrors.ErrorResponse
	switch msg := he.Message.(type) {
	case apperrors.ErrorResponse:
		body = msg
	case string:
		body = apperrors.ErrorResponse{Error: msg, Code: codeForStatus(status)}
	default:
		body = apperrors.ErrorResponse{Error: http.StatusText(status), Code: codeForStatus(status)}
	}

	if status >= http.StatusInternalServerError {
		cause := err
		if he.Internal != nil {
			cause = he.Internal
		}
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"status", status,
			"error", cause,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		slog.ErrorContext(c.Request().Context(), "write error response", "error", writeErr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "HTTP_ERROR"
	}
}
