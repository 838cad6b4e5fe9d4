package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the caller has no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a page, backup or document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a request is missing a required field or carries a bad value.
	ErrValidation = errors.New("validation failed")
	// ErrStorage is returned when the persistence layer fails.
	ErrStorage = errors.New("storage failure")
	// ErrRemoteFetch is returned when live content could not be fetched or was empty.
	ErrRemoteFetch = errors.New("live content unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched
// with errors.Is; messages of storage and unknown errors are never passed through.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrRemoteFetch):
		return NewHTTPError(http.StatusNotFound, ErrRemoteFetch.Error(), "LIVE_CONTENT_NOT_FOUND")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrStorage):
		return NewHTTPError(http.StatusInternalServerError, "storage failure", "STORAGE_FAILURE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
