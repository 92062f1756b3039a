package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel/internal/repository"
	"travel/internal/service"
)

// ErrorResponse represents an error response. Details, when present, is a
// human-readable elaboration safe to show to callers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrDuplicateBooking),
		errors.Is(err, service.ErrPaymentNotRetryable):
		return http.StatusConflict

	// Gateway errors
	case errors.Is(err, service.ErrPaymentInitiationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrVerificationUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
