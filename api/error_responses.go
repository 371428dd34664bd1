package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/algolite/algolite/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON       ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidFilter     ErrorCode = "INVALID_FILTER"
	ErrorCodeUnsupportedFilter ErrorCode = "UNSUPPORTED_FILTER"
	ErrorCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeRecordNotFound    ErrorCode = "OBJECT_NOT_FOUND"

	// Server Error Codes (5xx)
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	errorResponse := &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}

	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// RespondWithError maps a service error onto the matching API error response.
// Filter parse/compile failures are deterministic client errors; an
// unavailable index is the only retryable kind.
func RespondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSyntax):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidFilter, err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedFilter):
		SendError(c, http.StatusBadRequest, ErrorCodeUnsupportedFilter, err.Error())
	case errors.Is(err, apperrors.ErrInvalidSettings):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
	case errors.Is(err, apperrors.ErrIndexNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, err.Error())
	case errors.Is(err, apperrors.ErrRecordNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeRecordNotFound, err.Error())
	case errors.Is(err, apperrors.ErrIndexUnavailable):
		SendError(c, http.StatusServiceUnavailable, ErrorCodeIndexUnavailable, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError, err.Error())
	}
}
