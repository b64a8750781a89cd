package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devisflow/internal/domain"
	"devisflow/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var missingKey *domain.MissingCredentialError
	var upstream *domain.ProviderHTTPError

	switch {
	case errors.As(err, &missingKey):
		return http.StatusBadRequest, "MISSING_API_KEY", missingKey.Error()
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "PROVIDER_ERROR",
			fmt.Sprintf("%s returned status %d", upstream.Provider, upstream.StatusCode)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusBadRequest, "NO_FILES", "at least one PDF file is required"
	case errors.Is(err, domain.ErrNotPDF):
		return http.StatusBadRequest, "NOT_PDF", "only PDF files are accepted"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrMissingProvider):
		return http.StatusBadRequest, "MISSING_PROVIDER", "provider is required"
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "UNKNOWN_PROVIDER", "unknown LLM provider"
	case errors.Is(err, domain.ErrInvalidPreferences):
		return http.StatusBadRequest, "INVALID_PREFERENCES", "invalid preferences"
	case errors.Is(err, domain.ErrSubmissionInProgress):
		return http.StatusConflict, "SUBMISSION_IN_PROGRESS", "a submission is already in progress"
	case errors.Is(err, domain.ErrSubmissionCanceled):
		return http.StatusConflict, "SUBMISSION_CANCELED", "submission was canceled"
	case errors.Is(err, domain.ErrNothingToRetry):
		return http.StatusNotFound, "NOTHING_TO_RETRY", "no previous submission to retry"
	case errors.Is(err, domain.ErrCredentialUnavailable):
		return http.StatusServiceUnavailable, "CREDENTIALS_UNAVAILABLE", "credential store unavailable"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		zap.L().Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, msg)
}
