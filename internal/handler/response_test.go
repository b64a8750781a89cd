package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"devisflow/internal/domain"
	"devisflow/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no files", domain.ErrNoFiles, http.StatusBadRequest, "NO_FILES"},
		{"wrapped not pdf", fmt.Errorf("%w: notes.txt", domain.ErrNotPDF), http.StatusBadRequest, "NOT_PDF"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"missing provider", domain.ErrMissingProvider, http.StatusBadRequest, "MISSING_PROVIDER"},
		{"unknown provider", fmt.Errorf("%w: gemini", domain.ErrUnknownProvider), http.StatusBadRequest, "UNKNOWN_PROVIDER"},
		{"invalid preferences", domain.ErrInvalidPreferences, http.StatusBadRequest, "INVALID_PREFERENCES"},
		{"missing key", fmt.Errorf("extraction: %w", domain.NewMissingCredentialError(domain.ProviderOpenAI)), http.StatusBadRequest, "MISSING_API_KEY"},
		{"upstream", domain.NewProviderHTTPError(domain.ProviderMistral, 429, "slow down", nil), http.StatusBadGateway, "PROVIDER_ERROR"},
		{"in progress", domain.ErrSubmissionInProgress, http.StatusConflict, "SUBMISSION_IN_PROGRESS"},
		{"canceled", domain.ErrSubmissionCanceled, http.StatusConflict, "SUBMISSION_CANCELED"},
		{"nothing to retry", domain.ErrNothingToRetry, http.StatusNotFound, "NOTHING_TO_RETRY"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"credentials down", domain.ErrCredentialUnavailable, http.StatusServiceUnavailable, "CREDENTIALS_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_UpstreamMessageHidesBody(t *testing.T) {
	_, _, msg := handler.MapDomainError(domain.NewProviderHTTPError(domain.ProviderOpenRouter, 401, `{"error":"sk-secret invalid"}`, nil))

	assert.Equal(t, "openrouter returned status 401", msg)
}

func TestHandleError_WritesEnvelope(t *testing.T) {
	c, w := newContext(http.MethodGet, "/", nil, "", "")

	handler.HandleError(c, domain.ErrNoFiles)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "NO_FILES", resp.Error.Code)
}
