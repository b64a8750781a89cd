package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNoFiles               = errors.New("no files provided")
	ErrNotPDF                = errors.New("not a PDF file")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrUnknownProvider       = errors.New("unknown LLM provider")
	ErrMissingProvider       = errors.New("provider is required")
	ErrUnparseableResponse   = errors.New("LLM response is not a JSON object")
	ErrSubmissionInProgress  = errors.New("a submission is already in progress")
	ErrNothingToRetry        = errors.New("no previous submission to retry")
	ErrInvalidPreferences    = errors.New("invalid preferences")
	ErrSubmissionCanceled    = errors.New("submission canceled")
	ErrUploadFailed          = errors.New("file upload to storage failed")
	ErrCredentialUnavailable = errors.New("credential store unavailable")
)

// MissingCredentialError is returned when a network-backed provider is
// invoked without an API key. No request is sent in that case.
type MissingCredentialError struct {
	Provider ProviderID
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// NewMissingCredentialError creates a MissingCredentialError for provider.
func NewMissingCredentialError(provider ProviderID) *MissingCredentialError {
	return &MissingCredentialError{Provider: provider}
}

// ProviderHTTPError carries a non-success response from an LLM backend.
type ProviderHTTPError struct {
	Provider   ProviderID
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *ProviderHTTPError) Unwrap() error {
	return e.Err
}

// NewProviderHTTPError creates a ProviderHTTPError. err may be nil.
func NewProviderHTTPError(provider ProviderID, status int, body string, err error) *ProviderHTTPError {
	return &ProviderHTTPError{Provider: provider, StatusCode: status, Body: body, Err: err}
}
