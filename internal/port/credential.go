package port

import (
	"context"

	"devisflow/internal/domain"
)

// CredentialStore resolves the API key a user configured for a provider.
// An empty key with a nil error means none is configured.
type CredentialStore interface {
	APIKey(ctx context.Context, userID string, provider domain.ProviderID) (string, error)
}
