package port

import (
	"context"

	"devisflow/internal/domain"
)

// LLMGateway dispatches chat completions to a named backend.
type LLMGateway interface {
	Invoke(ctx context.Context, provider domain.ProviderID, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error)
	// RequiresKey reports whether provider needs an API key. It returns
	// domain.ErrUnknownProvider for providers that are not registered.
	RequiresKey(provider domain.ProviderID) (bool, error)
}
