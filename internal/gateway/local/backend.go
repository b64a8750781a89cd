// Package local is an offline stub backend returning an empty record.
package local

import (
	"context"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
)

// Model is reported for every stub completion.
const Model = "local/stub"

// EmptyRecord is the skeleton record the stub answers with.
const EmptyRecord = `{"societe":{},"client":{},"commande":{},"mode_mise_a_disposition":{},"articles":[],"paiement":{}}`

func init() {
	gateway.RegisterBackend(domain.ProviderLocal, func(_ *config.LLMProviderConfig) (gateway.Backend, error) {
		return Backend{}, nil
	})
}

// Backend implements gateway.Backend without any I/O.
type Backend struct{}

func (Backend) Spec() gateway.Spec {
	return gateway.Spec{
		ID:           domain.ProviderLocal,
		Label:        domain.ProviderLabels[domain.ProviderLocal],
		Kind:         domain.KindLocal,
		DefaultModel: Model,
	}
}

func (Backend) Complete(ctx context.Context, _ []domain.ChatMessage, _ string) (*domain.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.Completion{Content: EmptyRecord, Model: Model}, nil
}
