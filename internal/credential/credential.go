// Package credential resolves provider API keys for a caller.
package credential

import (
	"context"

	"go.uber.org/zap"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/port"
)

// ConfigStore serves the deployment-wide keys from llm.<provider>.api_key.
// Every user gets the same key.
type ConfigStore struct {
	cfg *config.LLMConfig
}

// NewConfigStore creates a ConfigStore.
func NewConfigStore(cfg *config.LLMConfig) *ConfigStore {
	return &ConfigStore{cfg: cfg}
}

func (s *ConfigStore) APIKey(_ context.Context, _ string, provider domain.ProviderID) (string, error) {
	section := s.cfg.Provider(provider)
	if section == nil {
		return "", nil
	}
	return section.APIKey, nil
}

// Chain asks each store in turn and returns the first non-empty key.
// A failing store is logged and skipped.
type Chain struct {
	stores []port.CredentialStore
	log    *zap.Logger
}

// NewChain creates a Chain over stores, queried in order.
func NewChain(stores ...port.CredentialStore) *Chain {
	return &Chain{stores: stores, log: zap.L().Named("credential")}
}

func (c *Chain) APIKey(ctx context.Context, userID string, provider domain.ProviderID) (string, error) {
	for i, s := range c.stores {
		key, err := s.APIKey(ctx, userID, provider)
		if err != nil {
			c.log.Warn("credential lookup failed",
				zap.Int("store", i),
				zap.String("user_id", userID),
				zap.String("provider", string(provider)),
				zap.Error(err),
			)
			continue
		}
		if key != "" {
			return key, nil
		}
	}
	return "", nil
}
