// Package gateway dispatches chat completions to one of a closed set of LLM
// backends. Concrete backends live in sub-packages and register a Factory
// from init; import devisflow/internal/gateway/all to enable every one.
package gateway

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"devisflow/internal/config"
	"devisflow/internal/domain"
)

// Spec describes a backend.
type Spec struct {
	ID           domain.ProviderID   `json:"id"`
	Label        string              `json:"label"`
	Kind         domain.ProviderKind `json:"kind"`
	RequiresKey  bool                `json:"requires_key"`
	DefaultModel string              `json:"default_model"`
}

// Backend is one concrete LLM backend. Implementations make at most one
// outbound call per Complete and never retry.
type Backend interface {
	Spec() Spec
	Complete(ctx context.Context, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error)
}

// Factory creates a Backend from its config section. The local stub
// receives nil.
type Factory func(cfg *config.LLMProviderConfig) (Backend, error)

// registry of backend factories, populated by init() in each backend package
// or explicitly via RegisterBackend.
var factories = map[domain.ProviderID]Factory{}

// RegisterBackend registers a backend factory for id.
func RegisterBackend(id domain.ProviderID, factory Factory) {
	factories[id] = factory
}

// NewBackend creates a single backend using the registered factory.
func NewBackend(id domain.ProviderID, cfg *config.LLMProviderConfig) (Backend, error) {
	factory, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return factory(cfg)
}

// Gateway implements port.LLMGateway over a fixed set of backends.
type Gateway struct {
	backends map[domain.ProviderID]Backend
	log      *zap.Logger
}

// New creates a Gateway with every registered backend whose config section
// is enabled. The local stub is always enabled when registered.
func New(cfg *config.LLMConfig) (*Gateway, error) {
	var backends []Backend
	for _, id := range domain.KnownProviders {
		if _, ok := factories[id]; !ok {
			continue
		}
		section := cfg.Provider(id)
		if id != domain.ProviderLocal && (section == nil || !section.Enabled) {
			continue
		}
		b, err := NewBackend(id, section)
		if err != nil {
			return nil, fmt.Errorf("creating %s backend: %w", id, err)
		}
		backends = append(backends, b)
	}
	return NewWithBackends(backends...), nil
}

// NewWithBackends creates a Gateway over the given backends.
func NewWithBackends(backends ...Backend) *Gateway {
	g := &Gateway{
		backends: make(map[domain.ProviderID]Backend, len(backends)),
		log:      zap.L().Named("gateway"),
	}
	for _, b := range backends {
		g.backends[b.Spec().ID] = b
	}
	return g
}

// Invoke sends messages to the backend registered for id. A backend that
// requires a key fails with *domain.MissingCredentialError before any I/O
// when apiKey is empty.
func (g *Gateway) Invoke(ctx context.Context, id domain.ProviderID, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error) {
	b, ok := g.backends[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	spec := b.Spec()
	if spec.RequiresKey && apiKey == "" {
		return nil, domain.NewMissingCredentialError(id)
	}

	start := time.Now()
	c, err := b.Complete(ctx, messages, apiKey)
	if err != nil {
		g.log.Warn("completion failed",
			zap.String("provider", string(id)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	if c.Model == "" {
		c.Model = spec.DefaultModel
	}
	if c.Usage != nil {
		c.Usage.Model = c.Model
	}
	g.log.Debug("completion done",
		zap.String("provider", string(id)),
		zap.String("model", c.Model),
		zap.Duration("latency", time.Since(start)),
	)
	return c, nil
}

// RequiresKey reports whether the backend for id needs an API key.
func (g *Gateway) RequiresKey(id domain.ProviderID) (bool, error) {
	b, ok := g.backends[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, id)
	}
	return b.Spec().RequiresKey, nil
}

// Providers lists the enabled backends in display order.
func (g *Gateway) Providers() []Spec {
	order := make(map[domain.ProviderID]int, len(domain.KnownProviders))
	for i, id := range domain.KnownProviders {
		order[id] = i
	}
	specs := make([]Spec, 0, len(g.backends))
	for _, b := range g.backends {
		specs = append(specs, b.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return order[specs[i].ID] < order[specs[j].ID] })
	return specs
}
