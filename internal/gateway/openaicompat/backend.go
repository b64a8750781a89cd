// Package openaicompat talks to hosted chat-completion APIs that follow the
// OpenAI wire format: OpenRouter and Mistral.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
)

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	mistralURL    = "https://api.mistral.ai/v1/chat/completions"

	openRouterModel = "openai/gpt-4o-mini"
	mistralModel    = "mistral-small-latest"

	// appTitle is sent to OpenRouter for attribution.
	appTitle = "devisflow"
)

func init() {
	gateway.RegisterBackend(domain.ProviderOpenRouter, func(cfg *config.LLMProviderConfig) (gateway.Backend, error) {
		return NewOpenRouter(cfg), nil
	})
	gateway.RegisterBackend(domain.ProviderMistral, func(cfg *config.LLMProviderConfig) (gateway.Backend, error) {
		return NewMistral(cfg), nil
	})
}

// Backend implements gateway.Backend for an OpenAI-compatible endpoint.
type Backend struct {
	spec        gateway.Spec
	endpoint    string
	temperature float64
	headers     map[string]string
	client      *http.Client
}

// NewOpenRouter creates the OpenRouter backend.
func NewOpenRouter(cfg *config.LLMProviderConfig) *Backend {
	b := newBackend(domain.ProviderOpenRouter, domain.KindRouter, cfg, openRouterURL, openRouterModel)
	b.headers["X-Title"] = appTitle
	return b
}

// NewMistral creates the Mistral backend.
func NewMistral(cfg *config.LLMProviderConfig) *Backend {
	return newBackend(domain.ProviderMistral, domain.KindVendor, cfg, mistralURL, mistralModel)
}

// NewWithEndpoint creates a backend for id pointing at a custom endpoint (for testing).
func NewWithEndpoint(id domain.ProviderID, cfg *config.LLMProviderConfig, endpoint string) *Backend {
	var b *Backend
	if id == domain.ProviderOpenRouter {
		b = NewOpenRouter(cfg)
	} else {
		b = NewMistral(cfg)
	}
	b.endpoint = endpoint
	return b
}

func newBackend(id domain.ProviderID, kind domain.ProviderKind, cfg *config.LLMProviderConfig, endpoint, model string) *Backend {
	if cfg == nil {
		cfg = &config.LLMProviderConfig{}
	}
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return &Backend{
		spec: gateway.Spec{
			ID:           id,
			Label:        domain.ProviderLabels[id],
			Kind:         kind,
			RequiresKey:  true,
			DefaultModel: model,
		},
		endpoint:    endpoint,
		temperature: cfg.Temperature,
		headers:     map[string]string{},
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

func (b *Backend) Spec() gateway.Spec { return b.spec }

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

// chatResponse models the subset of the Chat Completions response we read.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *domain.UsageRecord `json:"usage"`
}

func (b *Backend) Complete(ctx context.Context, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error) {
	bodyBytes, err := json.Marshal(chatRequest{
		Model:       b.spec.DefaultModel,
		Messages:    messages,
		Temperature: b.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", b.spec.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, gateway.HTTPError(b.spec.ID, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling %s response: %w", b.spec.ID, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, gateway.EmptyResponseError(b.spec.ID)
	}

	model := parsed.Model
	if model == "" {
		model = b.spec.DefaultModel
	}
	return &domain.Completion{
		Content: parsed.Choices[0].Message.Content,
		Usage:   parsed.Usage,
		Model:   model,
	}, nil
}
