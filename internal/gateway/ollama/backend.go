// Package ollama talks to a local Ollama server. It needs no API key.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1"
)

func init() {
	gateway.RegisterBackend(domain.ProviderOllama, func(cfg *config.LLMProviderConfig) (gateway.Backend, error) {
		return New(cfg), nil
	})
}

// Backend implements gateway.Backend against /api/chat.
type Backend struct {
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
}

// New creates the Ollama backend.
func New(cfg *config.LLMProviderConfig) *Backend {
	if cfg == nil {
		cfg = &config.LLMProviderConfig{}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Backend{
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

func (b *Backend) Spec() gateway.Spec {
	return gateway.Spec{
		ID:           domain.ProviderOllama,
		Label:        domain.ProviderLabels[domain.ProviderOllama],
		Kind:         domain.KindLocal,
		RequiresKey:  false,
		DefaultModel: b.model,
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
	Options  *chatOptions         `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Model           string             `json:"model"`
	Message         domain.ChatMessage `json:"message"`
	PromptEvalCount int                `json:"prompt_eval_count"`
	EvalCount       int                `json:"eval_count"`
}

// Complete ignores apiKey.
func (b *Backend) Complete(ctx context.Context, messages []domain.ChatMessage, _ string) (*domain.Completion, error) {
	body, err := json.Marshal(chatRequest{
		Model:    b.model,
		Messages: messages,
		Options:  &chatOptions{Temperature: b.temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, gateway.HTTPError(domain.ProviderOllama, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling ollama response: %w", err)
	}

	model := parsed.Model
	if model == "" {
		model = b.model
	}
	return &domain.Completion{
		Content: parsed.Message.Content,
		Usage: &domain.UsageRecord{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
		Model: model,
	}, nil
}
