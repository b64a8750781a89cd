// Package openai is the direct OpenAI backend, built on go-openai.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
)

const defaultModel = openai.GPT4oMini

func init() {
	gateway.RegisterBackend(domain.ProviderOpenAI, func(cfg *config.LLMProviderConfig) (gateway.Backend, error) {
		return New(cfg), nil
	})
}

// Backend implements gateway.Backend using the Chat Completions API.
type Backend struct {
	model       string
	baseURL     string
	temperature float32
	httpClient  *http.Client
}

// New creates the OpenAI backend. An empty BaseURL keeps the SDK default.
func New(cfg *config.LLMProviderConfig) *Backend {
	if cfg == nil {
		cfg = &config.LLMProviderConfig{}
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Backend{
		model:       model,
		baseURL:     cfg.BaseURL,
		temperature: float32(cfg.Temperature),
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
	}
}

func (b *Backend) Spec() gateway.Spec {
	return gateway.Spec{
		ID:           domain.ProviderOpenAI,
		Label:        domain.ProviderLabels[domain.ProviderOpenAI],
		Kind:         domain.KindVendor,
		RequiresKey:  true,
		DefaultModel: b.model,
	}
}

// client is built per call since the key belongs to the caller.
func (b *Backend) client(apiKey string) *openai.Client {
	cc := openai.DefaultConfig(apiKey)
	if b.baseURL != "" {
		cc.BaseURL = b.baseURL
	}
	cc.HTTPClient = b.httpClient
	return openai.NewClientWithConfig(cc)
}

func (b *Backend) Complete(ctx context.Context, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error) {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := b.client(apiKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    msgs,
		Temperature: b.temperature,
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, gateway.EmptyResponseError(domain.ProviderOpenAI)
	}

	model := resp.Model
	if model == "" {
		model = b.model
	}
	return &domain.Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: &domain.UsageRecord{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model: model,
	}, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderHTTPError(domain.ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewProviderHTTPError(domain.ProviderOpenAI, reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err), err)
	}
	return fmt.Errorf("calling openai API: %w", err)
}
