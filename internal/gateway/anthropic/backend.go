// Package anthropic is the Anthropic Messages API backend.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
)

const (
	defaultModel = "claude-sonnet-4-20250514"
	maxTokens    = 4096
)

func init() {
	gateway.RegisterBackend(domain.ProviderAnthropic, func(cfg *config.LLMProviderConfig) (gateway.Backend, error) {
		return New(cfg), nil
	})
}

// Backend implements gateway.Backend on top of anthropic-sdk-go.
type Backend struct {
	model       string
	baseURL     string
	temperature float64
	httpClient  *http.Client
}

// New creates the Anthropic backend.
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
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
	}
}

func (b *Backend) Spec() gateway.Spec {
	return gateway.Spec{
		ID:           domain.ProviderAnthropic,
		Label:        domain.ProviderLabels[domain.ProviderAnthropic],
		Kind:         domain.KindVendor,
		RequiresKey:  true,
		DefaultModel: b.model,
	}
}

func (b *Backend) client(apiKey string) sdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(b.httpClient),
		option.WithMaxRetries(0),
	}
	if b.baseURL != "" {
		opts = append(opts, option.WithBaseURL(b.baseURL))
	}
	return sdk.NewClient(opts...)
}

// Complete sends messages through the Messages API. System messages are
// lifted into the top-level system prompt.
func (b *Backend) Complete(ctx context.Context, messages []domain.ChatMessage, apiKey string) (*domain.Completion, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(b.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(b.temperature),
	}
	for _, m := range messages {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "system":
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(block))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(block))
		}
	}

	client := b.client(apiKey)
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return nil, domain.NewProviderHTTPError(domain.ProviderAnthropic, apiErr.StatusCode,
				gateway.Truncate(apiErr.RawJSON(), 2000), err)
		}
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	model := string(msg.Model)
	if model == "" {
		model = b.model
	}
	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &domain.Completion{
		Content: text.String(),
		Usage: &domain.UsageRecord{
			PromptTokens:     in,
			CompletionTokens: out,
			TotalTokens:      in + out,
		},
		Model: model,
	}, nil
}
