package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/config"
	"devisflow/internal/domain"
	"devisflow/internal/gateway"
	_ "devisflow/internal/gateway/all"
	"devisflow/internal/gateway/local"
)

type stubBackend struct {
	spec  gateway.Spec
	out   *domain.Completion
	err   error
	calls int32
}

func (s *stubBackend) Spec() gateway.Spec { return s.spec }

func (s *stubBackend) Complete(_ context.Context, _ []domain.ChatMessage, _ string) (*domain.Completion, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	c := *s.out
	return &c, nil
}

var msgs = []domain.ChatMessage{{Role: "user", Content: "devis"}}

func TestInvoke_UnknownProvider(t *testing.T) {
	g := gateway.NewWithBackends(local.Backend{})

	_, err := g.Invoke(context.Background(), "gemini", msgs, "")

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestInvoke_MissingKeyBeforeAnyCall(t *testing.T) {
	b := &stubBackend{spec: gateway.Spec{ID: domain.ProviderOpenAI, RequiresKey: true}}
	g := gateway.NewWithBackends(b)

	_, err := g.Invoke(context.Background(), domain.ProviderOpenAI, msgs, "")

	var missing *domain.MissingCredentialError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, domain.ProviderOpenAI, missing.Provider)
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.calls))
}

func TestInvoke_FillsModel(t *testing.T) {
	b := &stubBackend{
		spec: gateway.Spec{ID: domain.ProviderMistral, RequiresKey: true, DefaultModel: "mistral-small-latest"},
		out:  &domain.Completion{Content: "{}", Usage: &domain.UsageRecord{PromptTokens: 3}},
	}
	g := gateway.NewWithBackends(b)

	out, err := g.Invoke(context.Background(), domain.ProviderMistral, msgs, "k")

	require.NoError(t, err)
	assert.Equal(t, "mistral-small-latest", out.Model)
	assert.Equal(t, "mistral-small-latest", out.Usage.Model)
}

func TestInvoke_PropagatesBackendError(t *testing.T) {
	backendErr := domain.NewProviderHTTPError(domain.ProviderOllama, 500, "boom", nil)
	b := &stubBackend{spec: gateway.Spec{ID: domain.ProviderOllama}, err: backendErr}
	g := gateway.NewWithBackends(b)

	_, err := g.Invoke(context.Background(), domain.ProviderOllama, msgs, "")

	assert.Same(t, backendErr, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.calls))
}

func TestInvoke_LocalStub(t *testing.T) {
	g := gateway.NewWithBackends(local.Backend{})

	out, err := g.Invoke(context.Background(), domain.ProviderLocal, msgs, "")

	require.NoError(t, err)
	assert.JSONEq(t, local.EmptyRecord, out.Content)
	assert.Nil(t, out.Usage)
	assert.Equal(t, local.Model, out.Model)
}

func TestNew_EnablesConfiguredBackends(t *testing.T) {
	cfg := &config.LLMConfig{
		OpenRouter: config.LLMProviderConfig{Enabled: true},
		Anthropic:  config.LLMProviderConfig{Enabled: true},
		Ollama:     config.LLMProviderConfig{Enabled: false},
	}

	g, err := gateway.New(cfg)
	require.NoError(t, err)

	var ids []domain.ProviderID
	for _, s := range g.Providers() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []domain.ProviderID{domain.ProviderOpenRouter, domain.ProviderAnthropic, domain.ProviderLocal}, ids)

	need, err := g.RequiresKey(domain.ProviderOpenRouter)
	require.NoError(t, err)
	assert.True(t, need)

	need, err = g.RequiresKey(domain.ProviderLocal)
	require.NoError(t, err)
	assert.False(t, need)

	_, err = g.RequiresKey(domain.ProviderOllama)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNew_OpenRouterEndToEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"client\":{\"nom\":\"LAGADEC\"}}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer ts.Close()

	g, err := gateway.New(&config.LLMConfig{
		OpenRouter: config.LLMProviderConfig{Enabled: true, BaseURL: ts.URL, Model: "openai/gpt-4o"},
	})
	require.NoError(t, err)

	out, err := g.Invoke(context.Background(), domain.ProviderOpenRouter, msgs, "sk-or")

	require.NoError(t, err)
	assert.Contains(t, out.Content, "LAGADEC")
	assert.Equal(t, "openai/gpt-4o", out.Model)
	assert.Equal(t, "openai/gpt-4o", out.Usage.Model)
}

func TestNewBackend_Unregistered(t *testing.T) {
	_, err := gateway.NewBackend("gemini", nil)

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", gateway.Truncate("abc", 5))
	assert.Equal(t, "ab...", gateway.Truncate("abcdef", 2))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	got := gateway.Truncate("clé invalide", 3)

	assert.Equal(t, "cl...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "clé...", gateway.Truncate("clé invalide", 4))
}
