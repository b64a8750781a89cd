package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"devisflow/internal/config"
	"devisflow/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 500, cfg.Log.BufferSize)
	assert.False(t, cfg.Pipeline.DemoMode)
	assert.Equal(t, 15000, cfg.Pipeline.MaxTextLength)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.False(t, cfg.DB.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Storage.Enabled)

	openrouter := cfg.LLM.Provider(domain.ProviderOpenRouter)
	require.NotNil(t, openrouter)
	assert.True(t, openrouter.Enabled)
	assert.Equal(t, "openai/gpt-4o-mini", openrouter.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", openrouter.BaseURL)
	assert.InDelta(t, 0.1, openrouter.Temperature, 1e-9)

	assert.False(t, cfg.LLM.Ollama.Enabled)
	assert.Equal(t, "mistral-small-latest", cfg.LLM.Mistral.Model)
	assert.Contains(t, cfg.Pricing.Models, "gpt-4o-mini")
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEVISFLOW_SERVER_PORT", ":9090")
	t.Setenv("PORT", "7000")
	t.Setenv("DEVISFLOW_PIPELINE_DEMO_MODE", "true")
	t.Setenv("DEVISFLOW_LLM_OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("DEVISFLOW_LLM_OLLAMA_ENABLED", "true")
	t.Setenv("DEVISFLOW_LLM_ANTHROPIC_TIMEOUT_SECS", "15")
	t.Setenv("DEVISFLOW_LOG_BUFFER_SIZE", "50")
	t.Setenv("DEVISFLOW_CORS_ALLOWED_ORIGINS", " https://app.example.fr , ")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.True(t, cfg.Pipeline.DemoMode)
	assert.Equal(t, "sk-or-test", cfg.LLM.OpenRouter.APIKey)
	assert.True(t, cfg.LLM.Ollama.Enabled)
	assert.Equal(t, 15*time.Second, cfg.LLM.Anthropic.Timeout())
	assert.Equal(t, 50, cfg.Log.BufferSize)
	assert.Equal(t, []string{"https://app.example.fr"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_PricingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devisflow.yaml")
	content := `pricing:
  currency: EUR
  models:
    my-finetune:
      input: 1.5
      output: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DEVISFLOW_CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Pricing.Currency)
	require.Contains(t, cfg.Pricing.Models, "my-finetune")
	assert.InDelta(t, 1.5, cfg.Pricing.Models["my-finetune"].Input, 1e-9)
	assert.Contains(t, cfg.Pricing.Models, "gpt-4o-mini", "defaults are kept")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("DEVISFLOW_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()

	assert.Error(t, err)
}

func TestLLMConfig_Provider(t *testing.T) {
	cfg := config.LLMConfig{OpenAI: config.LLMProviderConfig{Model: "gpt-4o"}}

	assert.Equal(t, "gpt-4o", cfg.Provider(domain.ProviderOpenAI).Model)
	assert.Nil(t, cfg.Provider(domain.ProviderLocal))
	assert.Nil(t, cfg.Provider("gemini"))
}

func TestLLMProviderConfig_TimeoutDefault(t *testing.T) {
	assert.Equal(t, 120*time.Second, (&config.LLMProviderConfig{}).Timeout())
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "keys", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@h:5432/keys?sslmode=disable", db.DSN())
}

func TestInitLogger(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	logger, err := config.InitLogger(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Same(t, logger, zap.L())
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = config.InitLogger(config.LogConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}
