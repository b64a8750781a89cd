package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"devisflow/internal/cost"
	"devisflow/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Pipeline PipelineConfig
	LLM      LLMConfig
	Pricing  cost.Rates
	DB       DBConfig
	Redis    RedisConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings. BufferSize bounds the user-facing
// processing log.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds bearer token verification settings. An empty secret
// disables verification and every caller is anonymous.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// PipelineConfig holds extraction pipeline settings.
type PipelineConfig struct {
	DemoMode      bool  `mapstructure:"demo_mode"`
	MaxTextLength int   `mapstructure:"max_text_length"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// LLMProviderConfig holds settings for a single LLM backend.
type LLMProviderConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// Timeout returns the request timeout, defaulting to 120s.
func (p *LLMProviderConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// LLMConfig holds per-backend settings.
type LLMConfig struct {
	OpenRouter LLMProviderConfig `mapstructure:"openrouter"`
	OpenAI     LLMProviderConfig `mapstructure:"openai"`
	Anthropic  LLMProviderConfig `mapstructure:"anthropic"`
	Mistral    LLMProviderConfig `mapstructure:"mistral"`
	Ollama     LLMProviderConfig `mapstructure:"ollama"`
}

// Provider returns the section for id, or nil for the local stub and
// unknown ids.
func (l *LLMConfig) Provider(id domain.ProviderID) *LLMProviderConfig {
	switch id {
	case domain.ProviderOpenRouter:
		return &l.OpenRouter
	case domain.ProviderOpenAI:
		return &l.OpenAI
	case domain.ProviderAnthropic:
		return &l.Anthropic
	case domain.ProviderMistral:
		return &l.Mistral
	case domain.ProviderOllama:
		return &l.Ollama
	default:
		return nil
	}
}

// DBConfig holds PostgreSQL connection settings for the API key table.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds settings for the preference store.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds settings for the optional S3 upload archive.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

var llmDefaults = map[domain.ProviderID]LLMProviderConfig{
	domain.ProviderOpenRouter: {Enabled: true, BaseURL: "https://openrouter.ai/api/v1/chat/completions", Model: "openai/gpt-4o-mini", Temperature: 0.1},
	domain.ProviderOpenAI:     {Enabled: true, Model: "gpt-4o-mini", Temperature: 0.1},
	domain.ProviderAnthropic:  {Enabled: true, Model: "claude-sonnet-4-20250514", Temperature: 0.1},
	domain.ProviderMistral:    {Enabled: true, BaseURL: "https://api.mistral.ai/v1/chat/completions", Model: "mistral-small-latest", Temperature: 0.1},
	domain.ProviderOllama:     {Enabled: false, BaseURL: "http://localhost:11434", Model: "llama3.1", Temperature: 0.1},
}

// Load reads configuration from environment variables with the DEVISFLOW_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEVISFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// An optional file carries what env vars express poorly, such as the
	// pricing table.
	if path := os.Getenv("DEVISFLOW_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.buffer_size", 500)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "devisflow")

	// Pipeline defaults
	v.SetDefault("pipeline.demo_mode", false)
	v.SetDefault("pipeline.max_text_length", 15000)
	v.SetDefault("pipeline.max_file_size_mb", 20)

	// LLM backend defaults
	for id, d := range llmDefaults {
		prefix := "llm." + string(id)
		v.SetDefault(prefix+".enabled", d.Enabled)
		v.SetDefault(prefix+".api_key", "")
		v.SetDefault(prefix+".base_url", d.BaseURL)
		v.SetDefault(prefix+".model", d.Model)
		v.SetDefault(prefix+".temperature", d.Temperature)
		v.SetDefault(prefix+".timeout_secs", 120)
	}

	// Credential store (optional)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "devisflow")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "devisflow")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Preference store (optional)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Upload archive (optional)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "eu-west-3")
	v.SetDefault("storage.bucket", "devisflow-uploads")
	v.SetDefault("storage.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "DEVISFLOW_SERVER_PORT",
		"server.read_timeout":       "DEVISFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "DEVISFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":        "DEVISFLOW_SERVER_ENVIRONMENT",
		"log.level":                 "DEVISFLOW_LOG_LEVEL",
		"log.format":                "DEVISFLOW_LOG_FORMAT",
		"log.buffer_size":           "DEVISFLOW_LOG_BUFFER_SIZE",
		"cors.allowed_origins":      "DEVISFLOW_CORS_ALLOWED_ORIGINS",
		"auth.jwt_secret":           "DEVISFLOW_AUTH_JWT_SECRET",
		"auth.issuer":               "DEVISFLOW_AUTH_ISSUER",
		"pipeline.demo_mode":        "DEVISFLOW_PIPELINE_DEMO_MODE",
		"pipeline.max_text_length":  "DEVISFLOW_PIPELINE_MAX_TEXT_LENGTH",
		"pipeline.max_file_size_mb": "DEVISFLOW_PIPELINE_MAX_FILE_SIZE_MB",
		"db.enabled":                "DEVISFLOW_DB_ENABLED",
		"db.host":                   "DEVISFLOW_DB_HOST",
		"db.port":                   "DEVISFLOW_DB_PORT",
		"db.user":                   "DEVISFLOW_DB_USER",
		"db.password":               "DEVISFLOW_DB_PASSWORD",
		"db.name":                   "DEVISFLOW_DB_NAME",
		"db.sslmode":                "DEVISFLOW_DB_SSLMODE",
		"db.max_open":               "DEVISFLOW_DB_MAX_OPEN",
		"db.max_idle":               "DEVISFLOW_DB_MAX_IDLE",
		"redis.enabled":             "DEVISFLOW_REDIS_ENABLED",
		"redis.addr":                "DEVISFLOW_REDIS_ADDR",
		"redis.password":            "DEVISFLOW_REDIS_PASSWORD",
		"redis.db":                  "DEVISFLOW_REDIS_DB",
		"storage.enabled":           "DEVISFLOW_STORAGE_ENABLED",
		"storage.region":            "DEVISFLOW_STORAGE_REGION",
		"storage.bucket":            "DEVISFLOW_STORAGE_BUCKET",
		"storage.endpoint":          "DEVISFLOW_STORAGE_ENDPOINT",
		"storage.access_key":        "DEVISFLOW_STORAGE_ACCESS_KEY",
		"storage.secret_key":        "DEVISFLOW_STORAGE_SECRET_KEY",
	}
	for id := range llmDefaults {
		for _, field := range []string{"enabled", "api_key", "base_url", "model", "temperature", "timeout_secs"} {
			key := "llm." + string(id) + "." + field
			envBindings[key] = "DEVISFLOW_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms such as Railway or Render set PORT. Use it unless the
	// prefixed variable is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DEVISFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		BufferSize: v.GetInt("log.buffer_size"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.Pipeline = PipelineConfig{
		DemoMode:      v.GetBool("pipeline.demo_mode"),
		MaxTextLength: v.GetInt("pipeline.max_text_length"),
		MaxFileSizeMB: v.GetInt64("pipeline.max_file_size_mb"),
	}

	for id := range llmDefaults {
		prefix := "llm." + string(id)
		*cfg.LLM.Provider(id) = LLMProviderConfig{
			Enabled:     v.GetBool(prefix + ".enabled"),
			APIKey:      v.GetString(prefix + ".api_key"),
			BaseURL:     v.GetString(prefix + ".base_url"),
			Model:       v.GetString(prefix + ".model"),
			Temperature: v.GetFloat64(prefix + ".temperature"),
			TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
		}
	}

	cfg.Pricing = cost.DefaultRates()
	if v.IsSet("pricing") {
		var rates cost.Rates
		if err := v.UnmarshalKey("pricing", &rates); err != nil {
			return nil, fmt.Errorf("decoding pricing table: %w", err)
		}
		if rates.Currency != "" {
			cfg.Pricing.Currency = rates.Currency
		}
		for model, rate := range rates.Models {
			cfg.Pricing.Models[model] = rate
		}
	}

	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Storage = StorageConfig{
		Enabled:   v.GetBool("storage.enabled"),
		Region:    v.GetString("storage.region"),
		Bucket:    v.GetString("storage.bucket"),
		Endpoint:  v.GetString("storage.endpoint"),
		AccessKey: v.GetString("storage.access_key"),
		SecretKey: v.GetString("storage.secret_key"),
	}

	return cfg, nil
}
