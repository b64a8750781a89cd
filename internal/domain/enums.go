package domain

import "strings"

// ProviderID identifies one of the LLM backends the gateway can dispatch to.
type ProviderID string

const (
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderMistral    ProviderID = "mistral"
	ProviderOllama     ProviderID = "ollama"
	ProviderLocal      ProviderID = "local"
)

// KnownProviders lists every provider in display order.
var KnownProviders = []ProviderID{
	ProviderOpenRouter,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderMistral,
	ProviderOllama,
	ProviderLocal,
}

// ProviderLabels holds human-readable provider names.
var ProviderLabels = map[ProviderID]string{
	ProviderOpenRouter: "OpenRouter",
	ProviderOpenAI:     "OpenAI",
	ProviderAnthropic:  "Anthropic",
	ProviderMistral:    "Mistral AI",
	ProviderOllama:     "Ollama",
	ProviderLocal:      "Local",
}

// IsKnown reports whether p is one of the supported providers.
func (p ProviderID) IsKnown() bool {
	_, ok := ProviderLabels[p]
	return ok
}

// ProviderKind groups providers by how they are reached.
type ProviderKind string

const (
	KindRouter ProviderKind = "router"
	KindVendor ProviderKind = "vendor"
	KindLocal  ProviderKind = "local"
)

// StageID names one step of the processing timeline.
type StageID string

const (
	StagePrepare  StageID = "prepare"
	StageParse    StageID = "parse"
	StageAnalyze  StageID = "analyze"
	StageFinalize StageID = "finalize"
)

// Stages is the declared stage order.
var Stages = []StageID{StagePrepare, StageParse, StageAnalyze, StageFinalize}

// StageLabels holds the display label for each stage.
var StageLabels = map[StageID]string{
	StagePrepare:  "Préparation",
	StageParse:    "Parsing PDF",
	StageAnalyze:  "Analyse LLM",
	StageFinalize: "Finalisation",
}

// StageStatus is the state of a single stage.
type StageStatus string

const (
	StatusIdle    StageStatus = "idle"
	StatusRunning StageStatus = "running"
	StatusDone    StageStatus = "done"
	StatusError   StageStatus = "error"
)

// LogLevel is the severity of a log entry.
type LogLevel string

const (
	LevelDebug   LogLevel = "DEBUG"
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

// LogLevels lists all levels from least to most severe.
var LogLevels = []LogLevel{LevelDebug, LevelInfo, LevelWarning, LevelError}

// ParseLogLevel maps a case-insensitive name to a LogLevel. WARN is accepted as WARNING.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARNING", "WARN":
		return LevelWarning, true
	case "ERROR":
		return LevelError, true
	}
	return "", false
}

// ArticleType is the closed vocabulary for line item types.
type ArticleType string

const (
	ArticleMatelas    ArticleType = "matelas"
	ArticleSommier    ArticleType = "sommier"
	ArticleAccessoire ArticleType = "accessoire"
	ArticleTeteDeLit  ArticleType = "tête de lit"
	ArticlePieds      ArticleType = "pieds"
	ArticleRemise     ArticleType = "remise"
)

// ArticleTypes lists the allowed article types.
var ArticleTypes = []ArticleType{
	ArticleMatelas,
	ArticleSommier,
	ArticleAccessoire,
	ArticleTeteDeLit,
	ArticlePieds,
	ArticleRemise,
}

// PromptVariant identifies which prompt template was used.
type PromptVariant string

const (
	PromptExtraction PromptVariant = "extraction"
	PromptSummary    PromptVariant = "summary"
	PromptDegraded   PromptVariant = "degraded"
)

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
