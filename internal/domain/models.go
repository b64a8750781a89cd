package domain

import (
	"time"
)

// UploadedFile is one binary payload received with an extraction request.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExtractionRequest is one user-initiated batch submission. It is not
// modified once issued.
type ExtractionRequest struct {
	UserID      string
	RequestID   string
	Files       []UploadedFile
	Provider    ProviderID
	APIKey      string
	Enrich      bool
	WithSummary bool
}

// SummaryRequest asks for a natural-language digest of a single file.
type SummaryRequest struct {
	UserID    string
	RequestID string
	File      UploadedFile
	Provider  ProviderID
	APIKey    string
}

// ChatMessage is one OpenAI-style chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UsageRecord holds the token counts reported for a single LLM call.
type UsageRecord struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model,omitempty"`
}

// Completion is the uniform result of a gateway call.
type Completion struct {
	Content string
	Usage   *UsageRecord
	Model   string
}

// CostEstimate is derived from a UsageRecord and the model price table.
type CostEstimate struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
	Currency   string  `json:"currency"`
}

// ExtractionStats describes the raw text pulled out of a PDF.
type ExtractionStats struct {
	Characters int    `json:"nb_caracteres"`
	Words      int    `json:"nb_mots"`
	Preview    string `json:"preview"`
}

// Step is the externally visible state of one timeline stage.
type Step struct {
	ID        StageID     `json:"id"`
	Label     string      `json:"label"`
	Status    StageStatus `json:"status"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// StageEvent is published on every timeline transition.
type StageEvent struct {
	File   string      `json:"file"`
	Stage  StageID     `json:"stage"`
	Status StageStatus `json:"status"`
	At     time.Time   `json:"at"`
}

// LogEntry is one line of the user-facing processing log.
type LogEntry struct {
	ID        string    `json:"id"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ExtractionResult is the per-file outcome of a successful pipeline run.
type ExtractionResult struct {
	Filename       string          `json:"filename"`
	Stats          ExtractionStats `json:"extraction_stats"`
	Text           string          `json:"texte_extrait"`
	LLMRaw         *string         `json:"llm_result"`
	Usage          *UsageRecord    `json:"usage"`
	Model          *string         `json:"model"`
	Cost           CostEstimate    `json:"cost"`
	Data           map[string]any  `json:"llm_data"`
	Client         map[string]any  `json:"donnees_client"`
	Articles       []any           `json:"articles"`
	Summary        string          `json:"summary,omitempty"`
	ParseError     string          `json:"parse_error,omitempty"`
	SchemaWarnings []string        `json:"schema_warnings,omitempty"`
	Steps          []Step          `json:"steps"`
}

// BatchResult is the fan-in of a batch: successes plus per-file error
// messages. Errors is nil when every file succeeded.
type BatchResult struct {
	Results []ExtractionResult `json:"results"`
	Errors  []string           `json:"errors"`
}

// CommandData carries metadata about the summarized document.
type CommandData struct {
	ExtractedTextLength int `json:"extractedTextLength"`
}

// SummaryResult is returned by the single-file summary endpoint.
type SummaryResult struct {
	Summary     string        `json:"summary"`
	Messages    []ChatMessage `json:"messages"`
	Usage       *UsageRecord  `json:"usage"`
	Model       string        `json:"model"`
	Cost        CostEstimate  `json:"cost"`
	CommandData CommandData   `json:"commandData"`
	Steps       []Step        `json:"steps"`
}

// Preferences is the small subset of session state that survives restarts.
type Preferences struct {
	Provider ProviderID `json:"provider"`
	Theme    Theme      `json:"theme"`
	Enrich   bool       `json:"enrich"`
}

// DefaultPreferences returns the preferences of a user who never saved any.
func DefaultPreferences() Preferences {
	return Preferences{Provider: ProviderLocal, Theme: ThemeLight, Enrich: true}
}

// Validate checks that the provider and theme are known values.
func (p Preferences) Validate() error {
	if !p.Provider.IsKnown() {
		return ErrInvalidPreferences
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		return ErrInvalidPreferences
	}
	return nil
}
