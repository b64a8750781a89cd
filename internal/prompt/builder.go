// Package prompt builds the chat messages sent to the LLM gateway for
// structured extraction and for business summaries of quote PDFs.
package prompt

import (
	"strings"
	"unicode/utf8"

	"devisflow/internal/domain"
)

// MaxTextLength is the default cap, in characters, on document text embedded
// in a prompt.
const MaxTextLength = 15000

// Prompt is a ready-to-send system/user pair.
type Prompt struct {
	Variant domain.PromptVariant
	System  string
	User    string
}

// Messages returns the prompt as chat messages. An empty system prompt is
// omitted.
func (p Prompt) Messages() []domain.ChatMessage {
	msgs := make([]domain.ChatMessage, 0, 2)
	if p.System != "" {
		msgs = append(msgs, domain.ChatMessage{Role: "system", Content: p.System})
	}
	return append(msgs, domain.ChatMessage{Role: "user", Content: p.User})
}

// Truncate caps text at MaxTextLength characters.
func Truncate(text string) string {
	return truncate(text, MaxTextLength)
}

func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}

// Builder assembles prompts. The zero value uses MaxTextLength.
type Builder struct {
	maxLen int
}

// NewBuilder creates a Builder capping embedded text at maxLen characters.
// A non-positive maxLen selects MaxTextLength.
func NewBuilder(maxLen int) *Builder {
	if maxLen <= 0 {
		maxLen = MaxTextLength
	}
	return &Builder{maxLen: maxLen}
}

func (b *Builder) limit() int {
	if b == nil || b.maxLen <= 0 {
		return MaxTextLength
	}
	return b.maxLen
}

// Clip caps text at the builder's limit.
func (b *Builder) Clip(text string) string {
	return truncate(text, b.limit())
}

// Extraction returns the structured-extraction prompt for text, or the
// degraded prompt when text is blank.
func (b *Builder) Extraction(text string) Prompt {
	if strings.TrimSpace(text) == "" {
		return Degraded()
	}
	return Prompt{
		Variant: domain.PromptExtraction,
		User:    extractionIntro + truncate(text, b.limit()) + extractionRules,
	}
}

// Summary returns the business-digest prompt for text, or the degraded
// prompt when text is blank.
func (b *Builder) Summary(text string) Prompt {
	if strings.TrimSpace(text) == "" {
		return Degraded()
	}
	return Prompt{
		Variant: domain.PromptSummary,
		System:  summarySystem,
		User:    summaryIntro + truncate(text, b.limit()),
	}
}

// Degraded is used when no text could be read from the document.
func Degraded() Prompt {
	return Prompt{
		Variant: domain.PromptDegraded,
		System:  summarySystem,
		User:    degradedUser,
	}
}
