// Package pdftext pulls plain text out of PDF payloads.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"devisflow/internal/domain"
)

// PreviewLength is the number of characters kept in ExtractionStats.Preview.
const PreviewLength = 500

// Extractor implements port.TextExtractor with github.com/ledongthuc/pdf.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger selects zap.L().
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.L()
	}
	return &Extractor{log: log}
}

// ExtractText returns the text of every page joined by newlines. Parser
// errors and panics are logged and yield "".
func (e *Extractor) ExtractText(ctx context.Context, data []byte) string {
	if err := ctx.Err(); err != nil {
		return ""
	}
	text, err := e.extract(data)
	if err != nil {
		e.log.Warn("pdf text extraction failed", zap.Int("bytes", len(data)), zap.Error(err))
		return ""
	}
	return text
}

func (e *Extractor) extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Debug("skipping unreadable page", zap.Int("page", i), zap.Error(err))
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

// Stats describes text: character count, whitespace-separated word count
// and a preview of the first PreviewLength characters.
func Stats(text string) domain.ExtractionStats {
	preview := text
	if utf8.RuneCountInString(text) > PreviewLength {
		preview = string([]rune(text)[:PreviewLength])
	}
	return domain.ExtractionStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Preview:    preview,
	}
}
