// Package csvexport writes processing log entries as CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"devisflow/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first so spreadsheet tools
// detect the encoding of accented messages.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{"ID", "Timestamp", "Level", "Message"}

// Writer wraps csv.Writer for exporting log entries.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEntries writes one row per entry.
func (w *Writer) WriteEntries(entries []domain.LogEntry) error {
	for i := range entries {
		if err := w.csv.Write(entryToRow(&entries[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func entryToRow(e *domain.LogEntry) []string {
	return []string{
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Level),
		e.Message,
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters other than letters, digits, hyphen
// and underscore with _, collapses runs of underscores and truncates to 100
// characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_prefix}_{YYYY-MM-DD}.{ext} for a
// Content-Disposition header.
func BuildFilename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(prefix), now.Format("2006-01-02"), ext)
}
