package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devisflow/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Timestamp", "Level", "Message"}, row)
}

func TestWriteEntries(t *testing.T) {
	ts := time.Date(2025, 7, 19, 10, 30, 0, 0, time.UTC)
	entries := []domain.LogEntry{
		{ID: "a1", Level: domain.LevelInfo, Message: "Parsing PDF: devis.pdf", Timestamp: ts},
		{ID: "b2", Level: domain.LevelError, Message: "openrouter API error (status 401): \"bad key\", retry", Timestamp: ts.Add(time.Second)},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteEntries(entries))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a1", "2025-07-19T10:30:00Z", "INFO", "Parsing PDF: devis.pdf"}, rows[0])
	assert.Equal(t, "ERROR", rows[1][2])
	assert.Equal(t, entries[1].Message, rows[1][3])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"devisflow logs", "devisflow_logs"},
		{"journal été / 2025", "journal_t_2025"},
		{"__a__b__", "a_b"},
		{"plain-name_ok", "plain-name_ok"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "devisflow_logs_2026-03-04.csv", BuildFilename("devisflow logs", "csv", now))
	assert.Equal(t, "logs_2026-03-04.txt", BuildFilename("logs", "txt", now))
}
