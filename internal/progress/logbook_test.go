package progress

import (
	"bytes"
	"encoding/csv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"devisflow/internal/domain"
)

func fixedClock() func() time.Time {
	base := time.Date(2025, 7, 19, 8, 0, 0, 0, time.UTC)
	n := 0
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestLogBook_EvictsOldest(t *testing.T) {
	b := NewLogBook(3, zap.NewNop())

	for i := 1; i <= 5; i++ {
		b.Infof("entry %d", i)
	}

	entries := b.Entries(Filter{})
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 3", entries[0].Message)
	assert.Equal(t, "entry 5", entries[2].Message)
	assert.Equal(t, 3, b.Len())
}

func TestLogBook_DefaultCapacity(t *testing.T) {
	b := NewLogBook(0, zap.NewNop())

	for i := 0; i < DefaultLogCapacity+25; i++ {
		b.Debugf("line %d", i)
	}

	assert.Equal(t, DefaultLogCapacity, b.Len())
	assert.Equal(t, "line 25", b.Entries(Filter{})[0].Message)
}

func TestLogBook_ConcurrentAppends(t *testing.T) {
	b := NewLogBook(1000, zap.NewNop())

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.Infof("worker %d line %d", w, i)
			}
		}(w)
	}
	wg.Wait()

	entries := b.Entries(Filter{})
	assert.Len(t, entries, 500)
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ID] = struct{}{}
	}
	assert.Len(t, ids, 500)
}

func TestLogBook_ConcurrentAppendsPastCapacity(t *testing.T) {
	b := NewLogBook(64, zap.NewNop())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Warnf("line %d", i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, b.Len())
	for _, e := range b.Entries(Filter{}) {
		assert.NotEmpty(t, e.ID)
	}
}

func TestLogBook_Filter(t *testing.T) {
	b := NewLogBook(10, zap.NewNop())
	b.Infof("Parsing PDF: devis.pdf")
	b.Warnf("demo mode: sample text substituted for scan.pdf")
	b.Errorf("openrouter API error (status 401) for DEVIS.pdf")
	b.Debugf("prompt length 1200")

	got := b.Entries(Filter{Levels: []domain.LogLevel{domain.LevelInfo, domain.LevelError}})
	require.Len(t, got, 2)
	assert.Equal(t, domain.LevelInfo, got[0].Level)
	assert.Equal(t, domain.LevelError, got[1].Level)

	got = b.Entries(Filter{Query: "devis.PDF"})
	assert.Len(t, got, 2)

	got = b.Entries(Filter{Levels: []domain.LogLevel{domain.LevelWarning}, Query: "devis"})
	assert.Empty(t, got)
}

func TestLogBook_Clear(t *testing.T) {
	b := NewLogBook(2, zap.NewNop())
	b.Infof("a")
	b.Infof("b")
	b.Infof("c")

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Entries(Filter{}))

	b.Infof("d")
	assert.Equal(t, "d", b.Entries(Filter{})[0].Message)
}

func TestLogBook_WriteText(t *testing.T) {
	b := NewLogBook(10, zap.NewNop())
	b.now = fixedClock()
	b.Infof("Préparation de devis.pdf")
	b.Errorf("analyse échouée")

	var buf bytes.Buffer
	require.NoError(t, b.WriteText(&buf, Filter{}))

	assert.Equal(t,
		"[2025-07-19T08:00:01Z] INFO Préparation de devis.pdf\n[2025-07-19T08:00:02Z] ERROR analyse échouée\n",
		buf.String())
}

func TestLogBook_WriteCSV(t *testing.T) {
	b := NewLogBook(10, zap.NewNop())
	b.now = fixedClock()
	b.Infof("one")
	b.Warnf("two, with comma")

	var buf bytes.Buffer
	require.NoError(t, b.WriteCSV(&buf, Filter{Levels: []domain.LogLevel{domain.LevelWarning}}))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Level", rows[0][2])
	assert.Equal(t, []string{"WARNING", "two, with comma"}, rows[1][2:])
}

func TestLogBook_MirrorsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := NewLogBook(10, zap.New(core))

	b.Infof("info %s", "x")
	b.Warnf("warn")
	b.Errorf("err")
	b.Debugf("dbg")

	require.Equal(t, 4, logs.Len())
	levels := make([]zapcore.Level, 0, 4)
	for _, e := range logs.All() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.DebugLevel}, levels)
	assert.Equal(t, "info x", logs.All()[0].Message)
	assert.Equal(t, b.Entries(Filter{})[0].ID, logs.All()[0].ContextMap()["entry_id"])
}
