package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devisflow/internal/csvexport"
	"devisflow/internal/domain"
)

// DefaultLogCapacity is the number of entries kept when no capacity is
// configured.
const DefaultLogCapacity = 500

// Filter selects log entries. Empty fields match everything.
type Filter struct {
	Levels []domain.LogLevel
	Query  string
}

func (f Filter) match(e domain.LogEntry) bool {
	if len(f.Levels) > 0 {
		found := false
		for _, l := range f.Levels {
			if l == e.Level {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// LogBook is a bounded, append-only log shared by concurrent pipelines.
// Once full, each append evicts the oldest entry under the same lock.
type LogBook struct {
	mu    sync.Mutex
	ring  []domain.LogEntry
	head  int
	count int
	log   *zap.Logger
	now   func() time.Time
}

// NewLogBook creates a LogBook holding at most capacity entries. Entries are
// mirrored to log, or to zap.L() when log is nil.
func NewLogBook(capacity int, log *zap.Logger) *LogBook {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if log == nil {
		log = zap.L()
	}
	return &LogBook{
		ring: make([]domain.LogEntry, capacity),
		log:  log.Named("logbook"),
		now:  time.Now,
	}
}

// Append records message at level and returns the stored entry.
func (b *LogBook) Append(level domain.LogLevel, message string) domain.LogEntry {
	e := domain.LogEntry{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
	}

	b.mu.Lock()
	e.Timestamp = b.now()
	idx := (b.head + b.count) % len(b.ring)
	b.ring[idx] = e
	if b.count < len(b.ring) {
		b.count++
	} else {
		b.head = (b.head + 1) % len(b.ring)
	}
	b.mu.Unlock()

	b.mirror(e)
	return e
}

// Infof appends a formatted INFO entry.
func (b *LogBook) Infof(format string, args ...any) {
	b.Append(domain.LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf appends a formatted WARNING entry.
func (b *LogBook) Warnf(format string, args ...any) {
	b.Append(domain.LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf appends a formatted ERROR entry.
func (b *LogBook) Errorf(format string, args ...any) {
	b.Append(domain.LevelError, fmt.Sprintf(format, args...))
}

// Debugf appends a formatted DEBUG entry.
func (b *LogBook) Debugf(format string, args ...any) {
	b.Append(domain.LevelDebug, fmt.Sprintf(format, args...))
}

func (b *LogBook) mirror(e domain.LogEntry) {
	fields := []zap.Field{zap.String("entry_id", e.ID)}
	switch e.Level {
	case domain.LevelDebug:
		b.log.Debug(e.Message, fields...)
	case domain.LevelWarning:
		b.log.Warn(e.Message, fields...)
	case domain.LevelError:
		b.log.Error(e.Message, fields...)
	default:
		b.log.Info(e.Message, fields...)
	}
}

// Len returns the number of stored entries.
func (b *LogBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Entries returns the matching entries, oldest first.
func (b *LogBook) Entries(f Filter) []domain.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.LogEntry, 0, b.count)
	for i := 0; i < b.count; i++ {
		e := b.ring[(b.head+i)%len(b.ring)]
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops every entry.
func (b *LogBook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.ring {
		b.ring[i] = domain.LogEntry{}
	}
	b.head, b.count = 0, 0
}

// WriteText writes the matching entries as "[timestamp] LEVEL message" lines.
func (b *LogBook) WriteText(w io.Writer, f Filter) error {
	for _, e := range b.Entries(f) {
		if _, err := fmt.Fprintf(w, "[%s] %s %s\n", e.Timestamp.UTC().Format(time.RFC3339), e.Level, e.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the matching entries as CSV with a header row.
func (b *LogBook) WriteCSV(w io.Writer, f Filter) error {
	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteEntries(b.Entries(f)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
