package service

import (
	"context"
	"errors"
	"sync"

	"devisflow/internal/domain"
	"devisflow/internal/progress"
)

// subscriberBuffer bounds each subscriber's pending events. Slow
// subscribers miss events rather than stall the pipeline.
const subscriberBuffer = 64

// FileTimeline is the snapshot of one file's timeline.
type FileTimeline struct {
	File  string        `json:"file"`
	Steps []domain.Step `json:"steps"`
}

// Session is the processing state of one user: the last request, whether a
// submission is in flight, the last result and the per-file timelines.
// At most one submission runs at a time.
type Session struct {
	userID string
	svc    ExtractionService
	logs   *progress.LogBook

	mu         sync.Mutex
	inFlight   bool
	cancel     context.CancelFunc
	last       *domain.ExtractionRequest
	lastResult *domain.BatchResult
	timelines  []*progress.Timeline

	subMu   sync.Mutex
	subs    map[int]chan domain.StageEvent
	nextSub int
}

// NewSession creates a Session for userID.
func NewSession(userID string, svc ExtractionService, logs *progress.LogBook) *Session {
	if logs == nil {
		logs = progress.NewLogBook(progress.DefaultLogCapacity, nil)
	}
	return &Session{
		userID: userID,
		svc:    svc,
		logs:   logs,
		subs:   make(map[int]chan domain.StageEvent),
	}
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// Logs returns the session's log book.
func (s *Session) Logs() *progress.LogBook { return s.logs }

// Submit runs req through the extraction pipeline. It fails with
// domain.ErrSubmissionInProgress while another submission runs and with
// domain.ErrSubmissionCanceled when Cancel interrupted it.
func (s *Session) Submit(ctx context.Context, req domain.ExtractionRequest) (*domain.BatchResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, domain.ErrSubmissionInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	s.inFlight = true
	s.cancel = cancel
	s.last = &req
	s.timelines = nil
	s.mu.Unlock()

	result, err := s.svc.ProcessBatch(ctx, req, Tracker{
		Observer:   s.publish,
		Logs:       s.logs,
		OnTimeline: s.track,
	})
	canceled := errors.Is(ctx.Err(), context.Canceled)
	cancel()

	s.mu.Lock()
	s.inFlight = false
	s.cancel = nil
	if err == nil && !canceled {
		s.lastResult = result
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if canceled {
		return result, domain.ErrSubmissionCanceled
	}
	return result, nil
}

// Cancel interrupts the in-flight submission. It reports whether one was
// running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight || s.cancel == nil {
		return false
	}
	s.logs.Warnf("Cancel requested")
	s.cancel()
	return true
}

// Retry re-submits the last request.
func (s *Session) Retry(ctx context.Context) (*domain.BatchResult, error) {
	s.mu.Lock()
	if s.last == nil {
		s.mu.Unlock()
		return nil, domain.ErrNothingToRetry
	}
	req := *s.last
	s.mu.Unlock()

	s.logs.Infof("Retry requested")
	return s.Submit(ctx, req)
}

// InFlight reports whether a submission is running.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastResult returns the result of the last completed submission, or nil.
func (s *Session) LastResult() *domain.BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Timelines returns a snapshot of the current submission's timelines in
// file order.
func (s *Session) Timelines() []FileTimeline {
	s.mu.Lock()
	tls := append([]*progress.Timeline(nil), s.timelines...)
	s.mu.Unlock()

	out := make([]FileTimeline, len(tls))
	for i, tl := range tls {
		out[i] = FileTimeline{File: tl.File(), Steps: tl.Snapshot()}
	}
	return out
}

// Subscribe returns a channel of stage events and a function that ends the
// subscription and closes the channel.
func (s *Session) Subscribe() (<-chan domain.StageEvent, func()) {
	ch := make(chan domain.StageEvent, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Tracker returns a Tracker that feeds the session's log book and
// subscribers without registering timelines, for one-off operations such as
// Summarize.
func (s *Session) Tracker() Tracker {
	return Tracker{Observer: s.publish, Logs: s.logs}
}

func (s *Session) track(tl *progress.Timeline) {
	s.mu.Lock()
	s.timelines = append(s.timelines, tl)
	s.mu.Unlock()
}

func (s *Session) publish(ev domain.StageEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SessionRegistry hands out one Session per user.
type SessionRegistry struct {
	svc         ExtractionService
	logCapacity int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates a registry whose sessions keep logCapacity log
// entries each.
func NewSessionRegistry(svc ExtractionService, logCapacity int) *SessionRegistry {
	return &SessionRegistry{
		svc:         svc,
		logCapacity: logCapacity,
		sessions:    make(map[string]*Session),
	}
}

// Get returns the session of userID, creating it on first use.
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := NewSession(userID, r.svc, progress.NewLogBook(r.logCapacity, nil))
	r.sessions[userID] = s
	return s
}
