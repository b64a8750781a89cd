// Package progress tracks per-file pipeline stages and the shared
// user-facing processing log.
package progress

import (
	"errors"
	"sync"
	"time"

	"devisflow/internal/domain"
)

// ErrOutOfOrder is returned for a transition that breaks the declared stage
// order or the idle → running → done|error lifecycle.
var ErrOutOfOrder = errors.New("stage transition out of order")

// Observer receives every stage transition.
type Observer func(domain.StageEvent)

// Timeline is the ordered stage list of one file's pipeline. Stages move
// only when the caller reports a real outcome; nothing advances on a timer.
type Timeline struct {
	mu       sync.Mutex
	file     string
	steps    []domain.Step
	observer Observer
	now      func() time.Time
}

// NewTimeline creates a timeline for file with every stage idle. observer
// may be nil.
func NewTimeline(file string, observer Observer) *Timeline {
	steps := make([]domain.Step, len(domain.Stages))
	for i, id := range domain.Stages {
		steps[i] = domain.Step{ID: id, Label: domain.StageLabels[id], Status: domain.StatusIdle}
	}
	return &Timeline{file: file, steps: steps, observer: observer, now: time.Now}
}

// File returns the file name the timeline belongs to.
func (t *Timeline) File() string { return t.file }

// Start moves stage from idle to running. Every earlier stage must be done.
func (t *Timeline) Start(stage domain.StageID) error {
	return t.transition(stage, domain.StatusRunning, func(i int) bool {
		if t.steps[i].Status != domain.StatusIdle {
			return false
		}
		for _, s := range t.steps[:i] {
			if s.Status != domain.StatusDone {
				return false
			}
		}
		return true
	})
}

// Complete moves a running stage to done.
func (t *Timeline) Complete(stage domain.StageID) error {
	return t.transition(stage, domain.StatusDone, func(i int) bool {
		return t.steps[i].Status == domain.StatusRunning
	})
}

// Fail moves an idle or running stage to error. No earlier stage may still
// be running and no later stage may have left idle.
func (t *Timeline) Fail(stage domain.StageID) error {
	return t.transition(stage, domain.StatusError, func(i int) bool {
		if st := t.steps[i].Status; st != domain.StatusIdle && st != domain.StatusRunning {
			return false
		}
		for _, s := range t.steps[:i] {
			if s.Status == domain.StatusRunning {
				return false
			}
		}
		for _, s := range t.steps[i+1:] {
			if s.Status != domain.StatusIdle {
				return false
			}
		}
		return true
	})
}

// Finish settles the finalize stage from the pipeline outcome. On success
// finalize runs and completes. On failure the running stage, if any, and
// finalize are marked error.
func (t *Timeline) Finish(outcome error) error {
	if outcome == nil {
		if err := t.Start(domain.StageFinalize); err != nil {
			return err
		}
		return t.Complete(domain.StageFinalize)
	}
	if running, ok := t.Running(); ok && running != domain.StageFinalize {
		if err := t.Fail(running); err != nil {
			return err
		}
	}
	return t.Fail(domain.StageFinalize)
}

// Running returns the stage currently running, if any.
func (t *Timeline) Running() (domain.StageID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.steps {
		if s.Status == domain.StatusRunning {
			return s.ID, true
		}
	}
	return "", false
}

// Status returns the status of stage.
func (t *Timeline) Status(stage domain.StageID) domain.StageStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.index(stage); i >= 0 {
		return t.steps[i].Status
	}
	return domain.StatusIdle
}

// Snapshot returns a copy of the steps in declared order.
func (t *Timeline) Snapshot() []domain.Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Step, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *Timeline) index(stage domain.StageID) int {
	for i, s := range t.steps {
		if s.ID == stage {
			return i
		}
	}
	return -1
}

func (t *Timeline) transition(stage domain.StageID, to domain.StageStatus, allowed func(i int) bool) error {
	t.mu.Lock()
	i := t.index(stage)
	if i < 0 || !allowed(i) {
		t.mu.Unlock()
		return ErrOutOfOrder
	}
	at := t.now()
	t.steps[i].Status = to
	t.steps[i].UpdatedAt = &at
	t.mu.Unlock()

	if t.observer != nil {
		t.observer(domain.StageEvent{File: t.file, Stage: stage, Status: to, At: at})
	}
	return nil
}
