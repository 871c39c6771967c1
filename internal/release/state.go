package release

import (
	"fmt"
	"slices"
)

// State tracks one release through its lifecycle. A plan becomes
// inspectable in StatePlanned, gains file writes in StateWriting and ends
// either committed or failed with the written files recorded.
type State int

const (
	StateIdle State = iota
	StatePlanned
	StateWriting
	StateCommitted
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlanned:
		return "planned"
	case StateWriting:
		return "writing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tracker enforces the release state machine:
//
//	IDLE ── compute ──► PLANNED ── apply ──► WRITING ──► COMMITTED
//	                       │                   │
//	                       └── discard ────────┴── fail ──► FAILED
//
// Invalid transitions are programming errors and fail loudly.
type Tracker struct {
	state   State
	written []string
}

// NewTracker starts a release in StateIdle.
func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// WrittenFiles returns the files flushed before a failure, empty unless
// the release is in StateFailed or StateCommitted.
func (t *Tracker) WrittenFiles() []string {
	return slices.Clone(t.written)
}

// Compute moves Idle to Planned.
func (t *Tracker) Compute() error {
	return t.transition(StateIdle, StatePlanned)
}

// BeginWrite moves Planned to Writing.
func (t *Tracker) BeginWrite() error {
	return t.transition(StatePlanned, StateWriting)
}

// Commit moves Writing to Committed, recording the written files.
func (t *Tracker) Commit(written []string) error {
	if err := t.transition(StateWriting, StateCommitted); err != nil {
		return err
	}
	t.written = slices.Clone(written)
	return nil
}

// Discard abandons a plan without writing, returning to Idle.
func (t *Tracker) Discard() error {
	return t.transition(StatePlanned, StateIdle)
}

// Fail moves Planned or Writing to Failed, recording which files were
// already flushed so the caller can roll them back.
func (t *Tracker) Fail(written []string) error {
	if t.state != StatePlanned && t.state != StateWriting {
		return fmt.Errorf("cannot fail a release in state %s", t.state)
	}
	t.state = StateFailed
	t.written = slices.Clone(written)
	return nil
}

func (t *Tracker) transition(from, to State) error {
	if t.state != from {
		return fmt.Errorf("cannot move release from %s to %s", t.state, to)
	}
	t.state = to
	return nil
}
