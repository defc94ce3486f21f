package authoring

import (
	"errors"
	"fmt"

	"github.com/petal-labs/formflow"
)

// Session errors
var (
	ErrEditPending        = errors.New("a graph edit is awaiting confirmation")
	ErrNoPendingEdit      = errors.New("no graph edit is awaiting confirmation")
	ErrStaleSnapshot      = errors.New("graph snapshot is stale")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrRuleNotFound       = errors.New("rule not found")
)

// SessionState is the confirmation flow state.
type SessionState string

const (
	// StateIdle accepts new edits.
	StateIdle SessionState = "idle"
	// StatePendingConfirmation holds a parked orphan-producing edit.
	// The flow is modal: no other edit may start until the pending one
	// is confirmed or cancelled.
	StatePendingConfirmation SessionState = "pending_confirmation"
)

// Session serializes check-then-apply edits over one form's connection
// snapshot.
//
// The orphan check and the mutation it guards always run against the
// same snapshot: the session clones the graph it is given and owns
// that copy for its lifetime. A version token detects concurrent
// authors: a Propose carrying a stale version is rejected with
// ErrStaleSnapshot and the caller re-reads and retries.
type Session struct {
	graph   *formflow.FormGraph
	version int64
	state   SessionState
	pending *Retarget
}

// NewSession starts an editing session over a snapshot of the form's
// graph at the given version.
func NewSession(g *formflow.FormGraph, version int64) *Session {
	return &Session{
		graph:   g.Clone(),
		version: version,
		state:   StateIdle,
	}
}

// State returns the current confirmation flow state.
func (s *Session) State() SessionState {
	return s.state
}

// Version returns the session's current snapshot version. Applying an
// edit advances it.
func (s *Session) Version() int64 {
	return s.version
}

// Graph returns a copy of the session's current snapshot.
func (s *Session) Graph() *formflow.FormGraph {
	return s.graph.Clone()
}

// Pending returns the alert for the parked edit, or nil when idle.
func (s *Session) Pending() *OrphanAlert {
	if s.pending == nil {
		return nil
	}
	return &OrphanAlert{
		ConnectionID: s.pending.ConnectionID,
		OldTargetID:  s.pending.OldTargetID,
		NewTargetID:  s.pending.NewTargetID,
	}
}

// Propose validates and applies a retarget against the session
// snapshot. When the old target would be orphaned the edit is parked
// and the returned alert asks the author to confirm; a nil alert means
// the edit was applied immediately.
func (s *Session) Propose(change Retarget, version int64) (*OrphanAlert, error) {
	if s.state == StatePendingConfirmation {
		return nil, ErrEditPending
	}
	if version != s.version {
		return nil, fmt.Errorf("%w: have %d, session at %d", ErrStaleSnapshot, version, s.version)
	}
	if err := s.validate(change); err != nil {
		return nil, err
	}

	if WouldOrphan(s.graph, change) {
		s.pending = &change
		s.state = StatePendingConfirmation
		return s.Pending(), nil
	}

	s.apply(change)
	return nil, nil
}

// Confirm applies the parked edit despite the orphan it produces.
func (s *Session) Confirm() error {
	if s.state != StatePendingConfirmation {
		return ErrNoPendingEdit
	}
	s.apply(*s.pending)
	s.pending = nil
	s.state = StateIdle
	return nil
}

// Cancel discards the parked edit; the snapshot keeps its prior state.
func (s *Session) Cancel() error {
	if s.state != StatePendingConfirmation {
		return ErrNoPendingEdit
	}
	s.pending = nil
	s.state = StateIdle
	return nil
}

// validate checks the change identifies a live edge whose current
// target still matches OldTargetID. A drifted target means another
// author got there first; that surfaces as staleness, not corruption.
func (s *Session) validate(change Retarget) error {
	conn, ok := s.graph.ConnectionByID(change.ConnectionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, change.ConnectionID)
	}
	if change.RuleID == "" {
		if conn.DefaultTargetID != change.OldTargetID {
			return fmt.Errorf("%w: default target of %s is now %q", ErrStaleSnapshot, conn.ID, conn.DefaultTargetID)
		}
		return nil
	}
	for _, r := range conn.Rules {
		if r.ID != change.RuleID {
			continue
		}
		if r.TargetBlockID != change.OldTargetID {
			return fmt.Errorf("%w: target of rule %s is now %q", ErrStaleSnapshot, r.ID, r.TargetBlockID)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, change.RuleID)
}

// apply mutates the session snapshot and advances the version.
func (s *Session) apply(change Retarget) {
	conn, ok := s.graph.ConnectionByID(change.ConnectionID)
	if !ok {
		return
	}
	if change.RuleID == "" {
		conn.DefaultTargetID = change.NewTargetID
	} else {
		for i := range conn.Rules {
			if conn.Rules[i].ID == change.RuleID {
				conn.Rules[i].TargetBlockID = change.NewTargetID
				break
			}
		}
	}
	s.version++
}
