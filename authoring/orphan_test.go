package authoring

import (
	"errors"
	"testing"

	"github.com/petal-labs/formflow"
)

// chain builds the graph A -> B -> C over default targets, with A as
// the start block.
func chain(t *testing.T) *formflow.FormGraph {
	t.Helper()
	g := formflow.NewFormGraph()
	for _, id := range []string{"A", "B", "C"} {
		if err := g.AddBlock(formflow.Block{ID: id, Kind: formflow.BlockShortText}); err != nil {
			t.Fatalf("AddBlock(%s): %v", id, err)
		}
	}
	if err := g.SetStart("A"); err != nil {
		t.Fatalf("SetStart: %v", err)
	}
	g.SetConnection(formflow.Connection{ID: "connA", SourceID: "A", DefaultTargetID: "B"})
	g.SetConnection(formflow.Connection{ID: "connB", SourceID: "B", DefaultTargetID: "C"})
	return g
}

func TestIncomingCounts(t *testing.T) {
	g := chain(t)
	g.SetConnection(formflow.Connection{
		ID:       "connC",
		SourceID: "C",
		Rules: []formflow.Rule{
			{ID: "r1", TargetBlockID: "B"},
			{ID: "r2", TargetBlockID: "ghost"}, // dangling targets still count
		},
	})

	counts := IncomingCounts(g)
	if counts["B"] != 2 {
		t.Errorf("counts[B] = %d, want 2", counts["B"])
	}
	if counts["C"] != 1 {
		t.Errorf("counts[C] = %d, want 1", counts["C"])
	}
	if counts["ghost"] != 1 {
		t.Errorf("counts[ghost] = %d, want 1", counts["ghost"])
	}
	if counts["A"] != 0 {
		t.Errorf("counts[A] = %d, want 0", counts["A"])
	}
}

func TestWouldOrphan(t *testing.T) {
	g := chain(t)

	retarget := Retarget{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}
	if !WouldOrphan(g, retarget) {
		t.Error("retargeting A's default from B to C should orphan B")
	}

	// A second edge into B keeps it reachable.
	g.SetConnection(formflow.Connection{
		ID:       "connC",
		SourceID: "C",
		Rules:    []formflow.Rule{{ID: "r1", TargetBlockID: "B"}},
	})
	if WouldOrphan(g, retarget) {
		t.Error("B still has an incoming edge, no orphan")
	}
}

func TestWouldOrphan_StartBlockExempt(t *testing.T) {
	g := chain(t)
	g.SetConnection(formflow.Connection{ID: "connC", SourceID: "C", DefaultTargetID: "A"})

	change := Retarget{ConnectionID: "connC", OldTargetID: "A", NewTargetID: "B"}
	if WouldOrphan(g, change) {
		t.Error("the start block is reachable by definition and never orphaned")
	}
}

func TestSession_ConfirmAppliesDespiteOrphan(t *testing.T) {
	s := NewSession(chain(t), 7)

	alert, err := s.Propose(Retarget{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}, 7)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if alert == nil {
		t.Fatal("Propose() should surface an orphan alert")
	}
	want := OrphanAlert{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}
	if *alert != want {
		t.Errorf("alert = %+v, want %+v", *alert, want)
	}
	if s.State() != StatePendingConfirmation {
		t.Errorf("State() = %v, want pending", s.State())
	}

	// Modal: no further edit may start while pending.
	_, err = s.Propose(Retarget{ConnectionID: "connB", OldTargetID: "C", NewTargetID: "A"}, 7)
	if !errors.Is(err, ErrEditPending) {
		t.Errorf("Propose() while pending error = %v, want %v", err, ErrEditPending)
	}

	if err := s.Confirm(); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if s.Version() != 8 {
		t.Errorf("Version() = %d, want 8", s.Version())
	}

	conn, _ := s.Graph().Connection("A")
	if conn.DefaultTargetID != "C" {
		t.Errorf("A's default = %q, want C", conn.DefaultTargetID)
	}
	if IncomingCounts(s.Graph())["B"] != 0 {
		t.Error("B should now be orphaned")
	}
}

func TestSession_CancelRestoresPriorState(t *testing.T) {
	s := NewSession(chain(t), 0)

	alert, err := s.Propose(Retarget{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}, 0)
	if err != nil || alert == nil {
		t.Fatalf("Propose() = %v, %v", alert, err)
	}

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if s.Version() != 0 {
		t.Errorf("Version() = %d, want unchanged 0", s.Version())
	}

	conn, _ := s.Graph().Connection("A")
	if conn.DefaultTargetID != "B" {
		t.Errorf("A's default = %q, want B unchanged", conn.DefaultTargetID)
	}
}

func TestSession_AppliesHarmlessEditImmediately(t *testing.T) {
	g := chain(t)
	// Second edge into B so retargeting A cannot orphan it.
	g.SetConnection(formflow.Connection{
		ID:       "connC",
		SourceID: "C",
		Rules:    []formflow.Rule{{ID: "r1", TargetBlockID: "B"}},
	})
	s := NewSession(g, 1)

	alert, err := s.Propose(Retarget{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}, 1)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if alert != nil {
		t.Fatalf("Propose() alert = %+v, want immediate apply", alert)
	}
	if s.Version() != 2 {
		t.Errorf("Version() = %d, want 2", s.Version())
	}
}

func TestSession_RuleRetarget(t *testing.T) {
	g := chain(t)
	g.SetConnection(formflow.Connection{
		ID:              "connB",
		SourceID:        "B",
		DefaultTargetID: "C",
		Rules:           []formflow.Rule{{ID: "r1", TargetBlockID: "C"}},
	})
	s := NewSession(g, 0)

	alert, err := s.Propose(Retarget{ConnectionID: "connB", RuleID: "r1", OldTargetID: "C", NewTargetID: "A"}, 0)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if alert != nil {
		t.Fatalf("C keeps its default edge, no alert expected, got %+v", alert)
	}

	conn, _ := s.Graph().Connection("B")
	if conn.Rules[0].TargetBlockID != "A" {
		t.Errorf("rule target = %q, want A", conn.Rules[0].TargetBlockID)
	}
	if conn.DefaultTargetID != "C" {
		t.Errorf("default target = %q, want untouched C", conn.DefaultTargetID)
	}
}

func TestSession_Staleness(t *testing.T) {
	s := NewSession(chain(t), 3)

	_, err := s.Propose(Retarget{ConnectionID: "connA", OldTargetID: "B", NewTargetID: "C"}, 2)
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Errorf("Propose() error = %v, want %v", err, ErrStaleSnapshot)
	}

	// Old target drifted: another author already retargeted the edge.
	_, err = s.Propose(Retarget{ConnectionID: "connA", OldTargetID: "X", NewTargetID: "C"}, 3)
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Errorf("Propose() error = %v, want %v", err, ErrStaleSnapshot)
	}
}

func TestSession_UnknownEdges(t *testing.T) {
	s := NewSession(chain(t), 0)

	_, err := s.Propose(Retarget{ConnectionID: "nope", OldTargetID: "B", NewTargetID: "C"}, 0)
	if !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Propose() error = %v, want %v", err, ErrConnectionNotFound)
	}

	_, err = s.Propose(Retarget{ConnectionID: "connA", RuleID: "ghost", OldTargetID: "B", NewTargetID: "C"}, 0)
	if !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("Propose() error = %v, want %v", err, ErrRuleNotFound)
	}
}

func TestSession_ConfirmCancelRequirePending(t *testing.T) {
	s := NewSession(chain(t), 0)

	if err := s.Confirm(); !errors.Is(err, ErrNoPendingEdit) {
		t.Errorf("Confirm() error = %v, want %v", err, ErrNoPendingEdit)
	}
	if err := s.Cancel(); !errors.Is(err, ErrNoPendingEdit) {
		t.Errorf("Cancel() error = %v, want %v", err, ErrNoPendingEdit)
	}
	if s.Pending() != nil {
		t.Error("Pending() should be nil while idle")
	}
}
