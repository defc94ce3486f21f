// Package authoring implements the consistency checks run against a
// form's connection graph before an edit is committed: orphan
// detection with an explicit confirmation flow, and the canonical
// display ordering of blocks.
//
// All analysis operates on a FormGraph snapshot passed in explicitly;
// nothing here reads ambient application state.
package authoring

import "github.com/petal-labs/formflow"

// Retarget describes a proposed change of one edge's target: a
// connection's default target when RuleID is empty, or the named
// rule's target otherwise. The change is a value; nothing is mutated
// until a session applies it.
type Retarget struct {
	ConnectionID string
	RuleID       string
	OldTargetID  string
	NewTargetID  string
}

// OrphanAlert carries the details surfaced to the author when a
// retarget would strand the old target with no incoming edges.
type OrphanAlert struct {
	ConnectionID string
	OldTargetID  string
	NewTargetID  string
}

// IncomingCounts returns the number of incoming edges per block id:
// every connection's default target plus every rule target. Targets
// that no longer resolve to a live block are counted like any other;
// a dangling edge still feeds reachability.
func IncomingCounts(g *formflow.FormGraph) map[string]int {
	counts := make(map[string]int)
	for _, c := range g.Connections() {
		if c.DefaultTargetID != "" {
			counts[c.DefaultTargetID]++
		}
		for _, r := range c.Rules {
			if r.TargetBlockID != "" {
				counts[r.TargetBlockID]++
			}
		}
	}
	return counts
}

// WouldOrphan reports whether applying the retarget leaves the old
// target with zero incoming edges. The start block is reachable by
// definition and is never flagged.
func WouldOrphan(g *formflow.FormGraph, change Retarget) bool {
	old := change.OldTargetID
	if old == "" || old == change.NewTargetID || old == g.StartID() {
		return false
	}
	// The edge being retargeted currently points at old and is counted
	// once; everything left after removing it must keep old reachable.
	return IncomingCounts(g)[old]-1 <= 0
}
