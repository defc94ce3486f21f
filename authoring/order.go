package authoring

import "github.com/petal-labs/formflow"

// OrderedBlock is one entry in the canonical display ordering.
// Disconnected marks blocks unreachable from the start block.
type OrderedBlock struct {
	BlockID      string
	Index        int
	Disconnected bool
}

// ComputeOrder linearizes the graph breadth-first from the start
// block, visiting each connection's default target before its rule
// targets (in rule order) so the ordering approximates the most common
// path. Blocks unreachable from the start are appended in their prior
// relative order and flagged disconnected.
//
// The result is advisory, used for list display only. Resolution never
// consults it. Without a start block the ordering is undefined and the
// existing stored order is returned unchanged.
func ComputeOrder(g *formflow.FormGraph) []OrderedBlock {
	blocks := g.Blocks()
	start := g.StartID()
	if start == "" {
		out := make([]OrderedBlock, 0, len(blocks))
		for i, b := range blocks {
			out = append(out, OrderedBlock{BlockID: b.ID, Index: i})
		}
		return out
	}

	visited := make(map[string]bool, len(blocks))
	var out []OrderedBlock

	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		// Dangling targets have no block to order, but traversal still
		// dequeues them so their connections (none) cannot stall it.
		if _, ok := g.Block(current); ok {
			out = append(out, OrderedBlock{BlockID: current, Index: len(out)})
		}

		conn, ok := g.Connection(current)
		if !ok {
			continue
		}
		if conn.DefaultTargetID != "" {
			queue = append(queue, conn.DefaultTargetID)
		}
		for _, r := range conn.Rules {
			if r.TargetBlockID != "" {
				queue = append(queue, r.TargetBlockID)
			}
		}
	}

	// Structurally disconnected blocks keep their prior relative order.
	for _, b := range blocks {
		if !visited[b.ID] {
			out = append(out, OrderedBlock{BlockID: b.ID, Index: len(out), Disconnected: true})
		}
	}
	return out
}

// SyncOrder recomputes the canonical ordering and writes the resulting
// indexes onto the snapshot's connections. The computation itself is
// ComputeOrder and stays independently testable; persisting the
// indexes is the caller's job.
func SyncOrder(g *formflow.FormGraph) []OrderedBlock {
	order := ComputeOrder(g)
	for _, ob := range order {
		if conn, ok := g.Connection(ob.BlockID); ok {
			conn.OrderIndex = ob.Index
		}
	}
	return order
}
