package formflow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/petal-labs/formflow/condition"
)

// Graph errors
var (
	ErrBlockNotFound  = errors.New("block not found")
	ErrDuplicateBlock = errors.New("duplicate block ID")
	ErrEmptySource    = errors.New("connection has no source block")
	ErrNoStartBlock   = errors.New("no start block defined")
)

// Rule is one conditional branch within a Connection: when its
// condition group matches the answer, navigation jumps to the target.
type Rule struct {
	ID            string
	TargetBlockID string
	Conditions    condition.Group
}

// Connection is the outgoing transition specification for exactly one
// source block.
//
// Rules are evaluated in slice order; first match wins, so the order
// must be preserved exactly as authored. DefaultTargetID is the
// fallback when no rule matches; empty means no fallback and a
// possible end of the form. OrderIndex is display-only linearization
// state and is never consulted during resolution.
type Connection struct {
	ID              string
	SourceID        string
	DefaultTargetID string
	Rules           []Rule
	OrderIndex      int
}

// clone returns a deep copy of the connection.
func (c *Connection) clone() *Connection {
	out := *c
	out.Rules = make([]Rule, len(c.Rules))
	for i, r := range c.Rules {
		out.Rules[i] = r
		out.Rules[i].Conditions.Conditions = append([]condition.Condition(nil), r.Conditions.Conditions...)
	}
	return &out
}

// FormGraph is a snapshot of one form's blocks and connections: the
// explicit value object the engine operates on instead of any ambient
// application state.
//
// Connections are keyed by source block id, at most one per source.
// Target ids are allowed to dangle (point at deleted blocks); the
// authoring checker treats dangling targets like any other edge.
type FormGraph struct {
	startID     string
	blocks      map[string]Block
	blockOrder  []string
	connections map[string]*Connection
}

// NewFormGraph creates an empty form graph.
func NewFormGraph() *FormGraph {
	return &FormGraph{
		blocks:      make(map[string]Block),
		blockOrder:  make([]string, 0),
		connections: make(map[string]*Connection),
	}
}

// AddBlock adds a block to the graph.
// Returns an error if a block with the same ID already exists.
func (g *FormGraph) AddBlock(b Block) error {
	if b.ID == "" {
		return errors.New("cannot add block with empty ID")
	}
	if _, exists := g.blocks[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.ID)
	}
	g.blocks[b.ID] = b
	g.blockOrder = append(g.blockOrder, b.ID)
	return nil
}

// Block retrieves a block by its ID.
func (g *FormGraph) Block(id string) (Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Blocks returns all blocks in insertion order.
func (g *FormGraph) Blocks() []Block {
	out := make([]Block, 0, len(g.blockOrder))
	for _, id := range g.blockOrder {
		out = append(out, g.blocks[id])
	}
	return out
}

// SetStart designates the start block. The block must exist.
func (g *FormGraph) SetStart(id string) error {
	if _, ok := g.blocks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	g.startID = id
	return nil
}

// StartID returns the designated start block id, or "" when none is set.
func (g *FormGraph) StartID() string {
	return g.startID
}

// SetConnection installs the outgoing connection for its source block,
// replacing any existing connection for that source. This is what
// keeps the one-connection-per-source invariant: the graph is a map
// keyed by source id, not a list that can hold duplicates.
func (g *FormGraph) SetConnection(c Connection) error {
	if c.SourceID == "" {
		return ErrEmptySource
	}
	g.connections[c.SourceID] = c.clone()
	return nil
}

// Connection returns the outgoing connection for a source block.
func (g *FormGraph) Connection(sourceID string) (*Connection, bool) {
	c, ok := g.connections[sourceID]
	return c, ok
}

// ConnectionByID finds a connection by its own id rather than its
// source block. Used by the authoring layer, where edits identify the
// connection being changed.
func (g *FormGraph) ConnectionByID(id string) (*Connection, bool) {
	for _, c := range g.connections {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// RemoveConnection deletes the outgoing connection of a source block.
// Removing a missing connection is a no-op.
func (g *FormGraph) RemoveConnection(sourceID string) {
	delete(g.connections, sourceID)
}

// Connections returns all connections ordered by their source block's
// insertion order, with connections for unknown sources appended last.
func (g *FormGraph) Connections() []*Connection {
	out := make([]*Connection, 0, len(g.connections))
	seen := make(map[string]bool, len(g.connections))
	for _, id := range g.blockOrder {
		if c, ok := g.connections[id]; ok {
			out = append(out, c)
			seen[id] = true
		}
	}
	var tail []*Connection
	for _, c := range g.connections {
		if !seen[c.SourceID] {
			tail = append(tail, c)
		}
	}
	sort.Slice(tail, func(i, j int) bool { return tail[i].SourceID < tail[j].SourceID })
	return append(out, tail...)
}

// Clone returns a deep copy of the graph. Authoring sessions clone the
// snapshot they were given so check-then-apply runs against one
// consistent state.
func (g *FormGraph) Clone() *FormGraph {
	out := NewFormGraph()
	out.startID = g.startID
	for _, id := range g.blockOrder {
		out.blocks[id] = g.blocks[id]
		out.blockOrder = append(out.blockOrder, id)
	}
	for sourceID, c := range g.connections {
		out.connections[sourceID] = c.clone()
	}
	return out
}
