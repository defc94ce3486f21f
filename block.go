package formflow

// BlockKind identifies the type of a form block.
type BlockKind string

const (
	BlockShortText    BlockKind = "short_text"
	BlockLongText     BlockKind = "long_text"
	BlockMultiChoice  BlockKind = "multiple_choice"
	BlockEmail        BlockKind = "email"
	BlockDate         BlockKind = "date"
	BlockRating       BlockKind = "rating"
	BlockStatement    BlockKind = "statement"
	BlockMedia        BlockKind = "media"
	BlockConversation BlockKind = "dynamic_conversation"
)

// String returns the string representation of the BlockKind.
func (k BlockKind) String() string {
	return string(k)
}

// Block is a single step in a form. The engine treats blocks as opaque
// referents of ids; Settings carries kind-specific configuration such
// as the option list of a multiple-choice block.
type Block struct {
	ID       string
	Kind     BlockKind
	Title    string
	Settings map[string]any
}

// Choice is one option of a multiple-choice block. Conditions test the
// Value; the Label is a display concern only.
type Choice struct {
	Value string
	Label string
}

// Choices returns the option list from the block's settings, or nil
// when the block has none. Used to resolve choice conditions to labels
// for human-readable summaries, never for evaluation.
func (b Block) Choices() []Choice {
	raw, ok := b.Settings["choices"].([]any)
	if !ok {
		return nil
	}
	out := make([]Choice, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := Choice{}
		c.Value, _ = m["value"].(string)
		c.Label, _ = m["label"].(string)
		if c.Label == "" {
			c.Label = c.Value
		}
		out = append(out, c)
	}
	return out
}
