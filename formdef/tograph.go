package formdef

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/petal-labs/formflow"
	"github.com/petal-labs/formflow/condition"
)

// ToGraph converts the definition into a FormGraph.
//
// Structural errors (duplicate blocks, duplicate connection sources,
// missing start) fail the conversion. Unknown condition fields and
// operators are carried through as authored; they evaluate to false
// at runtime rather than blocking the load. Absent connection, rule
// and condition ids are generated fresh.
func (fd *FormDefinition) ToGraph() (*formflow.FormGraph, error) {
	g := formflow.NewFormGraph()

	for _, b := range fd.Blocks {
		block := formflow.Block{
			ID:       b.ID,
			Kind:     formflow.BlockKind(b.Type),
			Title:    b.Title,
			Settings: b.Settings,
		}
		if err := g.AddBlock(block); err != nil {
			return nil, fmt.Errorf("block %q: %w", b.ID, err)
		}
	}

	seen := make(map[string]bool, len(fd.Connections))
	for _, cd := range fd.Connections {
		if seen[cd.Source] {
			return nil, fmt.Errorf("block %q has more than one connection", cd.Source)
		}
		seen[cd.Source] = true

		conn := formflow.Connection{
			ID:              orFresh(cd.ID),
			SourceID:        cd.Source,
			DefaultTargetID: cd.Default,
			OrderIndex:      cd.OrderIndex,
		}
		for _, rd := range cd.Rules {
			rule := formflow.Rule{
				ID:            orFresh(rd.ID),
				TargetBlockID: rd.Target,
				Conditions: condition.Group{
					Operator: logicOf(rd.Logic),
				},
			}
			for _, cnd := range rd.Conditions {
				// Unknown tags parse to the zero Field, which never matches.
				field, _ := condition.ParseField(cnd.Field)
				rule.Conditions.Conditions = append(rule.Conditions.Conditions, condition.Condition{
					ID:       orFresh(cnd.ID),
					Field:    field,
					Operator: condition.Operator(cnd.Operator),
					Value:    cnd.Value,
				})
			}
			conn.Rules = append(conn.Rules, rule)
		}
		if err := g.SetConnection(conn); err != nil {
			return nil, fmt.Errorf("connection for %q: %w", cd.Source, err)
		}
	}

	if fd.Start != "" {
		if err := g.SetStart(fd.Start); err != nil {
			return nil, fmt.Errorf("start block: %w", err)
		}
	}
	return g, nil
}

func orFresh(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func logicOf(s string) condition.LogicalOperator {
	if s == string(condition.LogicalOr) {
		return condition.LogicalOr
	}
	return condition.LogicalAnd
}
