// Package formdef defines the serializable form-graph definition, its
// structural validation diagnostics, and conversion to an in-memory
// FormGraph. Definitions load from JSON or YAML files.
package formdef

import (
	"fmt"

	"github.com/petal-labs/formflow/condition"
)

// Diagnostic represents a validation error or warning produced by
// definition validation.
type Diagnostic struct {
	Code     string `json:"code"`           // e.g. "FD-001", "CN-002"
	Severity string `json:"severity"`       // "error" or "warning"
	Message  string `json:"message"`        // human-readable description
	Path     string `json:"path,omitempty"` // JSON path to offending field
}

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// HasErrors returns true if any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func Errors(diags []Diagnostic) []Diagnostic {
	var errs []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

// Warnings returns only the warning-severity diagnostics.
func Warnings(diags []Diagnostic) []Diagnostic {
	var warns []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			warns = append(warns, d)
		}
	}
	return warns
}

// FormDefinition is the serializable representation of one form's
// blocks and connections.
type FormDefinition struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Start       string          `json:"start" yaml:"start"`
	Blocks      []BlockDef      `json:"blocks" yaml:"blocks"`
	Connections []ConnectionDef `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// BlockDef is a serializable block within a FormDefinition.
type BlockDef struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// ConnectionDef is a serializable connection within a FormDefinition.
type ConnectionDef struct {
	ID         string    `json:"id,omitempty" yaml:"id,omitempty"`
	Source     string    `json:"source" yaml:"source"`
	Default    string    `json:"default,omitempty" yaml:"default,omitempty"`
	Rules      []RuleDef `json:"rules,omitempty" yaml:"rules,omitempty"`
	OrderIndex int       `json:"orderIndex,omitempty" yaml:"orderIndex,omitempty"`
}

// RuleDef is a serializable rule. Logic defaults to AND.
type RuleDef struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Target     string         `json:"target" yaml:"target"`
	Logic      string         `json:"logic,omitempty" yaml:"logic,omitempty"`
	Conditions []ConditionDef `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ConditionDef is a serializable condition.
type ConditionDef struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Validate checks structural integrity of the definition:
//   - FD-001: duplicate block IDs
//   - FD-002: connection source references an existing block
//   - FD-003: at most one connection per source block
//   - FD-004: edge targets reference existing blocks (warning; the
//     engine tolerates dangling targets, but they orphan whatever the
//     author thinks they point at)
//   - FD-005: start block is set and exists
//   - FD-006: block with no incoming edges that is not the start (warning)
//   - FD-007: connection with no rules and no default has no effect (warning)
//   - CN-001: condition field tag is known
//   - CN-002: condition operator is known
//   - CN-003: rule logic is AND/OR when set
func (fd *FormDefinition) Validate() []Diagnostic {
	var diags []Diagnostic

	blockIDs := make(map[string]bool, len(fd.Blocks))
	for i, b := range fd.Blocks {
		if blockIDs[b.ID] {
			diags = append(diags, Diagnostic{
				Code:     "FD-001",
				Severity: SeverityError,
				Message:  fmt.Sprintf("Duplicate block ID %q", b.ID),
				Path:     fmt.Sprintf("blocks[%d].id", i),
			})
		}
		blockIDs[b.ID] = true
	}

	sources := make(map[string]bool, len(fd.Connections))
	incoming := make(map[string]bool)
	for i, c := range fd.Connections {
		prefix := fmt.Sprintf("connections[%d]", i)

		if !blockIDs[c.Source] {
			diags = append(diags, Diagnostic{
				Code:     "FD-002",
				Severity: SeverityError,
				Message:  fmt.Sprintf("Connection source %q references unknown block", c.Source),
				Path:     prefix + ".source",
			})
		}
		if sources[c.Source] {
			diags = append(diags, Diagnostic{
				Code:     "FD-003",
				Severity: SeverityError,
				Message:  fmt.Sprintf("Block %q has more than one connection", c.Source),
				Path:     prefix + ".source",
			})
		}
		sources[c.Source] = true

		if c.Default != "" {
			incoming[c.Default] = true
			if !blockIDs[c.Default] {
				diags = append(diags, Diagnostic{
					Code:     "FD-004",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Default target %q references unknown block", c.Default),
					Path:     prefix + ".default",
				})
			}
		}

		if len(c.Rules) == 0 && c.Default == "" {
			diags = append(diags, Diagnostic{
				Code:     "FD-007",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Connection for %q has no rules and no default target, so it has no effect", c.Source),
				Path:     prefix,
			})
		}

		for j, r := range c.Rules {
			rulePath := fmt.Sprintf("%s.rules[%d]", prefix, j)
			if r.Target != "" {
				incoming[r.Target] = true
			}
			if !blockIDs[r.Target] {
				diags = append(diags, Diagnostic{
					Code:     "FD-004",
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Rule target %q references unknown block", r.Target),
					Path:     rulePath + ".target",
				})
			}
			if r.Logic != "" && r.Logic != string(condition.LogicalAnd) && r.Logic != string(condition.LogicalOr) {
				diags = append(diags, Diagnostic{
					Code:     "CN-003",
					Severity: SeverityError,
					Message:  fmt.Sprintf("Rule logic must be AND or OR, got %q", r.Logic),
					Path:     rulePath + ".logic",
				})
			}
			for k, cd := range c.Rules[j].Conditions {
				condPath := fmt.Sprintf("%s.conditions[%d]", rulePath, k)
				if _, ok := condition.ParseField(cd.Field); !ok {
					diags = append(diags, Diagnostic{
						Code:     "CN-001",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("Unknown condition field %q; the condition will never match", cd.Field),
						Path:     condPath + ".field",
					})
				}
				if !condition.Operator(cd.Operator).Valid() {
					diags = append(diags, Diagnostic{
						Code:     "CN-002",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("Unknown operator %q; the condition will never match", cd.Operator),
						Path:     condPath + ".operator",
					})
				}
			}
		}
	}

	// FD-005: start block
	if fd.Start == "" {
		diags = append(diags, Diagnostic{
			Code:     "FD-005",
			Severity: SeverityError,
			Message:  "No start block defined",
			Path:     "start",
		})
	} else if !blockIDs[fd.Start] {
		diags = append(diags, Diagnostic{
			Code:     "FD-005",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Start block %q does not exist", fd.Start),
			Path:     "start",
		})
	}

	// FD-006: blocks no edge reaches. The start block is exempt.
	for i, b := range fd.Blocks {
		if b.ID == fd.Start || incoming[b.ID] {
			continue
		}
		diags = append(diags, Diagnostic{
			Code:     "FD-006",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Block %q has no incoming edges and is not the start block", b.ID),
			Path:     fmt.Sprintf("blocks[%d]", i),
		})
	}

	return diags
}
