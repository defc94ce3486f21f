package formflow

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/petal-labs/formflow/condition"
)

// Property-based coverage of the runtime path: determinism, first-match
// precedence and fail-closed evaluation over arbitrary inputs.

func TestResolve_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("resolution is deterministic for any answer", prop.ForAll(
		func(answer string, ruleValues []string) bool {
			conn := &Connection{ID: "c", SourceID: "A", DefaultTargetID: "D"}
			for _, v := range ruleValues {
				conn.Rules = append(conn.Rules, equalsRule("r"+v, "t"+v, v))
			}
			first := Resolve(conn, condition.Text(answer))
			second := Resolve(conn, condition.Text(answer))
			return first == second
		},
		gen.AnyString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("matching rule always beats the default", prop.ForAll(
		func(answer string) bool {
			conn := &Connection{
				ID:              "c",
				SourceID:        "A",
				DefaultTargetID: "D",
				Rules:           []Rule{equalsRule("r1", "B", answer)},
			}
			d := Resolve(conn, condition.Text(answer))
			return d.Kind == DecisionTarget && d.TargetID == "B" && d.RuleID == "r1"
		},
		gen.AnyString(),
	))

	properties.Property("earlier matching rule wins over later", prop.ForAll(
		func(answer string) bool {
			rules := []Rule{
				equalsRule("first", "B", answer),
				equalsRule("second", "C", answer),
			}
			rule, ok := Match(rules, condition.Text(answer))
			return ok && rule.ID == "first"
		},
		gen.AnyString(),
	))

	properties.Property("empty condition group matches any answer", prop.ForAll(
		func(answer string) bool {
			rule, ok := Match([]Rule{{ID: "r", TargetBlockID: "B"}}, condition.Text(answer))
			return ok && rule.TargetBlockID == "B"
		},
		gen.AnyString(),
	))

	properties.Property("numeric operators never match non-numeric comparands", prop.ForAll(
		func(answer float64, comparand string) bool {
			c := condition.Condition{
				Field:    condition.FieldOf(condition.FieldAnswer),
				Operator: condition.OpGreaterThan,
				Value:    "x" + comparand, // never numeric-looking
			}
			return !condition.Evaluate(c, condition.Number(answer))
		},
		gen.Float64(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
