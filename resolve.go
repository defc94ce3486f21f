package formflow

import "github.com/petal-labs/formflow/condition"

// DecisionKind discriminates the outcomes of resolving a step.
type DecisionKind string

const (
	// DecisionTarget means navigation continues at TargetID.
	DecisionTarget DecisionKind = "target"
	// DecisionEnd means the form is complete: no connection exists, or
	// nothing matched and there is no fallback.
	DecisionEnd DecisionKind = "end"
)

// Decision is the outcome of resolving the next block for an answer.
// RuleID names the rule that matched; it is empty when the decision
// fell through to the connection's default target.
type Decision struct {
	Kind     DecisionKind
	TargetID string
	RuleID   string
}

// End returns the terminal decision.
func End() Decision {
	return Decision{Kind: DecisionEnd}
}

// Target returns a decision that continues at the given block.
func Target(blockID string) Decision {
	return Decision{Kind: DecisionTarget, TargetID: blockID}
}

// Match scans rules in order and returns the first rule whose condition
// group matches the answer. Deterministic: the same rules and answer
// always produce the same result: no randomness, no wall clock.
func Match(rules []Rule, ans condition.Answer) (Rule, bool) {
	for _, r := range rules {
		if condition.EvaluateGroup(r.Conditions, ans) {
			return r, true
		}
	}
	return Rule{}, false
}

// Resolve picks the next block for the answer just given.
//
// A nil connection ends the form. Otherwise the first matching rule's
// target wins; with no match the connection's default target is taken;
// with no default the form ends. Pure and idempotent: a respondent
// reloading or retrying a step resolves identically.
func Resolve(conn *Connection, ans condition.Answer) Decision {
	if conn == nil {
		return End()
	}
	if rule, ok := Match(conn.Rules, ans); ok {
		d := Target(rule.TargetBlockID)
		d.RuleID = rule.ID
		return d
	}
	if conn.DefaultTargetID != "" {
		return Target(conn.DefaultTargetID)
	}
	return End()
}
