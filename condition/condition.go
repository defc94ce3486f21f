package condition

// Operator is the comparison applied between an extracted answer facet
// and the authored comparand.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// String returns the string representation of the operator.
func (o Operator) String() string {
	return string(o)
}

// Valid reports whether the operator is one of the known comparisons.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// Condition is an atomic predicate over one facet of an answer.
// Value is typed loosely (string, number or bool) depending on Field.
type Condition struct {
	ID       string
	Field    Field
	Operator Operator
	Value    any
}

// LogicalOperator combines the conditions of a group.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Group is a compound predicate. Condition order does not affect the
// boolean result but is preserved for deterministic summaries.
type Group struct {
	Operator   LogicalOperator
	Conditions []Condition
}

// And builds an AND group over the given conditions.
func And(conds ...Condition) Group {
	return Group{Operator: LogicalAnd, Conditions: conds}
}

// Or builds an OR group over the given conditions.
func Or(conds ...Condition) Group {
	return Group{Operator: LogicalOr, Conditions: conds}
}
