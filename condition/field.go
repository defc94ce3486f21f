// Package condition implements the predicate layer of the navigation
// engine: atomic conditions over a respondent's answer and AND/OR
// groups of them. Evaluation is pure and fail-closed: malformed or
// stale authored data never errors, it simply does not match.
package condition

import "strings"

// FieldKind enumerates the facets of an answer a condition can inspect.
type FieldKind string

const (
	FieldAnswer    FieldKind = "answer"
	FieldSelected  FieldKind = "selected"
	FieldRating    FieldKind = "rating"
	FieldLength    FieldKind = "length"
	FieldDomain    FieldKind = "domain"
	FieldWeekday   FieldKind = "weekday"
	FieldSentiment FieldKind = "sentiment"
	FieldChoice    FieldKind = "choice"
)

// choicePrefix is the persisted form of the parameterized choice field.
const choicePrefix = "choice:"

// Field identifies which facet of an answer a condition inspects.
// FieldChoice carries the option value it tests; all other kinds have
// an empty Choice. The zero Field is invalid and never matches.
type Field struct {
	Kind   FieldKind
	Choice string
}

// FieldOf returns a Field for one of the non-parameterized kinds.
func FieldOf(kind FieldKind) Field {
	return Field{Kind: kind}
}

// ChoiceField returns the Field testing whether the option with the
// given value is among the respondent's selections.
func ChoiceField(value string) Field {
	return Field{Kind: FieldChoice, Choice: value}
}

// ParseField parses a persisted field tag such as "answer", "rating" or
// "choice:<value>". Unknown tags return ok=false; conditions built on
// them evaluate to false.
func ParseField(s string) (Field, bool) {
	if value, ok := strings.CutPrefix(s, choicePrefix); ok {
		return ChoiceField(value), true
	}
	switch kind := FieldKind(s); kind {
	case FieldAnswer, FieldSelected, FieldRating, FieldLength,
		FieldDomain, FieldWeekday, FieldSentiment:
		return Field{Kind: kind}, true
	}
	return Field{}, false
}

// String returns the persisted tag form of the field.
func (f Field) String() string {
	if f.Kind == FieldChoice {
		return choicePrefix + f.Choice
	}
	return string(f.Kind)
}

// Valid reports whether the field is one of the known kinds.
func (f Field) Valid() bool {
	switch f.Kind {
	case FieldAnswer, FieldSelected, FieldRating, FieldLength,
		FieldDomain, FieldWeekday, FieldSentiment, FieldChoice:
		return true
	}
	return false
}
