package condition

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Evaluate applies a single condition to an answer.
//
// Unknown fields or operators, and type mismatches that cannot be
// coerced, evaluate to false. Authored conditions may go stale after a
// block's settings change (a deleted choice option, for example), so
// malformed data is treated as "rule does not match", never an error.
func Evaluate(c Condition, ans Answer) bool {
	value, ok := extract(c.Field, ans)
	if !ok {
		return false
	}
	return compare(value, c.Operator, c.Value)
}

// EvaluateGroup applies a condition group to an answer. An empty group
// always matches: rules with a target but no filter mean "always take
// this branch". AND and OR both short-circuit.
func EvaluateGroup(g Group, ans Answer) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	switch g.Operator {
	case LogicalOr:
		for _, c := range g.Conditions {
			if Evaluate(c, ans) {
				return true
			}
		}
		return false
	case LogicalAnd, "":
		for _, c := range g.Conditions {
			if !Evaluate(c, ans) {
				return false
			}
		}
		return true
	}
	// Unknown logical operator: same fail-closed policy as conditions.
	return false
}

// extract pulls the facet named by the field out of the answer.
// ok=false means the facet cannot be produced and the condition must
// not match.
func extract(f Field, ans Answer) (any, bool) {
	switch f.Kind {
	case FieldAnswer:
		return ans.Value, true

	case FieldSelected:
		sel := ans.selected()
		if len(sel) == 0 {
			return "", true
		}
		// Single-select convention: the first/only selected value.
		// Multi-select checks should use choice:<value> instead.
		return sel[0], true

	case FieldRating:
		n, ok := toNumber(ans.Value)
		if !ok {
			return nil, false
		}
		return n, true

	case FieldLength:
		s, ok := ans.Value.(string)
		if !ok {
			// Fails safe to 0 on non-string answers.
			return float64(0), true
		}
		return float64(utf8.RuneCountInString(s)), true

	case FieldDomain:
		s, _ := ans.Value.(string)
		return emailDomain(s), true

	case FieldWeekday:
		s, ok := ans.Value.(string)
		if !ok {
			return nil, false
		}
		day, ok := weekdayOf(s)
		if !ok {
			return nil, false
		}
		return day, true

	case FieldSentiment:
		if ans.Sentiment == nil {
			return nil, false
		}
		return *ans.Sentiment, true

	case FieldChoice:
		for _, v := range ans.selected() {
			if v == f.Choice {
				return true, true
			}
		}
		return false, true
	}

	return nil, false
}

// compare applies the operator between the extracted value and the
// authored comparand. Unknown operators and uncoercible operands
// evaluate to false.
func compare(got any, op Operator, want any) bool {
	switch op {
	case OpEquals:
		return looseEqual(got, want)
	case OpNotEquals:
		return !looseEqual(got, want)
	case OpContains:
		return contains(got, want)
	case OpGreaterThan:
		g, w, ok := numericPair(got, want)
		return ok && g > w
	case OpLessThan:
		g, w, ok := numericPair(got, want)
		return ok && g < w
	}
	return false
}

// looseEqual compares primitives after numeric normalization: when
// either side is numeric-looking both must coerce and compare as
// numbers, otherwise the comparison is case-sensitive string equality.
func looseEqual(a, b any) bool {
	af, aNum := toNumber(a)
	bf, bNum := toNumber(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	as, aOK := toText(a)
	bs, bOK := toText(b)
	return aOK && bOK && as == bs
}

// contains is a substring test for string values and a membership test
// for list values.
func contains(got, want any) bool {
	switch v := got.(type) {
	case string:
		w, ok := toText(want)
		return ok && strings.Contains(v, w)
	case []string:
		for _, item := range v {
			if looseEqual(item, want) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if looseEqual(item, want) {
				return true
			}
		}
	}
	return false
}

func numericPair(a, b any) (float64, float64, bool) {
	af, aOK := toNumber(a)
	bf, bOK := toNumber(b)
	return af, bf, aOK && bOK
}

// toNumber coerces numbers and numeric-looking strings to float64.
// Booleans are not numeric.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// toText coerces strings and booleans to a comparable string form.
func toText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// emailDomain returns the part after "@" for an email-shaped string,
// or "" when the value does not look like an email.
func emailDomain(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return ""
	}
	return s[at+1:]
}

// dateLayouts are the accepted shapes for date-typed answers.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// weekdayOf derives the day-of-week name from a date-typed answer.
func weekdayOf(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Weekday().String(), true
		}
	}
	return "", false
}
