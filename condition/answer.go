package condition

import "fmt"

// Answer is the respondent's value for the block just completed.
//
// Value holds one of: a string (free text, email or date shaped), a
// number, or a list of selected option values ([]string or []any).
// Sentiment, when non-nil, is the precomputed sentiment score supplied
// by the caller; this engine never computes it.
type Answer struct {
	Value     any
	Sentiment *float64
}

// Text builds an Answer from a free-text value.
func Text(s string) Answer {
	return Answer{Value: s}
}

// Number builds an Answer from a numeric value.
func Number(n float64) Answer {
	return Answer{Value: n}
}

// Selections builds an Answer from selected option values.
func Selections(values ...string) Answer {
	return Answer{Value: values}
}

// selected returns the respondent's selected option values. A scalar
// string answer counts as a single selection.
func (a Answer) selected() []string {
	switch v := a.Value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
