// Package store persists a form's connections as edge rows in SQLite
// and maps between the row shape and the in-memory Connection model.
//
// One row holds either a connection's default target (no condition
// columns, no rule id) or one condition of one rule. Conditions
// sharing a rule id fold into a single AND rule, so multi-condition
// AND groups round-trip; a rule row without condition columns is an
// always-match rule, distinguished from a default row by its rule id.
// OR groups have no row representation and are rejected at save time.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/petal-labs/formflow"
	"github.com/petal-labs/formflow/condition"
)

// Mapping errors
var (
	ErrUnsupportedGroup = errors.New("OR condition groups cannot be persisted as edge rows")
	ErrDuplicateDefault = errors.New("multiple default rows for one source block")
)

// EdgeRow is the persisted shape of one connection fragment.
type EdgeRow struct {
	ID                string
	FormID            string
	SourceBlockID     string
	TargetBlockID     string
	RuleID            string
	ConditionID       string
	ConditionField    string
	ConditionOperator string
	ConditionValue    string // JSON-encoded comparand; "" means none
	RulePosition      int
	ConditionPosition int
	OrderIndex        int
}

// isDefault reports whether the row carries the connection's default
// target rather than a rule condition.
func (r EdgeRow) isDefault() bool {
	return r.RuleID == "" && r.ConditionField == "" && r.ConditionOperator == ""
}

// RowsToConnections folds edge rows into connections, one per source
// block. Rule order follows RulePosition and condition order follows
// ConditionPosition, regardless of row order. Absent ids come back as
// fresh uuids.
func RowsToConnections(rows []EdgeRow) ([]formflow.Connection, error) {
	bySource := make(map[string][]EdgeRow)
	var sourceOrder []string
	for _, row := range rows {
		if _, ok := bySource[row.SourceBlockID]; !ok {
			sourceOrder = append(sourceOrder, row.SourceBlockID)
		}
		bySource[row.SourceBlockID] = append(bySource[row.SourceBlockID], row)
	}

	out := make([]formflow.Connection, 0, len(sourceOrder))
	for _, source := range sourceOrder {
		conn, err := foldConnection(source, bySource[source])
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

func foldConnection(source string, rows []EdgeRow) (formflow.Connection, error) {
	conn := formflow.Connection{
		ID:       uuid.NewString(),
		SourceID: source,
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RulePosition != rows[j].RulePosition {
			return rows[i].RulePosition < rows[j].RulePosition
		}
		return rows[i].ConditionPosition < rows[j].ConditionPosition
	})

	hasDefault := false
	byRule := make(map[string]*formflow.Rule)
	var ruleOrder []string

	for _, row := range rows {
		conn.OrderIndex = row.OrderIndex

		if row.isDefault() {
			if hasDefault {
				return formflow.Connection{}, fmt.Errorf("%w: %s", ErrDuplicateDefault, source)
			}
			hasDefault = true
			conn.DefaultTargetID = row.TargetBlockID
			continue
		}

		ruleID := row.RuleID
		if ruleID == "" {
			// Legacy single-condition row with no rule id: its own rule.
			ruleID = uuid.NewString()
		}
		rule, ok := byRule[ruleID]
		if !ok {
			byRule[ruleID] = &formflow.Rule{
				ID:            ruleID,
				TargetBlockID: row.TargetBlockID,
				Conditions:    condition.Group{Operator: condition.LogicalAnd},
			}
			ruleOrder = append(ruleOrder, ruleID)
			rule = byRule[ruleID]
		}
		if row.ConditionField != "" || row.ConditionOperator != "" {
			field, _ := condition.ParseField(row.ConditionField)
			rule.Conditions.Conditions = append(rule.Conditions.Conditions, condition.Condition{
				ID:       orFresh(row.ConditionID),
				Field:    field,
				Operator: condition.Operator(row.ConditionOperator),
				Value:    decodeValue(row.ConditionValue),
			})
		}
	}

	for _, id := range ruleOrder {
		conn.Rules = append(conn.Rules, *byRule[id])
	}
	return conn, nil
}

// ConnectionsToRows flattens connections to edge rows for one form.
// Connections with neither rules nor a default target produce no rows.
func ConnectionsToRows(formID string, conns []*formflow.Connection) ([]EdgeRow, error) {
	var rows []EdgeRow
	for _, conn := range conns {
		if conn.DefaultTargetID != "" {
			rows = append(rows, EdgeRow{
				ID:            uuid.NewString(),
				FormID:        formID,
				SourceBlockID: conn.SourceID,
				TargetBlockID: conn.DefaultTargetID,
				OrderIndex:    conn.OrderIndex,
			})
		}
		for i, rule := range conn.Rules {
			if rule.Conditions.Operator == condition.LogicalOr && len(rule.Conditions.Conditions) > 1 {
				return nil, fmt.Errorf("%w: rule %s", ErrUnsupportedGroup, rule.ID)
			}
			base := EdgeRow{
				FormID:        formID,
				SourceBlockID: conn.SourceID,
				TargetBlockID: rule.TargetBlockID,
				RuleID:        orFresh(rule.ID),
				RulePosition:  i + 1,
				OrderIndex:    conn.OrderIndex,
			}
			if len(rule.Conditions.Conditions) == 0 {
				// Always-match rule: one row, no condition columns.
				row := base
				row.ID = uuid.NewString()
				rows = append(rows, row)
				continue
			}
			for j, cnd := range rule.Conditions.Conditions {
				row := base
				row.ID = uuid.NewString()
				row.ConditionID = orFresh(cnd.ID)
				row.ConditionField = cnd.Field.String()
				row.ConditionOperator = string(cnd.Operator)
				row.ConditionValue = encodeValue(cnd.Value)
				row.ConditionPosition = j
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

func orFresh(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func encodeValue(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func decodeValue(s string) any {
	if s == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
