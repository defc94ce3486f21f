package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/petal-labs/formflow"

	_ "modernc.org/sqlite"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// ErrVersionConflict is returned when a save carries a stale version:
// another author committed in between. The caller re-reads and retries.
var ErrVersionConflict = errors.New("form connections were modified concurrently")

// Config configures the SQLite connection store.
type Config struct {
	// DSN is the database connection string.
	DSN string
}

// SQLiteStore persists form connections as edge rows in a SQLite
// database, with a per-form version for optimistic concurrency.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite connection store.
func Open(cfg Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveConnections replaces the persisted connection set of one form in
// a single transaction. expectedVersion must match the currently
// stored version (0 for a form never saved); on mismatch nothing is
// written and ErrVersionConflict is returned. The new version is
// returned on success.
func (s *SQLiteStore) SaveConnections(ctx context.Context, formID string, conns []*formflow.Connection, expectedVersion int64) (int64, error) {
	rows, err := ConnectionsToRows(formID, conns)
	if err != nil {
		return 0, fmt.Errorf("store: map connections: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := versionTx(ctx, tx, formID)
	if err != nil {
		return 0, err
	}
	if current != expectedVersion {
		return 0, fmt.Errorf("%w: have %d, stored %d", ErrVersionConflict, expectedVersion, current)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edge_rows WHERE form_id = ?`, formID); err != nil {
		return 0, fmt.Errorf("store: clear rows: %w", err)
	}
	for _, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO edge_rows (id, form_id, source_block_id, target_block_id, rule_id,
			   condition_id, condition_field, condition_operator, condition_value,
			   rule_position, condition_position, order_index)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.FormID, row.SourceBlockID, row.TargetBlockID, row.RuleID,
			row.ConditionID, row.ConditionField, row.ConditionOperator, row.ConditionValue,
			row.RulePosition, row.ConditionPosition, row.OrderIndex,
		)
		if err != nil {
			return 0, fmt.Errorf("store: insert row: %w", err)
		}
	}

	next := current + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO form_versions (form_id, version) VALUES (?, ?)
		 ON CONFLICT (form_id) DO UPDATE SET version = excluded.version`,
		formID, next,
	)
	if err != nil {
		return 0, fmt.Errorf("store: bump version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return next, nil
}

// LoadConnections reconstructs the connection set of one form along
// with its stored version. A form never saved loads as empty at
// version 0.
func (s *SQLiteStore) LoadConnections(ctx context.Context, formID string) ([]formflow.Connection, int64, error) {
	version, err := s.Version(ctx, formID)
	if err != nil {
		return nil, 0, err
	}

	dbRows, err := s.db.QueryContext(ctx,
		`SELECT id, form_id, source_block_id, target_block_id, rule_id,
		        condition_id, condition_field, condition_operator, condition_value,
		        rule_position, condition_position, order_index
		 FROM edge_rows WHERE form_id = ?
		 ORDER BY source_block_id, rule_position, condition_position`,
		formID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("store: query rows: %w", err)
	}
	defer dbRows.Close()

	var rows []EdgeRow
	for dbRows.Next() {
		var row EdgeRow
		err := dbRows.Scan(
			&row.ID, &row.FormID, &row.SourceBlockID, &row.TargetBlockID, &row.RuleID,
			&row.ConditionID, &row.ConditionField, &row.ConditionOperator, &row.ConditionValue,
			&row.RulePosition, &row.ConditionPosition, &row.OrderIndex,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("store: scan row: %w", err)
		}
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: iterate rows: %w", err)
	}

	conns, err := RowsToConnections(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("store: fold rows: %w", err)
	}
	return conns, version, nil
}

// Version returns the stored version of a form's connection set.
func (s *SQLiteStore) Version(ctx context.Context, formID string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM form_versions WHERE form_id = ?`, formID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read version: %w", err)
	}
	return version, nil
}

func versionTx(ctx context.Context, tx *sql.Tx, formID string) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx,
		`SELECT version FROM form_versions WHERE form_id = ?`, formID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read version: %w", err)
	}
	return version, nil
}
