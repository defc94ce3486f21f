package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(Config{DSN: filepath.Join(t.TempDir(), "formflow.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	version, err := s.SaveConnections(ctx, "form-1", sampleConnections(), 0)
	if err != nil {
		t.Fatalf("SaveConnections() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	conns, loadedVersion, err := s.LoadConnections(ctx, "form-1")
	if err != nil {
		t.Fatalf("LoadConnections() error = %v", err)
	}
	if loadedVersion != 1 {
		t.Errorf("loaded version = %d, want 1", loadedVersion)
	}
	if len(conns) != 2 {
		t.Fatalf("len(conns) = %d, want 2", len(conns))
	}

	for _, c := range conns {
		switch c.SourceID {
		case "A":
			if c.DefaultTargetID != "B" || len(c.Rules) != 2 {
				t.Errorf("A = %+v", c)
			}
		case "B":
			if c.DefaultTargetID != "C" || len(c.Rules) != 0 {
				t.Errorf("B = %+v", c)
			}
		default:
			t.Errorf("unexpected source %q", c.SourceID)
		}
	}
}

func TestSQLiteStore_VersionConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveConnections(ctx, "form-1", sampleConnections(), 0); err != nil {
		t.Fatalf("SaveConnections() error = %v", err)
	}

	// A second writer holding the old snapshot must be rejected.
	_, err := s.SaveConnections(ctx, "form-1", sampleConnections(), 0)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("SaveConnections() error = %v, want %v", err, ErrVersionConflict)
	}

	// Retry with the current version succeeds and replaces the set.
	version, err := s.SaveConnections(ctx, "form-1", sampleConnections()[:1], 1)
	if err != nil {
		t.Fatalf("SaveConnections() retry error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	conns, _, err := s.LoadConnections(ctx, "form-1")
	if err != nil {
		t.Fatalf("LoadConnections() error = %v", err)
	}
	if len(conns) != 1 {
		t.Errorf("len(conns) = %d, want 1 after replacement", len(conns))
	}
}

func TestSQLiteStore_UnknownFormLoadsEmpty(t *testing.T) {
	s := openTestStore(t)

	conns, version, err := s.LoadConnections(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("LoadConnections() error = %v", err)
	}
	if len(conns) != 0 || version != 0 {
		t.Errorf("conns = %v, version = %d, want empty at 0", conns, version)
	}
}

func TestSQLiteStore_FormsAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveConnections(ctx, "form-1", sampleConnections(), 0); err != nil {
		t.Fatalf("SaveConnections(form-1) error = %v", err)
	}
	if _, err := s.SaveConnections(ctx, "form-2", sampleConnections()[:1], 0); err != nil {
		t.Fatalf("SaveConnections(form-2) error = %v", err)
	}

	conns, _, err := s.LoadConnections(ctx, "form-2")
	if err != nil {
		t.Fatalf("LoadConnections() error = %v", err)
	}
	if len(conns) != 1 {
		t.Errorf("form-2 conns = %d, want 1", len(conns))
	}
}
