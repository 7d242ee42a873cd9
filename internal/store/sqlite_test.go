package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrateRecordsVersionAndIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showtrack.db")
	ctx := context.Background()

	s, err := NewBattleStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if v, err := s.db.SchemaVersion(ctx); err != nil || v != len(battleSchema) {
		t.Fatalf("version = %d, %v; want %d", v, err, len(battleSchema))
	}
	if err := s.AppendLog(ctx, "battle-1", []string{"|turn|1"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening applies nothing and keeps the data.
	s, err = NewBattleStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if lines, err := s.Log(ctx, "battle-1"); err != nil || len(lines) != 1 {
		t.Fatalf("log after reopen = %v, %v", lines, err)
	}
}

func TestMigrateUpgradesUnversionedArchive(t *testing.T) {
	ctx := context.Background()
	d, err := openDatabase(filepath.Join(t.TempDir(), "old.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// An archive created before versioning has the tables but version 0.
	if _, err := d.Exec(ctx, battleSchema[0]); err != nil {
		t.Fatal(err)
	}
	if err := d.Migrate(ctx, battleSchema); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if v, _ := d.SchemaVersion(ctx); v != len(battleSchema) {
		t.Errorf("version = %d", v)
	}
}

func TestMigrateRollsBackFailedStep(t *testing.T) {
	ctx := context.Background()
	d, err := openDatabase(filepath.Join(t.TempDir(), "bad.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	steps := []string{
		`CREATE TABLE a (id INTEGER);`,
		`CREATE TABLE b (id INTEGER); INSERT INTO missing VALUES (1);`,
	}
	err = d.Migrate(ctx, steps)
	if err == nil || !strings.Contains(err.Error(), "schema version 2") {
		t.Fatalf("err = %v", err)
	}
	if v, _ := d.SchemaVersion(ctx); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
	var n int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'b'`).Scan(&n); err != nil || n != 0 {
		t.Errorf("table b left behind: n=%d err=%v", n, err)
	}

	// A database ahead of the code is refused.
	if err := d.Migrate(ctx, steps[:0]); err == nil {
		t.Error("newer schema should be refused")
	}
}
