// Package store persists finished battles and their raw protocol logs in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/energizer-project/showtrack/internal/util"
)

// battleSchema lists the archive schema one version per entry. Entries are
// append-only: a shipped step is never edited, changes go in a new one.
// Steps stay idempotent so archives created before versioning upgrade.
var battleSchema = []string{
	// 1: results and raw room logs
	`CREATE TABLE IF NOT EXISTS battles (
		room_id TEXT PRIMARY KEY,
		format TEXT NOT NULL DEFAULT '',
		gen INTEGER NOT NULL DEFAULT 0,
		game_type TEXT NOT NULL DEFAULT '',
		players TEXT NOT NULL DEFAULT '',
		turns INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		tie INTEGER NOT NULL DEFAULT 0,
		ended_at INTEGER NOT NULL,
		snapshot TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS battle_log (
		room_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		line TEXT NOT NULL,
		PRIMARY KEY (room_id, seq)
	);`,
	// 2: retention pruning scans by end time
	`CREATE INDEX IF NOT EXISTS idx_battles_ended_at ON battles(ended_at);`,
}

// Database wraps the archive's SQLite connection. Writes are serialized on
// one connection; reads go straight to the pool.
type Database struct {
	mu     sync.Mutex
	db     *sql.DB
	logger zerolog.Logger
}

// openDatabase opens or creates the archive file, creating its directory.
func openDatabase(dbPath string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &Database{db: db, logger: util.ComponentLogger("store").With().Str("path", dbPath).Logger()}

	// Log appends and retention pruning contend for the writer lock.
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			d.logger.Warn().Err(err).Str("pragma", pragma).Msg("failed to set pragma")
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return d, nil
}

// SchemaVersion reports how many schema steps have been applied.
func (d *Database) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := d.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Migrate applies the steps past the stored schema version, each in its own
// transaction together with the version bump. A database newer than steps
// is refused.
func (d *Database) Migrate(ctx context.Context, steps []string) error {
	current, err := d.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > len(steps) {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, len(steps))
	}

	for i := current; i < len(steps); i++ {
		i := i // per-iteration copy (Go 1.22 loop semantics)
		version := i + 1
		err := d.Transaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, steps[i]); err != nil {
				return err
			}
			// PRAGMA takes no bind parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply schema version %d: %w", version, err)
		}
		d.logger.Info().Int("version", version).Msg("schema migrated")
	}
	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Exec executes a statement that returns no rows.
func (d *Database) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (d *Database) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns a single row.
func (d *Database) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// Transaction runs fn in a transaction, rolling back when it fails.
func (d *Database) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
