// Package sqlite is the on-device durable store: the scan ledger and the
// product snapshot cache live in a single sqlite file next to the app.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ledgerCap bounds the scan ledger; the oldest entries are evicted first.
const ledgerCap = 100

// Store wraps the sqlite database holding all local state.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and runs the schema migration.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// The store is effectively single-writer; one connection keeps
	// transactions serialized without busy-retry handling.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS scan_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			barcode TEXT NOT NULL,
			product_name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			movement_type TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			location TEXT,
			synced INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS product_snapshot (
			product_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			barcode TEXT,
			quantity INTEGER NOT NULL,
			internal_reference TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
