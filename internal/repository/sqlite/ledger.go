package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mamadbah2/stockscan/internal/domain/models"
)

// tsLayout is fixed-width so that stored timestamps compare correctly as
// text; RFC3339Nano trims trailing zeros, which breaks lexicographic range
// queries across mixed sub-second precision.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// AppendScan inserts an entry and evicts everything beyond the cap in the
// same transaction, so the ledger never observably exceeds its bound.
func (s *Store) AppendScan(ctx context.Context, entry models.ScanEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append scan: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scan_history (id, barcode, product_name, quantity, movement_type, timestamp, location, synced)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Barcode, entry.ProductName, entry.Quantity,
		string(entry.Type), entry.Timestamp.UTC().Format(tsLayout),
		entry.Location, entry.Synced)
	if err != nil {
		return fmt.Errorf("append scan: insert: %w", err)
	}

	// Eviction is by insertion order (seq), not by the timestamp field.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM scan_history WHERE seq NOT IN (
			SELECT seq FROM scan_history ORDER BY seq DESC LIMIT ?
		)`, ledgerCap)
	if err != nil {
		return fmt.Errorf("append scan: evict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append scan: commit: %w", err)
	}
	return nil
}

// ListScans returns all ledger entries newest-first by insertion order.
func (s *Store) ListScans(ctx context.Context) ([]models.ScanEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, barcode, product_name, quantity, movement_type, timestamp, location, synced
		 FROM scan_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ScanEntry, 0)
	for rows.Next() {
		var (
			entry    models.ScanEntry
			movement string
			stamp    string
			location sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Barcode, &entry.ProductName, &entry.Quantity,
			&movement, &stamp, &location, &entry.Synced); err != nil {
			return nil, fmt.Errorf("list scans: scan row: %w", err)
		}
		entry.Type = models.MovementType(movement)
		entry.Location = location.String
		if ts, err := time.Parse(tsLayout, stamp); err == nil {
			entry.Timestamp = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return entries, nil
}

// DeleteScan removes a single entry by its id. Unknown ids are a no-op.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scan_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	return nil
}

// ClearScans deletes every ledger entry. Idempotent.
func (s *Store) ClearScans(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scan_history`); err != nil {
		return fmt.Errorf("clear scans: %w", err)
	}
	return nil
}

// CountScansSince counts ledger entries stamped at or after the cutoff.
func (s *Store) CountScansSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scan_history WHERE timestamp >= ?`,
		cutoff.UTC().Format(tsLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return count, nil
}
