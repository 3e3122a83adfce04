package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mamadbah2/stockscan/internal/domain/models"
)

const refreshedAtKey = "snapshot_refreshed_at"

// ReplaceSnapshot swaps the cached product list wholesale and stamps the
// refresh time, all in one transaction.
func (s *Store) ReplaceSnapshot(ctx context.Context, products []models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace snapshot: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_snapshot`); err != nil {
		return fmt.Errorf("replace snapshot: clear: %w", err)
	}

	for _, p := range products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_snapshot (product_id, name, barcode, quantity, internal_reference)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Barcode, p.Quantity, p.InternalReference)
		if err != nil {
			return fmt.Errorf("replace snapshot: insert product %d: %w", p.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		refreshedAtKey, time.Now().UTC().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("replace snapshot: stamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace snapshot: commit: %w", err)
	}
	return nil
}

// SnapshotProducts lists the cached products ordered by id.
func (s *Store) SnapshotProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, barcode, quantity, internal_reference
		 FROM product_snapshot ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var (
			p       models.Product
			barcode sql.NullString
			ref     sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &barcode, &p.Quantity, &ref); err != nil {
			return nil, fmt.Errorf("snapshot products: scan row: %w", err)
		}
		p.Barcode = barcode.String
		p.InternalReference = ref.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}
	return products, nil
}

// SnapshotRefreshedAt returns the time of the last successful refresh, or a
// zero time when no snapshot has ever been taken.
func (s *Store) SnapshotRefreshedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = ?`, refreshedAtKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot refreshed at: %w", err)
	}

	ts, err := time.Parse(tsLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot refreshed at: parse %q: %w", value, err)
	}
	return ts, nil
}
