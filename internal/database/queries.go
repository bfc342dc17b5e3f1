package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timestampFormat is fixed width so stored values sort as text.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns nil if parsing fails.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(timestampFormat, s)
	if err == nil {
		return &t
	}

	// SQLite datetime('now') format
	t, err = time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return &t
	}

	return nil
}

// =============================================================================
// Export Queries
// =============================================================================

// CreateExports stores a batch of images in one transaction. CreatedAt is
// set on each export if zero.
func (db *DB) CreateExports(ctx context.Context, exports []*Export) error {
	if len(exports) == 0 {
		return nil
	}

	return db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO exports (
				id, batch_id, year, month, workers,
				filename, png, size_bytes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert export: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, e := range exports {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
			e.SizeBytes = len(e.PNG)

			_, err := stmt.ExecContext(ctx,
				e.ID, e.BatchID, e.Year, e.Month, strings.Join(e.Workers, ","),
				e.Filename, e.PNG, e.SizeBytes, formatTimestamp(e.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("insert export %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// GetExport retrieves one image, including its PNG data.
// Returns ErrNotFound if the export doesn't exist in the batch.
func (db *DB) GetExport(ctx context.Context, batchID, id string) (*Export, error) {
	query := `
		SELECT id, batch_id, year, month, workers, filename, png, size_bytes, created_at
		FROM exports
		WHERE batch_id = ? AND id = ?
	`

	var e Export
	var workers, createdAt string
	err := db.QueryRowContext(ctx, query, batchID, id).Scan(
		&e.ID, &e.BatchID, &e.Year, &e.Month, &workers,
		&e.Filename, &e.PNG, &e.SizeBytes, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query export: %w", err)
	}

	e.Workers = splitWorkers(workers)
	if t := parseTimestamp(createdAt); t != nil {
		e.CreatedAt = *t
	}
	return &e, nil
}

// ListBatch returns the exports of a batch in month order, without PNG data.
// Returns ErrNotFound if the batch has no exports.
func (db *DB) ListBatch(ctx context.Context, batchID string) (*Batch, error) {
	query := `
		SELECT id, batch_id, year, month, workers, filename, size_bytes, created_at
		FROM exports
		WHERE batch_id = ?
		ORDER BY year ASC, month ASC
	`

	rows, err := db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	defer rows.Close()

	batch := &Batch{ID: batchID}
	for rows.Next() {
		var e Export
		var workers, createdAt string
		if err := rows.Scan(
			&e.ID, &e.BatchID, &e.Year, &e.Month, &workers,
			&e.Filename, &e.SizeBytes, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		e.Workers = splitWorkers(workers)
		if t := parseTimestamp(createdAt); t != nil {
			e.CreatedAt = *t
		}
		batch.Exports = append(batch.Exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}

	if len(batch.Exports) == 0 {
		return nil, ErrNotFound
	}
	return batch, nil
}

// DeleteBatch removes every export in a batch.
// Returns ErrNotFound if nothing was deleted.
func (db *DB) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM exports WHERE batch_id = ?", batchID)
	if err != nil {
		return 0, fmt.Errorf("delete batch: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

// PruneOlderThan removes exports created before cutoff and returns how many
// were removed.
func (db *DB) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM exports WHERE created_at < ?", formatTimestamp(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune exports: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func splitWorkers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
