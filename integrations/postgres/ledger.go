package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aqlanhadi/ledgr/ledger"
	"github.com/jackc/pgx/v5"
)

var entryColumns = []string{"import_id", "position", "date", "description", "amount", "category"}

// Source identifies the file a ledger came from.
type Source struct {
	Name          string
	Checksum      string
	RemovedRows   int
	DuplicateRows int
}

// ImportExists looks up an earlier import of the same content.
func (db *DB) ImportExists(ctx context.Context, checksum string) (bool, string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `SELECT id FROM imports WHERE checksum = $1`, checksum).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to check import: %w", err)
	}
	return true, id, nil
}

// DeleteImport removes an import and its entries (cascade)
func (db *DB) DeleteImport(ctx context.Context, importID string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM imports WHERE id = $1`, importID); err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	return nil
}

// SaveLedger stores txs under a new import row in one transaction and
// returns the import id.
func (db *DB) SaveLedger(ctx context.Context, src Source, txs []ledger.Transaction) (string, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO imports (source, checksum, entry_count, removed_rows, duplicate_rows)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, src.Name, src.Checksum, len(txs), src.RemovedRows, src.DuplicateRows).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create import: %w", err)
	}

	rows := make([][]any, len(txs))
	for i, t := range txs {
		rows[i] = []any{id, i, t.Date.In(time.UTC), t.Description, t.Amount, t.Category}
	}
	if len(rows) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"ledger_entries"}, entryColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return "", fmt.Errorf("failed to copy ledger entries: %w", err)
		}
		if int(n) != len(rows) {
			return "", fmt.Errorf("copied %d of %d ledger entries", n, len(rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return id, nil
}
