package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Category registry snapshot, kept for reporting colors
CREATE TABLE IF NOT EXISTS categories (
    name VARCHAR(100) PRIMARY KEY,
    color VARCHAR(7) NOT NULL DEFAULT '#6c757d',
    keywords TEXT[] NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- One row per imported file, keyed by content checksum
CREATE TABLE IF NOT EXISTS imports (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    source VARCHAR(255) NOT NULL,
    checksum CHAR(64) NOT NULL,
    entry_count INTEGER NOT NULL,
    removed_rows INTEGER NOT NULL DEFAULT 0,
    duplicate_rows INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(checksum)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    import_id UUID NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    date DATE NOT NULL,
    description TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(import_id, position)
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_import_id ON ledger_entries(import_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(date);
`

// migrateDDL adds columns introduced after the first release
const migrateDDL = `
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'ledger_entries' AND column_name = 'category') THEN
        ALTER TABLE ledger_entries ADD COLUMN category VARCHAR(100) NOT NULL DEFAULT 'Other';
    END IF;
END $$;

CREATE INDEX IF NOT EXISTS idx_ledger_entries_category ON ledger_entries(category);
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, migrateDDL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
