package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/ledgr/categorizer"
)

// SyncCategories upserts the registry so stored entries can be reported with
// their colors. Categories missing from cats are left in place.
func (db *DB) SyncCategories(ctx context.Context, cats []categorizer.Category) error {
	for _, cat := range cats {
		keywords := cat.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO categories (name, color, keywords)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE
			SET color = EXCLUDED.color,
			    keywords = EXCLUDED.keywords,
			    updated_at = NOW()
		`, cat.Name, cat.Color, keywords)
		if err != nil {
			return fmt.Errorf("failed to sync category %q: %w", cat.Name, err)
		}
	}
	return nil
}
