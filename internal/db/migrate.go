package db

import (
	"context"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS search_cache (
		key        TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS search_cache_fetched_at_idx ON search_cache (fetched_at);
`

// Migrate creates the tables this package needs. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
