package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchCacheRepository handles search_cache database operations.
type SearchCacheRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the entry for key fetched after freshAfter.
// Returns ErrNotFound for missing or stale entries.
func (r *SearchCacheRepository) Get(ctx context.Context, key string, freshAfter time.Time) (*CachedSearch, error) {
	query := `
		SELECT key, payload, fetched_at
		FROM search_cache
		WHERE key = $1 AND fetched_at > $2
	`
	var c CachedSearch
	err := r.pool.QueryRow(ctx, query, key, freshAfter).Scan(
		&c.Key,
		&c.Payload,
		&c.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying search cache: %w", err)
	}
	return &c, nil
}

// Upsert inserts or replaces the entry for c.Key.
func (r *SearchCacheRepository) Upsert(ctx context.Context, c CachedSearch) error {
	query := `
		INSERT INTO search_cache (key, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := r.pool.Exec(ctx, query, c.Key, []byte(c.Payload), c.FetchedAt); err != nil {
		return fmt.Errorf("upserting search cache: %w", err)
	}
	return nil
}

// DeleteExpired removes entries fetched before olderThan and returns how
// many were removed.
func (r *SearchCacheRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM search_cache WHERE fetched_at <= $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("deleting expired search cache: %w", err)
	}
	return tag.RowsAffected(), nil
}
