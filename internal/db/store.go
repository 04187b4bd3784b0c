package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/justestif/go-mood-music/internal/search"
)

// CacheRepository is the subset of SearchCacheRepository used by CacheStore.
type CacheRepository interface {
	Get(ctx context.Context, key string, freshAfter time.Time) (*CachedSearch, error)
	Upsert(ctx context.Context, c CachedSearch) error
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

var _ CacheRepository = (*SearchCacheRepository)(nil)

// CacheStore adapts a CacheRepository to search.Store.
type CacheStore struct {
	repo CacheRepository
	ttl  time.Duration
	now  func() time.Time
}

var _ search.Store = (*CacheStore)(nil)

// NewCacheStore creates a store whose entries expire after ttl. A
// non-positive ttl uses search.DefaultCacheTTL.
func NewCacheStore(repo CacheRepository, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = search.DefaultCacheTTL
	}
	return &CacheStore{repo: repo, ttl: ttl, now: time.Now}
}

// Get returns the fresh payload under key.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c, err := s.repo.Get(ctx, key, s.now().Add(-s.ttl))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c.Payload, true, nil
}

// Set stores value under key. Values must be JSON.
func (s *CacheStore) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return errors.New("search cache payload is not JSON")
	}
	return s.repo.Upsert(ctx, CachedSearch{Key: key, Payload: value, FetchedAt: s.now()})
}

// PurgeExpired deletes entries older than the TTL.
func (s *CacheStore) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().Add(-s.ttl))
	return int(n), err
}
