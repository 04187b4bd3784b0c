// Package cache provides a Redis-backed search result store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/justestif/go-mood-music/internal/search"
)

// RedisConfig holds configuration for the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps serialized search results in Redis with an expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ search.Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(rdb, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. A non-positive ttl
// uses search.DefaultCacheTTL.
func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = search.DefaultCacheTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value under key with the store's TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
