package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-mood-music/internal/search"
)

// setupTestStore connects to the Redis named by MOODMUSIC_TEST_REDIS_ADDR.
func setupTestStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	addr := os.Getenv("MOODMUSIC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOODMUSIC_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, TTL: ttl})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t, time.Minute)
	ctx := context.Background()
	key := search.CacheKey("test " + t.Name())
	defer store.rdb.Del(ctx, key)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, []byte(`[{"id":"1"}]`)))

	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	ttl, err := store.rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewRedisStoreFromClientDefaultTTL(t *testing.T) {
	s := NewRedisStoreFromClient(nil, 0)
	assert.Equal(t, search.DefaultCacheTTL, s.ttl)
}
