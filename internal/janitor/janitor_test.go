package janitor

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSessions struct {
	calls atomic.Int32
	n     int
}

func (c *countingSessions) PurgeExpired() int {
	c.calls.Add(1)
	return c.n
}

type countingCache struct {
	calls atomic.Int32
	n     int
	err   error
}

func (c *countingCache) PurgeExpired(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("purge called without deadline")
	}
	return c.n, c.err
}

func TestAddRejectsBadSchedules(t *testing.T) {
	j := New(zerolog.Nop())

	assert.Error(t, j.AddSessionPurge("every tuesday", &countingSessions{}))
	assert.Error(t, j.AddCachePurge("", "postgres", &countingCache{}))
	assert.Equal(t, 0, j.Jobs())

	require.NoError(t, j.AddSessionPurge(DefaultSessionSchedule, &countingSessions{}))
	require.NoError(t, j.AddCachePurge(DefaultCacheSchedule, "postgres", &countingCache{}))
	assert.Equal(t, 2, j.Jobs())
}

func TestPurgeJobs(t *testing.T) {
	var buf bytes.Buffer
	j := New(zerolog.New(&buf))

	sessions := &countingSessions{n: 2}
	j.purgeSessions(sessions)
	assert.Equal(t, int32(1), sessions.calls.Load())
	assert.Contains(t, buf.String(), "purged idle sessions")

	buf.Reset()
	cache := &countingCache{n: 5}
	j.purgeCache("postgres", cache)
	assert.Equal(t, int32(1), cache.calls.Load())
	assert.Contains(t, buf.String(), "purged expired cache entries")

	buf.Reset()
	j.purgeCache("postgres", &countingCache{err: errors.New("connection refused")})
	assert.Contains(t, buf.String(), "cache purge failed")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestScheduledRun(t *testing.T) {
	j := New(zerolog.Nop())
	sessions := &countingSessions{}
	cache := &countingCache{}
	require.NoError(t, j.AddSessionPurge("@every 1s", sessions))
	require.NoError(t, j.AddCachePurge("@every 1s", "memory", cache))

	j.Start()
	defer j.Stop()

	assert.Eventually(t, func() bool {
		return sessions.calls.Load() > 0 && cache.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
}
