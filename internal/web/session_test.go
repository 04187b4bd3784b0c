package web

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-mood-music/internal/analyzer"
	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/recommend"
	"github.com/justestif/go-mood-music/internal/search"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, clock *fakeClock, moods *stubAnalyzer) *SessionStore {
	t.Helper()
	resolver := recommend.NewResolver(lexicon.Default())
	fetcher := search.NewFetcher(&stubSearcher{}, nil, resolver)
	engine := conversation.NewEngine(resolver, moods, fetcher)
	return NewSessionStore(engine, WithTTL(time.Hour), WithStoreClock(clock.Now))
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, &stubAnalyzer{verdict: analyzer.FallbackVerdict()})

	a := store.Create(context.Background(), nil)
	b := store.Create(context.Background(), nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, &stubAnalyzer{verdict: analyzer.FallbackVerdict()})

	stale := store.Create(context.Background(), nil)
	fresh := store.Create(context.Background(), nil)

	clock.Advance(50 * time.Minute)
	_, err := store.Get(fresh.ID)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, stale.Session.Submit(context.Background(), "hi"), conversation.ErrClosed)

	clock.Advance(2 * time.Hour)
	_, err = store.Get(fresh.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStorePurgeKeepsBusySessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	moods := &stubAnalyzer{
		verdict: analyzer.FallbackVerdict(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := newTestStore(t, clock, moods)
	cs := store.Create(context.Background(), nil)

	done := make(chan error, 1)
	go func() {
		done <- cs.Session.Submit(context.Background(), "hmm")
	}()
	<-moods.entered

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, store.PurgeExpired())

	close(moods.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.PurgeExpired())
}

func TestSessionStoreDelete(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := newTestStore(t, clock, &stubAnalyzer{verdict: analyzer.FallbackVerdict()})
	cs := store.Create(context.Background(), nil)
	l := cs.Hub.Subscribe()

	assert.True(t, store.Delete(cs.ID))
	assert.False(t, store.Delete(cs.ID))
	<-l.Done()
}
