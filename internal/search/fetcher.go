package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/metrics"
)

// Result limits per search kind.
const (
	DefaultPrimaryLimit  = 8
	DefaultFallbackLimit = 6
)

// Source indicates where a Result's tracks came from.
type Source string

const (
	// SourceHeld means the session already held tracks for the query.
	SourceHeld Source = "held"
	// SourceCache means the tracks were read from the Store.
	SourceCache Source = "cache"
	// SourceNetwork means the tracks came from the Searcher.
	SourceNetwork Source = "network"
	// SourceNone means neither query produced playable tracks.
	SourceNone Source = "none"
)

// Searcher is the catalog search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Record, error)
}

// FallbackPlanner derives the secondary query used when a search is empty.
type FallbackPlanner interface {
	FallbackQuery(emotion lexicon.Emotion) string
}

// Result is the outcome of one user-visible search event.
type Result struct {
	Query    string // query whose tracks are returned
	Primary  string // query originally requested
	Tracks   []Track
	Source   Source
	FellBack bool
}

// Fetcher resolves queries through the Store and the Searcher. It is safe
// for concurrent use; per-conversation state lives in a Session.
type Fetcher struct {
	searcher      Searcher
	store         Store
	planner       FallbackPlanner
	primaryLimit  int
	fallbackLimit int
	logger        zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimits sets the maximum number of tracks kept from primary and
// fallback searches.
func WithLimits(primary, fallback int) Option {
	return func(f *Fetcher) {
		if primary > 0 {
			f.primaryLimit = primary
		}
		if fallback > 0 {
			f.fallbackLimit = fallback
		}
	}
}

// WithLogger sets the logger used for store and collaborator failures.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher. A nil store is replaced with a MemoryStore.
func NewFetcher(searcher Searcher, store Store, planner FallbackPlanner, opts ...Option) *Fetcher {
	if store == nil {
		store = NewMemoryStore(DefaultCacheTTL)
	}
	f := &Fetcher{
		searcher:      searcher,
		store:         store,
		planner:       planner,
		primaryLimit:  DefaultPrimaryLimit,
		fallbackLimit: DefaultFallbackLimit,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSession starts an empty search session.
func (f *Fetcher) NewSession() *Session {
	return &Session{fetcher: f}
}

// Session remembers the last query issued for one conversation and the
// tracks it resolved to.
type Session struct {
	fetcher *Fetcher

	mu        sync.Mutex
	lastQuery string
	tracks    []Track
}

// LastQuery returns the query whose tracks the session currently holds.
func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// Tracks returns a copy of the held tracks.
func (s *Session) Tracks() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Track(nil), s.tracks...)
}

// Fetch resolves query into tracks:
//
//  1. the held tracks when query repeats the last query and they are non-empty
//  2. a Store hit
//  3. the Searcher, caching a non-empty result
//
// When that yields nothing, exactly one fallback query derived from emotion
// is tried the same way (steps 2 and 3). The session then holds whatever
// the query actually used produced. An error is returned only when both
// searches failed; an empty result is not an error. The session lock is
// not held during lookups, so readers are never blocked by a slow
// Searcher. Callers must not run concurrent Fetches on one Session.
func (s *Session) Fetch(ctx context.Context, query string, emotion lexicon.Emotion) (Result, error) {
	f := s.fetcher

	if held, ok := s.held(query); ok {
		metrics.Searches.WithLabelValues(string(SourceHeld)).Inc()
		return Result{Query: query, Primary: query, Tracks: held, Source: SourceHeld}, nil
	}

	tracks, src, primaryErr := f.lookup(ctx, query, f.primaryLimit)
	if len(tracks) > 0 {
		s.hold(query, tracks)
		metrics.Searches.WithLabelValues(string(src)).Inc()
		return Result{Query: query, Primary: query, Tracks: tracks, Source: src}, nil
	}

	fallback := f.planner.FallbackQuery(emotion)
	metrics.FallbackFetches.Inc()
	f.logger.Info().
		Str("query", query).
		Str("fallback", fallback).
		AnErr("primary_err", primaryErr).
		Msg("search empty, trying fallback")

	tracks, src, fallbackErr := f.lookup(ctx, fallback, f.fallbackLimit)
	s.hold(fallback, tracks)

	res := Result{Query: fallback, Primary: query, Tracks: tracks, Source: src, FellBack: true}
	if len(tracks) == 0 {
		res.Source = SourceNone
	}
	metrics.Searches.WithLabelValues(string(res.Source)).Inc()

	if primaryErr != nil && fallbackErr != nil {
		return res, fmt.Errorf("searching %q: %w", query, errors.Join(primaryErr, fallbackErr))
	}
	return res, nil
}

// held returns the held tracks when they were resolved for query.
func (s *Session) held(query string) ([]Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query != s.lastQuery || len(s.tracks) == 0 {
		return nil, false
	}
	return append([]Track(nil), s.tracks...), true
}

func (s *Session) hold(query string, tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = query
	s.tracks = append([]Track(nil), tracks...)
}

// lookup serves query from the store, then the network. Store failures are
// logged and treated as misses. It returns an error only for a failed
// network call.
func (f *Fetcher) lookup(ctx context.Context, query string, limit int) ([]Track, Source, error) {
	key := CacheKey(query)

	if tracks, ok := f.cached(ctx, key); ok {
		if len(tracks) > limit {
			tracks = tracks[:limit]
		}
		return tracks, SourceCache, nil
	}

	records, err := f.searcher.Search(ctx, query)
	if err != nil {
		f.logger.Warn().Err(err).Str("query", query).Msg("search collaborator failed")
		return nil, SourceNone, fmt.Errorf("searching catalog: %w", err)
	}

	tracks := NormalizeAll(records, limit)
	if len(tracks) == 0 {
		return nil, SourceNone, nil
	}

	payload, err := json.Marshal(tracks)
	if err == nil {
		err = f.store.Set(ctx, key, payload)
	}
	if err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("caching search result")
	}

	return tracks, SourceNetwork, nil
}

func (f *Fetcher) cached(ctx context.Context, key string) ([]Track, bool) {
	payload, found, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("reading search cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var tracks []Track
	if err := json.Unmarshal(payload, &tracks); err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("decoding cached search result")
		return nil, false
	}

	// Cached tracks must still carry a playable media URL.
	playable := tracks[:0]
	for _, t := range tracks {
		if usableURL(t.MediaURL) {
			playable = append(playable, t)
		}
	}
	if len(playable) == 0 {
		return nil, false
	}
	return playable, true
}
