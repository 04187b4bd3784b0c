// Package recommend maps a mood onto a concrete search query.
package recommend

import (
	"math/rand/v2"
	"sync"

	"github.com/justestif/go-mood-music/internal/lexicon"
)

// DefaultFallbackQuery is used when no profile genre can serve as fallback.
const DefaultFallbackQuery = "popular music"

// Resolver picks genres from the lexicon. Selection among candidates is
// uniformly random; callers must not depend on which candidate is returned.
type Resolver struct {
	lex *lexicon.Lexicon

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRand sets the random source. Used by tests to pin selection.
func WithRand(r *rand.Rand) Option {
	return func(res *Resolver) {
		res.rng = r
	}
}

// NewResolver creates a Resolver over lex.
func NewResolver(lex *lexicon.Lexicon, opts ...Option) *Resolver {
	r := &Resolver{
		lex: lex,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns explicit verbatim when set. Otherwise it picks one of the
// emotion's tier genres, or one of its full genre list when the tier has
// none. Unknown emotions resolve as Neutral.
func (r *Resolver) Resolve(emotion lexicon.Emotion, tier lexicon.Tier, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return r.pick(r.Candidates(emotion, tier))
}

// Candidates returns the set Resolve draws from when no explicit genre is set.
func (r *Resolver) Candidates(emotion lexicon.Emotion, tier lexicon.Tier) []string {
	p, _ := r.lex.Profile(emotion)
	if genres := p.TierGenres(tier); len(genres) > 0 {
		return genres
	}
	return p.Genres
}

// PickScenarioGenre selects uniformly from a scenario's genre pool.
func (r *Resolver) PickScenarioGenre(rule lexicon.ScenarioRule) string {
	if len(rule.Genres) == 0 {
		return r.Resolve(rule.Emotion, rule.Intensity, "")
	}
	return r.pick(rule.Genres)
}

// FallbackQuery is the query used after a primary search comes back empty:
// the emotion's first genre, or DefaultFallbackQuery for Neutral and unknown
// emotions.
func (r *Resolver) FallbackQuery(emotion lexicon.Emotion) string {
	p, ok := r.lex.Profile(emotion)
	if !ok || emotion == lexicon.Neutral || len(p.Genres) == 0 {
		return DefaultFallbackQuery
	}
	return p.Genres[0]
}

func (r *Resolver) pick(candidates []string) string {
	if len(candidates) == 0 {
		return DefaultFallbackQuery
	}
	r.mu.Lock()
	i := r.rng.IntN(len(candidates))
	r.mu.Unlock()
	return candidates[i]
}
