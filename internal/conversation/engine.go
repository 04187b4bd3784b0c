// Package conversation implements the mood conversation state machine. A
// Session classifies each utterance with the keyword classifier, falls back
// to the generative analyzer, and once the mood is settled resolves a query,
// fetches tracks and hands them to the playback queue.
package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/analyzer"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/recommend"
	"github.com/justestif/go-mood-music/internal/search"
)

// MoodAnalyzer is the slow path used when keyword classification fails.
type MoodAnalyzer interface {
	Analyze(ctx context.Context, utterance string, mode analyzer.Mode, suggested *lexicon.Emotion) analyzer.Verdict
}

// Engine holds the collaborators shared by every session.
type Engine struct {
	lex      *lexicon.Lexicon
	resolver *recommend.Resolver
	analyzer MoodAnalyzer
	fetcher  *search.Fetcher
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLexicon overrides the default lexicon.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(e *Engine) {
		e.lex = lex
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock sets the clock used to timestamp messages.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine.
func NewEngine(resolver *recommend.Resolver, moods MoodAnalyzer, fetcher *search.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		lex:      lexicon.Default(),
		resolver: resolver,
		analyzer: moods,
		fetcher:  fetcher,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSession creates a session that reports to emitter. A nil emitter
// discards events.
func (e *Engine) NewSession(emitter Emitter) *Session {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return newSession(e, emitter)
}
