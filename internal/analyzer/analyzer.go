// Package analyzer asks a generative collaborator for an emotion verdict
// when keyword classification found nothing. Every failure collapses into a
// fixed fallback verdict, so callers always receive a usable Verdict.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/metrics"
)

// DefaultTimeout bounds a single generative call.
const DefaultTimeout = 15 * time.Second

// Fallback verdict text.
const (
	FallbackResponse    = "I'd love to help you find some music. Could you tell me more about how you're feeling?"
	FallbackReasoning   = "Unable to analyze mood accurately"
	FallbackMusicReason = "Music can always brighten your day"
)

// ErrNoGenerator is logged when the analyzer runs without a collaborator.
var ErrNoGenerator = errors.New("no generator configured")

// Generator is the generative-language collaborator: prompt in, free text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mode selects the prompt.
type Mode int

const (
	// ModeFresh asks for a full classification.
	ModeFresh Mode = iota
	// ModeConfirming asks whether the user confirms a suggested emotion.
	ModeConfirming
)

func (m Mode) String() string {
	if m == ModeConfirming {
		return "confirming"
	}
	return "fresh"
}

// Verdict is the analyzer's structured result.
type Verdict struct {
	Emotion            lexicon.Emotion
	Intensity          lexicon.Tier
	Confidence         float64
	Reasoning          string
	Context            string
	Response           string
	MusicReason        string
	GenreRequest       string
	ReadyForMusic      bool
	ConfirmsSuggestion *bool

	// Fallback is set when the verdict is the fixed substitute.
	Fallback bool
}

// FallbackVerdict is returned whenever the collaborator cannot be used.
func FallbackVerdict() Verdict {
	return Verdict{
		Emotion:       lexicon.Neutral,
		Intensity:     lexicon.Medium,
		Confidence:    0.5,
		Reasoning:     FallbackReasoning,
		Response:      FallbackResponse,
		MusicReason:   FallbackMusicReason,
		ReadyForMusic: false,
		Fallback:      true,
	}
}

// Analyzer adapts a Generator into Verdicts.
type Analyzer struct {
	gen     Generator
	lex     *lexicon.Lexicon
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithLexicon overrides the lexicon used to normalize labels.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(a *Analyzer) {
		a.lex = lex
	}
}

// New creates an Analyzer. A nil generator makes every call fall back.
func New(gen Generator, opts ...Option) *Analyzer {
	a := &Analyzer{
		gen:     gen,
		lex:     lexicon.Default(),
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies utterance. Confirming mode is used only when mode is
// ModeConfirming and a suggestion is present.
func (a *Analyzer) Analyze(ctx context.Context, utterance string, mode Mode, suggested *lexicon.Emotion) Verdict {
	if mode == ModeConfirming && suggested == nil {
		mode = ModeFresh
	}

	v, err := a.analyze(ctx, utterance, mode, suggested)
	if err != nil {
		metrics.AnalyzerCalls.WithLabelValues(mode.String(), "fallback").Inc()
		a.logger.Warn().Err(err).Str("mode", mode.String()).Msg("mood analysis fell back")
		return FallbackVerdict()
	}

	metrics.AnalyzerCalls.WithLabelValues(mode.String(), "ok").Inc()
	a.logger.Debug().
		Str("mode", mode.String()).
		Str("emotion", string(v.Emotion)).
		Str("intensity", string(v.Intensity)).
		Bool("ready", v.ReadyForMusic).
		Msg("mood analyzed")
	return v
}

func (a *Analyzer) analyze(ctx context.Context, utterance string, mode Mode, suggested *lexicon.Emotion) (Verdict, error) {
	if a.gen == nil {
		return Verdict{}, ErrNoGenerator
	}

	var prompt string
	if mode == ModeConfirming {
		prompt = confirmPrompt(a.lex, utterance, *suggested)
	} else {
		prompt = freshPrompt(a.lex, utterance)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.gen.Generate(callCtx, prompt)
	metrics.AnalyzerLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return Verdict{}, fmt.Errorf("generating verdict: %w", err)
	}

	raw, ok := ExtractJSON(text)
	if !ok {
		return Verdict{}, errors.New("no JSON object in reply")
	}

	var reply Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return Verdict{}, fmt.Errorf("decoding verdict: %w", err)
	}

	return a.verdict(reply, mode), nil
}

func (a *Analyzer) verdict(r Reply, mode Mode) Verdict {
	label := r.Emotion
	if r.ActualEmotion != "" && (mode == ModeConfirming || label == "") {
		label = r.ActualEmotion
	}

	v := Verdict{
		Emotion:       lexicon.Normalize(label),
		Intensity:     lexicon.ParseTier(r.Intensity),
		Confidence:    clamp(r.Confidence),
		Reasoning:     strings.TrimSpace(r.Reasoning),
		Context:       strings.TrimSpace(r.Context),
		Response:      strings.TrimSpace(r.EmpatheticResponse),
		MusicReason:   strings.TrimSpace(r.MusicSuggestionReason),
		ReadyForMusic: r.ReadyForMusic,
	}
	if mode == ModeConfirming {
		v.ConfirmsSuggestion = r.ConfirmsSuggestion
	} else if r.GenreRequest != nil {
		v.GenreRequest = genreRequest(*r.GenreRequest)
	}
	return v
}

func genreRequest(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "n/a":
		return ""
	}
	return s
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
