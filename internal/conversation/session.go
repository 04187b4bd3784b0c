package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/justestif/go-mood-music/internal/analyzer"
	"github.com/justestif/go-mood-music/internal/classifier"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/metrics"
	"github.com/justestif/go-mood-music/internal/playback"
	"github.com/justestif/go-mood-music/internal/search"
)

// Sentinel errors.
var (
	// ErrBusy is returned when an utterance arrives while the previous one
	// is still being processed. The utterance is dropped.
	ErrBusy = errors.New("session busy")

	// ErrEmptyUtterance is returned for blank input.
	ErrEmptyUtterance = errors.New("empty utterance")

	// ErrSuperseded is returned when the session moved on while a
	// collaborator call was outstanding. Its result was discarded.
	ErrSuperseded = errors.New("session superseded")

	// ErrClosed is returned once the session was abandoned.
	ErrClosed = errors.New("session closed")
)

// dedupWindow is how many trailing same-sender messages are compared
// against a new message.
const dedupWindow = 3

// Session is one user's conversation plus its search and playback state.
type Session struct {
	engine  *Engine
	search  *search.Session
	queue   *playback.Queue
	emitter Emitter

	busy       atomic.Bool
	generation atomic.Uint64
	closed     atomic.Bool
	started    atomic.Bool

	mu       sync.RWMutex
	state    State
	nextID   int64
	question string // last yes/no question asked
}

func newSession(e *Engine, emitter Emitter) *Session {
	return &Session{
		engine:  e,
		search:  e.fetcher.NewSession(),
		queue:   playback.NewQueue(),
		emitter: emitter,
		state:   State{Stage: Initial, Intensity: lexicon.Medium},
	}
}

// Start posts the welcome messages. With a known initial emotion the
// session asks the user to confirm it; otherwise it opens generically.
// Only the first call has any effect.
func (s *Session) Start(_ context.Context, initial *lexicon.Emotion) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.say(msgWelcome)

	if initial != nil {
		if p, ok := s.engine.lex.Profile(*initial); ok {
			s.update(func(st *State) {
				st.Stage = Confirming
				st.DetectedEmotion = cloneEmotion(initial)
				st.Suggested = cloneEmotion(initial)
			})
			s.say(p.ConfirmPrompt)
			return
		}
	}
	s.say(msgOpening)
}

// SetExternalEmotion applies a label from the image classifier. Unknown
// labels become Neutral. Outstanding work is superseded and a confirmed
// session goes back to confirming.
func (s *Session) SetExternalEmotion(_ context.Context, label string) lexicon.Emotion {
	e := lexicon.Normalize(label)
	s.generation.Add(1)
	s.started.Store(true)

	p, _ := s.engine.lex.Profile(e)
	s.update(func(st *State) {
		st.Stage = Confirming
		st.MoodConfirmed = false
		st.DetectedEmotion = &e
		st.Suggested = &e
		st.AwaitingAnswer = false
	})
	s.say(p.ConfirmPrompt)

	s.engine.logger.Info().Str("emotion", string(e)).Str("label", label).Msg("external emotion applied")
	return e
}

// ExternalEmotionFailed tells the user the image classifier could not help.
// The conversation state is left unchanged.
func (s *Session) ExternalEmotionFailed() {
	s.say(msgImageFailed)
}

// Abandon discards the session. Outstanding collaborator results are dropped.
func (s *Session) Abandon() {
	s.closed.Store(true)
	s.generation.Add(1)
}

// Submit processes one user utterance. It returns ErrBusy without side
// effects when another utterance is in flight.
func (s *Session) Submit(ctx context.Context, utterance string) error {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return ErrEmptyUtterance
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.started.Store(true)
	gen := s.generation.Load()
	s.add(SenderUser, text)

	return s.handle(ctx, gen, text)
}

func (s *Session) handle(ctx context.Context, gen uint64, text string) error {
	lex := s.engine.lex
	res := classifier.Classify(lex, text)
	metrics.Classifications.WithLabelValues(res.Kind.String()).Inc()

	st := s.read()
	pending := st.Stage == Confirming && st.Suggested != nil

	s.engine.logger.Debug().
		Str("stage", st.Stage.String()).
		Str("kind", res.Kind.String()).
		Str("keyword", res.Keyword).
		Msg("utterance classified")

	switch res.Kind {
	case classifier.DirectGenre:
		s.update(func(st *State) {
			confirm(st)
		})
		s.say(msgGenreChoice(res.Genre))
		return s.play(ctx, gen, res.Genre, s.emotionOr(lexicon.Neutral))

	case classifier.Scenario:
		rule := *res.Scenario
		s.update(func(st *State) {
			setEmotion(st, rule.Emotion, rule.Intensity)
			confirm(st)
		})
		s.say(rule.Response)
		return s.play(ctx, gen, s.engine.resolver.PickScenarioGenre(rule), rule.Emotion)

	case classifier.Synonym:
		if pending {
			q := msgOfferMusic(res.Emotion)
			s.update(func(st *State) {
				setEmotion(st, res.Emotion, res.Intensity)
				st.Suggested = cloneEmotion(&res.Emotion)
				st.AwaitingAnswer = true
			})
			s.ask(q)
			return nil
		}
		return s.confirmAndPlay(ctx, gen, res.Emotion, res.Intensity)
	}

	if !pending {
		return s.analyze(ctx, gen, text, analyzer.ModeFresh, nil)
	}

	switch classifier.ParseAnswer(text) {
	case classifier.Yes:
		return s.confirmAndPlay(ctx, gen, *st.Suggested, st.Intensity)
	case classifier.No:
		s.update(func(st *State) {
			st.Suggested = nil
			st.AwaitingAnswer = false
		})
		s.say(msgAskAgain)
		return nil
	}

	if st.AwaitingAnswer {
		s.ask(s.lastQuestion())
		return nil
	}
	return s.analyze(ctx, gen, text, analyzer.ModeConfirming, st.Suggested)
}

// confirmAndPlay settles on emotion, offers music and searches for it.
func (s *Session) confirmAndPlay(ctx context.Context, gen uint64, e lexicon.Emotion, tier lexicon.Tier) error {
	s.update(func(st *State) {
		setEmotion(st, e, tier)
		confirm(st)
	})
	p, _ := s.engine.lex.Profile(e)
	s.say(p.MusicPrompt)
	return s.play(ctx, gen, s.engine.resolver.Resolve(e, tier, ""), e)
}

func (s *Session) analyze(ctx context.Context, gen uint64, text string, mode analyzer.Mode, suggested *lexicon.Emotion) error {
	v := s.engine.analyzer.Analyze(ctx, text, mode, suggested)
	if s.generation.Load() != gen {
		return ErrSuperseded
	}

	s.update(func(st *State) {
		if !v.Fallback {
			setEmotion(st, v.Emotion, v.Intensity)
		}
		if mode == analyzer.ModeConfirming && v.ConfirmsSuggestion != nil && !*v.ConfirmsSuggestion {
			st.Suggested = cloneEmotion(&v.Emotion)
		}
		if mode == analyzer.ModeFresh && !v.ReadyForMusic {
			st.Stage = Confirming
			st.Suggested = nil
			st.AwaitingAnswer = false
		}
	})
	if v.Response != "" {
		s.say(v.Response)
	}

	if !v.ReadyForMusic {
		// The fallback response already asks for more.
		switch {
		case v.Fallback:
		case mode == analyzer.ModeConfirming:
			s.say(msgTellMeMore)
		default:
			s.say(msgUnderstandMore)
		}
		return nil
	}

	s.update(confirm)
	if v.MusicReason != "" {
		s.say(v.MusicReason)
	}

	explicit := ""
	if mode == analyzer.ModeFresh {
		explicit = v.GenreRequest
	}
	return s.play(ctx, gen, s.engine.resolver.Resolve(v.Emotion, v.Intensity, explicit), v.Emotion)
}

// play runs one search event for query and loads the queue.
func (s *Session) play(ctx context.Context, gen uint64, query string, e lexicon.Emotion) error {
	s.say(msgFinding(query))

	res, err := s.search.Fetch(ctx, query, e)
	if s.generation.Load() != gen {
		return ErrSuperseded
	}
	if err != nil {
		s.engine.logger.Warn().Err(err).Str("query", query).Msg("search failed")
		s.say(msgSearchError)
		return nil
	}

	switch {
	case !res.FellBack:
		s.say(msgFound(res.Query))
	case len(res.Tracks) > 0:
		s.say(msgSearchTrouble)
		s.say(msgFallbackFound(res.Query))
	default:
		s.say(msgSearchTrouble)
		s.say(msgSearchEmpty)
	}

	s.queue.Set(res.Tracks)
	s.emitter.SetSearchResults(res.Tracks)
	s.engine.logger.Info().
		Str("query", res.Query).
		Str("source", string(res.Source)).
		Bool("fell_back", res.FellBack).
		Int("tracks", len(res.Tracks)).
		Msg("search resolved")
	return nil
}

// Next plays the next queued track.
func (s *Session) Next() (search.Track, bool) {
	return s.moved(s.queue.Next())
}

// Previous plays the previous queued track.
func (s *Session) Previous() (search.Track, bool) {
	return s.moved(s.queue.Previous())
}

// Select plays the queued track with id.
func (s *Session) Select(id string) (search.Track, bool) {
	return s.moved(s.queue.Select(id))
}

// TogglePlay flips the play state of the current track.
func (s *Session) TogglePlay() bool {
	if s.queue.Len() == 0 {
		return false
	}
	playing := !s.queue.Playing()
	s.queue.SetPlaying(playing)
	s.emitter.PlaybackStateChanged(playing)
	return playing
}

// ReportPlaying records that the client started the current track.
func (s *Session) ReportPlaying() {
	s.queue.Started()
	s.emitter.PlaybackStateChanged(s.queue.Playing())
}

// ReportEnded advances after the current track finished.
func (s *Session) ReportEnded() (search.Track, bool) {
	return s.moved(s.queue.Ended())
}

// ReportFailure handles a failed playback of track id. Reports for a track
// other than the current one are stale and ignored (false).
func (s *Session) ReportFailure(id string, kind playback.FailureKind) (playback.Outcome, bool) {
	if cur, ok := s.queue.Current(); id != "" && (!ok || cur.ID != id) {
		return playback.Outcome{}, false
	}

	metrics.PlaybackFailures.WithLabelValues(string(kind)).Inc()
	out := s.queue.Failure(kind)
	s.say(out.Notice)

	switch {
	case out.Advanced:
		s.emitter.SetCurrentTrack(out.Track)
	default:
		s.emitter.PlaybackStateChanged(false)
	}
	return out, true
}

func (s *Session) moved(t search.Track, ok bool) (search.Track, bool) {
	if ok {
		s.emitter.SetCurrentTrack(t)
	}
	return t, ok
}

// Snapshot returns a copy of the session for presentation.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:   s.read(),
		Query:   s.search.LastQuery(),
		Tracks:  s.queue.Tracks(),
		Index:   s.queue.Index(),
		Playing: s.queue.Playing(),
		Busy:    s.busy.Load(),
	}
	if t, ok := s.queue.Current(); ok {
		snap.Current = &t
	}
	return snap
}

// Busy reports whether an utterance is being processed.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) read() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

func (s *Session) emotionOr(def lexicon.Emotion) lexicon.Emotion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.DetectedEmotion != nil {
		return *s.state.DetectedEmotion
	}
	return def
}

func (s *Session) lastQuestion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question
}

// ask posts a yes/no question and remembers it for re-asking.
func (s *Session) ask(q string) {
	s.mu.Lock()
	s.question = q
	s.mu.Unlock()
	s.say(q)
}

func (s *Session) say(text string) {
	s.add(SenderBot, text)
}

// add appends a message unless it repeats one of the last few messages in
// the trailing run from the same sender.
func (s *Session) add(sender Sender, text string) {
	s.mu.Lock()
	msgs := s.state.Messages
	for i, seen := len(msgs)-1, 0; i >= 0 && seen < dedupWindow && msgs[i].Sender == sender; i, seen = i-1, seen+1 {
		if msgs[i].Text == text {
			s.mu.Unlock()
			return
		}
	}
	s.nextID++
	m := Message{ID: s.nextID, Sender: sender, Text: text, At: s.engine.now()}
	s.state.Messages = append(s.state.Messages, m)
	s.mu.Unlock()

	s.emitter.AppendMessage(m)
}

func setEmotion(st *State, e lexicon.Emotion, tier lexicon.Tier) {
	st.DetectedEmotion = &e
	st.Intensity = tier
}

func confirm(st *State) {
	st.Stage = Confirmed
	st.MoodConfirmed = true
	st.Suggested = nil
	st.AwaitingAnswer = false
}
