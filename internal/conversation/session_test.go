package conversation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-mood-music/internal/analyzer"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/playback"
	"github.com/justestif/go-mood-music/internal/recommend"
	"github.com/justestif/go-mood-music/internal/search"
)

type mockAnalyzer struct {
	verdict   analyzer.Verdict
	entered   chan struct{}
	release   chan struct{}
	lastMode  analyzer.Mode
	callCount atomic.Int32
}

func (m *mockAnalyzer) Analyze(ctx context.Context, _ string, mode analyzer.Mode, _ *lexicon.Emotion) analyzer.Verdict {
	m.callCount.Add(1)
	m.lastMode = mode
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	return m.verdict
}

type mockSearcher struct {
	mu        sync.Mutex
	queries   []string
	empty     bool
	callCount atomic.Int32
}

func (m *mockSearcher) Search(_ context.Context, query string) ([]search.Record, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.empty {
		return nil, nil
	}
	var out []search.Record
	for i := range 3 {
		out = append(out, search.Record{
			"id":        fmt.Sprintf("%s-%d", query, i),
			"name":      fmt.Sprintf("Track %d", i),
			"artist":    "Someone",
			"media_url": fmt.Sprintf("https://media.example/%d.mp3", i),
		})
	}
	return out, nil
}

func (m *mockSearcher) lastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return ""
	}
	return m.queries[len(m.queries)-1]
}

type recordingEmitter struct {
	mu       sync.Mutex
	messages []Message
	results  [][]search.Track
	current  []search.Track
	states   []bool
}

func (r *recordingEmitter) AppendMessage(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recordingEmitter) SetSearchResults(tracks []search.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, tracks)
}

func (r *recordingEmitter) SetCurrentTrack(t search.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = append(r.current, t)
}

func (r *recordingEmitter) PlaybackStateChanged(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, playing)
}

func (r *recordingEmitter) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Text
	}
	return out
}

type fixture struct {
	session  *Session
	moods    *mockAnalyzer
	searcher *mockSearcher
	emitter  *recordingEmitter
}

func newFixture(t *testing.T, v analyzer.Verdict) *fixture {
	t.Helper()
	lex := lexicon.Default()
	resolver := recommend.NewResolver(lex)
	f := &fixture{
		moods:    &mockAnalyzer{verdict: v},
		searcher: &mockSearcher{},
		emitter:  &recordingEmitter{},
	}
	fetcher := search.NewFetcher(f.searcher, search.NewMemoryStore(time.Hour), resolver)
	engine := NewEngine(resolver, f.moods, fetcher)
	f.session = engine.NewSession(f.emitter)
	return f
}

func emotionPtr(e lexicon.Emotion) *lexicon.Emotion { return &e }

func profile(t *testing.T, e lexicon.Emotion) lexicon.Profile {
	t.Helper()
	p, ok := lexicon.Default().Profile(e)
	require.True(t, ok)
	return p
}

func TestStartWithoutEmotion(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), nil)
	f.session.Start(context.Background(), nil)

	snap := f.session.Snapshot()
	assert.Equal(t, Initial, snap.Stage)
	assert.Equal(t, []string{msgWelcome, msgOpening}, f.emitter.texts())
}

func TestStartWithEmotion(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirming, snap.Stage)
	require.NotNil(t, snap.Suggested)
	assert.Equal(t, lexicon.Happy, *snap.Suggested)
	assert.Equal(t, []string{msgWelcome, profile(t, lexicon.Happy).ConfirmPrompt}, f.emitter.texts())
}

func TestScenarioBypassesAnalyzer(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), nil)

	require.NoError(t, f.session.Submit(context.Background(), "I just got dumped"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirmed, snap.Stage)
	assert.True(t, snap.MoodConfirmed)
	require.NotNil(t, snap.DetectedEmotion)
	assert.Equal(t, lexicon.Sad, *snap.DetectedEmotion)
	assert.Equal(t, lexicon.High, snap.Intensity)
	assert.Equal(t, int32(0), f.moods.callCount.Load())

	breakup := lexicon.Default().Scenarios()[0]
	query := f.searcher.lastQuery()
	assert.Contains(t, breakup.Genres, query)
	assert.Equal(t, query, snap.Query)
	assert.Len(t, snap.Tracks, 3)
	require.NotNil(t, snap.Current)
	assert.Equal(t, snap.Tracks[0].ID, snap.Current.ID)
	assert.False(t, snap.Playing)

	texts := f.emitter.texts()
	assert.Contains(t, texts, breakup.Response)
	assert.Contains(t, texts, msgFinding(query))
	assert.Equal(t, msgFound(query), texts[len(texts)-1])
	assert.Len(t, f.emitter.results, 1)
}

func TestDirectGenreRequest(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Sad))

	require.NoError(t, f.session.Submit(context.Background(), "play some jazz"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirmed, snap.Stage)
	assert.Nil(t, snap.Suggested)
	assert.Equal(t, "jazz", f.searcher.lastQuery())
	assert.Contains(t, f.emitter.texts(), msgGenreChoice("jazz"))
	assert.Equal(t, int32(0), f.moods.callCount.Load())
}

func TestConfirmSuggestionWithYes(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	require.NoError(t, f.session.Submit(context.Background(), "yeah"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirmed, snap.Stage)
	assert.True(t, snap.MoodConfirmed)
	require.NotNil(t, snap.DetectedEmotion)
	assert.Equal(t, lexicon.Happy, *snap.DetectedEmotion)
	assert.Contains(t, f.emitter.texts(), profile(t, lexicon.Happy).MusicPrompt)
	assert.Contains(t, profile(t, lexicon.Happy).Tiers[lexicon.Medium], f.searcher.lastQuery())
	assert.Equal(t, int32(0), f.moods.callCount.Load())
}

func TestDenySuggestionWithNo(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	require.NoError(t, f.session.Submit(context.Background(), "nope"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirming, snap.Stage)
	assert.Nil(t, snap.Suggested)
	assert.False(t, snap.MoodConfirmed)
	texts := f.emitter.texts()
	assert.Equal(t, msgAskAgain, texts[len(texts)-1])
	assert.Equal(t, int32(0), f.searcher.callCount.Load())
}

func TestSynonymWhilePendingAsksFirst(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	require.NoError(t, f.session.Submit(context.Background(), "I'm a bit nervous"))

	snap := f.session.Snapshot()
	question := msgOfferMusic(lexicon.Anxious)
	assert.Equal(t, Confirming, snap.Stage)
	assert.False(t, snap.MoodConfirmed)
	assert.True(t, snap.AwaitingAnswer)
	require.NotNil(t, snap.Suggested)
	assert.Equal(t, lexicon.Anxious, *snap.Suggested)
	assert.Equal(t, question, f.emitter.texts()[len(f.emitter.texts())-1])

	// An unclear answer repeats the question verbatim.
	require.NoError(t, f.session.Submit(context.Background(), "hmm"))
	texts := f.emitter.texts()
	assert.Equal(t, question, texts[len(texts)-1])
	assert.Equal(t, int32(0), f.moods.callCount.Load())

	require.NoError(t, f.session.Submit(context.Background(), "sure"))
	snap = f.session.Snapshot()
	assert.Equal(t, Confirmed, snap.Stage)
	assert.Contains(t, profile(t, lexicon.Anxious).Tiers[lexicon.Medium], f.searcher.lastQuery())
}

func TestSynonymWithoutSuggestionConfirms(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), nil)

	require.NoError(t, f.session.Submit(context.Background(), "feeling gloomy"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirmed, snap.Stage)
	require.NotNil(t, snap.DetectedEmotion)
	assert.Equal(t, lexicon.Sad, *snap.DetectedEmotion)
	assert.Contains(t, f.emitter.texts(), profile(t, lexicon.Sad).MusicPrompt)
}

func TestFreshAnalysisReady(t *testing.T) {
	f := newFixture(t, analyzer.Verdict{
		Emotion:       lexicon.Sad,
		Intensity:     lexicon.Low,
		Response:      "I'm so sorry.",
		MusicReason:   "Something gentle might help.",
		GenreRequest:  "lofi piano",
		ReadyForMusic: true,
	})
	f.session.Start(context.Background(), nil)

	require.NoError(t, f.session.Submit(context.Background(), "my dog passed away"))

	snap := f.session.Snapshot()
	assert.Equal(t, analyzer.ModeFresh, f.moods.lastMode)
	assert.Equal(t, Confirmed, snap.Stage)
	assert.Equal(t, lexicon.Low, snap.Intensity)
	assert.Equal(t, "lofi piano", f.searcher.lastQuery())
	texts := f.emitter.texts()
	assert.Contains(t, texts, "I'm so sorry.")
	assert.Contains(t, texts, "Something gentle might help.")
}

func TestFreshAnalysisNotReady(t *testing.T) {
	f := newFixture(t, analyzer.Verdict{
		Emotion:   lexicon.Neutral,
		Intensity: lexicon.Medium,
		Response:  "That sounds like a lot.",
	})
	f.session.Start(context.Background(), nil)

	require.NoError(t, f.session.Submit(context.Background(), "hmm"))

	snap := f.session.Snapshot()
	assert.Equal(t, Confirming, snap.Stage)
	assert.Nil(t, snap.Suggested)
	texts := f.emitter.texts()
	assert.Equal(t, msgUnderstandMore, texts[len(texts)-1])
	assert.Equal(t, int32(0), f.searcher.callCount.Load())
}

func TestConfirmingAnalysisNotReady(t *testing.T) {
	no := false
	f := newFixture(t, analyzer.Verdict{
		Emotion:            lexicon.Nostalgic,
		Intensity:          lexicon.Medium,
		ConfirmsSuggestion: &no,
	})
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	require.NoError(t, f.session.Submit(context.Background(), "thinking about old times"))

	snap := f.session.Snapshot()
	assert.Equal(t, analyzer.ModeConfirming, f.moods.lastMode)
	assert.Equal(t, Confirming, snap.Stage)
	require.NotNil(t, snap.Suggested)
	assert.Equal(t, lexicon.Nostalgic, *snap.Suggested)
	texts := f.emitter.texts()
	assert.Equal(t, msgTellMeMore, texts[len(texts)-1])
}

func TestAnalyzerFallbackKeepsEmotion(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), emotionPtr(lexicon.Happy))

	require.NoError(t, f.session.Submit(context.Background(), "hmm"))

	snap := f.session.Snapshot()
	require.NotNil(t, snap.DetectedEmotion)
	assert.Equal(t, lexicon.Happy, *snap.DetectedEmotion)
	texts := f.emitter.texts()
	assert.Equal(t, analyzer.FallbackResponse, texts[len(texts)-1])
}

func TestSearchFallbackMessages(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.searcher.empty = true
	f.session.Start(context.Background(), nil)

	require.NoError(t, f.session.Submit(context.Background(), "play some jazz"))

	texts := f.emitter.texts()
	assert.Equal(t, msgSearchTrouble, texts[len(texts)-2])
	assert.Equal(t, msgSearchEmpty, texts[len(texts)-1])
	assert.Equal(t, int32(2), f.searcher.callCount.Load())
	assert.Equal(t, -1, f.session.Snapshot().Index)
}

func TestSubmitRejectsConcurrentUtterance(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.moods.entered = make(chan struct{})
	f.moods.release = make(chan struct{})
	f.session.Start(context.Background(), nil)

	done := make(chan error, 1)
	go func() {
		done <- f.session.Submit(context.Background(), "hmm")
	}()
	<-f.moods.entered

	assert.True(t, f.session.Busy())
	assert.ErrorIs(t, f.session.Submit(context.Background(), "hello?"), ErrBusy)

	close(f.moods.release)
	require.NoError(t, <-done)
	assert.False(t, f.session.Busy())
	assert.Equal(t, int32(1), f.moods.callCount.Load())
	assert.NotContains(t, f.emitter.texts(), "hello?")
}

func TestSubmitSupersededByExternalEmotion(t *testing.T) {
	f := newFixture(t, analyzer.Verdict{Emotion: lexicon.Sad, ReadyForMusic: true})
	f.moods.entered = make(chan struct{})
	f.moods.release = make(chan struct{})
	f.session.Start(context.Background(), nil)

	done := make(chan error, 1)
	go func() {
		done <- f.session.Submit(context.Background(), "hmm")
	}()
	<-f.moods.entered

	got := f.session.SetExternalEmotion(context.Background(), "surprise")
	assert.Equal(t, lexicon.Excited, got)
	close(f.moods.release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	snap := f.session.Snapshot()
	assert.Equal(t, Confirming, snap.Stage)
	require.NotNil(t, snap.Suggested)
	assert.Equal(t, lexicon.Excited, *snap.Suggested)
	assert.Equal(t, int32(0), f.searcher.callCount.Load())
}

func TestSetExternalEmotionRestartsConfirmedSession(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), nil)
	require.NoError(t, f.session.Submit(context.Background(), "I just got dumped"))
	require.Equal(t, Confirmed, f.session.Snapshot().Stage)

	got := f.session.SetExternalEmotion(context.Background(), "sparkly")

	assert.Equal(t, lexicon.Neutral, got)
	snap := f.session.Snapshot()
	assert.Equal(t, Confirming, snap.Stage)
	assert.False(t, snap.MoodConfirmed)
	texts := f.emitter.texts()
	assert.Equal(t, profile(t, lexicon.Neutral).ConfirmPrompt, texts[len(texts)-1])
}

func TestSubmitErrors(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())

	assert.ErrorIs(t, f.session.Submit(context.Background(), "   "), ErrEmptyUtterance)

	f.session.Abandon()
	assert.ErrorIs(t, f.session.Submit(context.Background(), "hi"), ErrClosed)
	assert.Empty(t, f.emitter.texts())
}

func TestMessageDeduplication(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	s := f.session

	s.ExternalEmotionFailed()
	s.ExternalEmotionFailed()
	assert.Equal(t, []string{msgImageFailed}, f.emitter.texts())

	s.say("a")
	s.say("b")
	s.say("c")
	s.say(msgImageFailed) // outside the trailing window
	s.add(SenderUser, "a")
	s.say("a") // new bot run after the user message

	assert.Equal(t, []string{msgImageFailed, "a", "b", "c", msgImageFailed, "a", "a"}, f.emitter.texts())

	snap := s.Snapshot()
	for i := 1; i < len(snap.Messages); i++ {
		assert.Greater(t, snap.Messages[i].ID, snap.Messages[i-1].ID)
	}
}

func TestPlaybackPassthroughs(t *testing.T) {
	f := newFixture(t, analyzer.FallbackVerdict())
	f.session.Start(context.Background(), nil)
	require.NoError(t, f.session.Submit(context.Background(), "play some jazz"))
	tracks := f.session.Snapshot().Tracks
	require.Len(t, tracks, 3)

	next, ok := f.session.Next()
	require.True(t, ok)
	assert.Equal(t, tracks[1].ID, next.ID)

	prev, ok := f.session.Previous()
	require.True(t, ok)
	assert.Equal(t, tracks[0].ID, prev.ID)

	sel, ok := f.session.Select(tracks[2].ID)
	require.True(t, ok)
	assert.Equal(t, tracks[2].ID, sel.ID)

	assert.True(t, f.session.TogglePlay())
	f.session.ReportPlaying()
	assert.True(t, f.session.Snapshot().Playing)

	ended, ok := f.session.ReportEnded()
	require.True(t, ok)
	assert.Equal(t, tracks[0].ID, ended.ID)

	_, handled := f.session.ReportFailure("stale-id", playback.FailureMedia)
	assert.False(t, handled)

	out, handled := f.session.ReportFailure(tracks[0].ID, playback.FailureMedia)
	require.True(t, handled)
	assert.True(t, out.Advanced)
	assert.Equal(t, tracks[1].ID, out.Track.ID)

	out, handled = f.session.ReportFailure(tracks[1].ID, playback.FailureAutoplayBlocked)
	require.True(t, handled)
	assert.False(t, out.Advanced)

	texts := f.emitter.texts()
	assert.Contains(t, texts, playback.NoticeSkipped)
	assert.Equal(t, playback.NoticeAutoplay, texts[len(texts)-1])
	assert.Len(t, f.emitter.current, 5)
	assert.Equal(t, []bool{true, true, false}, f.emitter.states)
}

type blockingSearcher struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSearcher) Search(_ context.Context, query string) ([]search.Record, error) {
	b.entered <- struct{}{}
	<-b.release
	return []search.Record{{"id": query, "name": "Slow", "media_url": "https://media.example/slow.mp3"}}, nil
}

func TestSnapshotDuringSlowSearch(t *testing.T) {
	lex := lexicon.Default()
	resolver := recommend.NewResolver(lex)
	searcher := &blockingSearcher{entered: make(chan struct{}), release: make(chan struct{})}
	fetcher := search.NewFetcher(searcher, search.NewMemoryStore(time.Hour), resolver)
	session := NewEngine(resolver, &mockAnalyzer{verdict: analyzer.FallbackVerdict()}, fetcher).NewSession(nil)
	session.Start(context.Background(), nil)

	done := make(chan error, 1)
	go func() {
		done <- session.Submit(context.Background(), "play some jazz")
	}()
	<-searcher.entered

	snapped := make(chan Snapshot, 1)
	go func() { snapped <- session.Snapshot() }()
	select {
	case snap := <-snapped:
		assert.True(t, snap.Busy)
		assert.Empty(t, snap.Tracks)
	case <-time.After(time.Second):
		t.Fatal("snapshot blocked while the search was outstanding")
	}

	_, moved := session.Next()
	assert.False(t, moved)

	close(searcher.release)
	require.NoError(t, <-done)
	assert.Equal(t, "jazz", session.Snapshot().Query)
}
