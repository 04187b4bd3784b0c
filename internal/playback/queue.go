// Package playback drives a circular queue over a search result set.
package playback

import (
	"sync"

	"github.com/justestif/go-mood-music/internal/search"
)

// FailureKind classifies a playback failure reported by the client.
type FailureKind string

const (
	// FailureMedia means the track's media could not be loaded or decoded.
	FailureMedia FailureKind = "media"
	// FailureAutoplayBlocked means the client refused to start playback
	// without a user gesture.
	FailureAutoplayBlocked FailureKind = "autoplay_blocked"
)

// User-facing notices.
const (
	NoticeSkipped        = "Couldn't play that song. Let me try another one."
	NoticeAutoplay       = "Please click the play button to start the music (browser autoplay restriction)."
	NoticeExhausted      = "None of these tracks would play, so I have no results right now. Tell me a bit more and I'll look for something else."
	NoticeNothingToRetry = "There's nothing in the queue to play yet."
)

// Outcome describes what Failure did.
type Outcome struct {
	Advanced  bool
	Exhausted bool
	Notice    string
	Track     search.Track // current track after the failure was handled
}

// Queue holds the active track list and the current index. The index is a
// valid position, or -1 when the list is empty. Movement wraps around.
type Queue struct {
	mu       sync.Mutex
	tracks   []search.Track
	index    int
	playing  bool
	failures int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{index: -1}
}

// Set replaces the track list and moves to the first track.
func (q *Queue) Set(tracks []search.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = append([]search.Track(nil), tracks...)
	q.failures = 0
	q.playing = false
	if len(q.tracks) == 0 {
		q.index = -1
	} else {
		q.index = 0
	}
}

// Current returns the track at the current index.
func (q *Queue) Current() (search.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current()
}

// Next moves to (index+1) mod len. No-op on an empty queue.
func (q *Queue) Next() (search.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failures = 0
	return q.step(1)
}

// Previous moves to (index-1+len) mod len. No-op on an empty queue.
func (q *Queue) Previous() (search.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failures = 0
	return q.step(-1)
}

// Select moves to the track with id. Returns false if it is not queued.
func (q *Queue) Select(id string) (search.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, t := range q.tracks {
		if t.ID == id {
			q.index = i
			q.failures = 0
			return t, true
		}
	}
	return search.Track{}, false
}

// Index returns the current index, or -1 when empty.
func (q *Queue) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Tracks returns a copy of the queued tracks.
func (q *Queue) Tracks() []search.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]search.Track(nil), q.tracks...)
}

// SetPlaying records the client's play state.
func (q *Queue) SetPlaying(playing bool) {
	q.mu.Lock()
	q.playing = playing && len(q.tracks) > 0
	q.mu.Unlock()
}

// Playing reports whether the current track is playing.
func (q *Queue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Started marks the current track as playing and clears the failure run.
func (q *Queue) Started() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return
	}
	q.playing = true
	q.failures = 0
}

// Ended advances after the current track finished.
func (q *Queue) Ended() (search.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failures = 0
	return q.step(1)
}

// Failure handles a playback failure of the current track. Media failures
// advance exactly once; once every queued track has failed in a row the
// queue is exhausted and playback stops. Autoplay refusals never advance.
func (q *Queue) Failure(kind FailureKind) Outcome {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		q.playing = false
		return Outcome{Exhausted: true, Notice: NoticeNothingToRetry}
	}

	if kind == FailureAutoplayBlocked {
		q.playing = false
		t, _ := q.current()
		return Outcome{Notice: NoticeAutoplay, Track: t}
	}

	q.failures++
	if q.failures >= len(q.tracks) {
		q.playing = false
		t, _ := q.current()
		return Outcome{Exhausted: true, Notice: NoticeExhausted, Track: t}
	}

	t, _ := q.step(1)
	return Outcome{Advanced: true, Notice: NoticeSkipped, Track: t}
}

func (q *Queue) current() (search.Track, bool) {
	if q.index < 0 || q.index >= len(q.tracks) {
		return search.Track{}, false
	}
	return q.tracks[q.index], true
}

func (q *Queue) step(delta int) (search.Track, bool) {
	n := len(q.tracks)
	if n == 0 {
		return search.Track{}, false
	}
	q.index = ((q.index+delta)%n + n) % n
	return q.tracks[q.index], true
}
