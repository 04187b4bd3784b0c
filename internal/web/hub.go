package web

import (
	"sync"

	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/search"
)

// Event types streamed to clients.
const (
	EventSnapshot      = "snapshot"
	EventMessage       = "message"
	EventSearchResults = "search_results"
	EventCurrentTrack  = "current_track"
	EventPlayback      = "playback_state"
	EventError         = "error"
)

// listenerBuffer is the per-listener queue depth.
const listenerBuffer = 64

// Event is one JSON frame on the event stream.
type Event struct {
	Type     string                 `json:"type"`
	Message  *conversation.Message  `json:"message,omitempty"`
	Tracks   []search.Track         `json:"tracks,omitempty"`
	Track    *search.Track          `json:"track,omitempty"`
	Playing  *bool                  `json:"playing,omitempty"`
	Snapshot *conversation.Snapshot `json:"snapshot,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Listener receives events from a Hub.
type Listener struct {
	C    chan Event
	done chan struct{}
	once sync.Once
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// offer queues ev without blocking. Events for a full listener are dropped.
func (l *Listener) offer(ev Event) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.C <- ev:
		return true
	default:
		return false
	}
}

func (l *Listener) close() {
	l.once.Do(func() { close(l.done) })
}

// Hub fans session events out to websocket listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	closed    bool
}

var _ conversation.Emitter = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[*Listener]struct{})}
}

// Subscribe registers a listener. Subscribing to a closed hub returns a
// listener that is already done.
func (h *Hub) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan Event, listenerBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		l.close()
		return l
	}
	h.listeners[l] = struct{}{}
	return l
}

// Unsubscribe removes l.
func (h *Hub) Unsubscribe(l *Listener) {
	h.mu.Lock()
	delete(h.listeners, l)
	h.mu.Unlock()
	l.close()
}

// ListenerCount returns the number of subscribed listeners.
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close unsubscribes every listener. Later publishes are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for l := range h.listeners {
		l.close()
		delete(h.listeners, l)
	}
}

func (h *Hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for l := range h.listeners {
		l.offer(ev)
	}
}

// AppendMessage implements conversation.Emitter.
func (h *Hub) AppendMessage(m conversation.Message) {
	h.publish(Event{Type: EventMessage, Message: &m})
}

// SetSearchResults implements conversation.Emitter.
func (h *Hub) SetSearchResults(tracks []search.Track) {
	h.publish(Event{Type: EventSearchResults, Tracks: tracks})
}

// SetCurrentTrack implements conversation.Emitter.
func (h *Hub) SetCurrentTrack(t search.Track) {
	h.publish(Event{Type: EventCurrentTrack, Track: &t})
}

// PlaybackStateChanged implements conversation.Emitter.
func (h *Hub) PlaybackStateChanged(playing bool) {
	h.publish(Event{Type: EventPlayback, Playing: &playing})
}
