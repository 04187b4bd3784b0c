package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/metrics"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 24 * time.Hour

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ChatSession is a conversation plus the hub that streams its events.
type ChatSession struct {
	ID        string
	Session   *conversation.Session
	Hub       *Hub
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (c *ChatSession) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *ChatSession) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// SessionStore keeps live chat sessions in memory.
type SessionStore struct {
	engine *conversation.Engine
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStore)

// WithTTL sets the idle TTL.
func WithTTL(d time.Duration) StoreOption {
	return func(s *SessionStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithStoreClock sets the clock used for expiry.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a store that builds sessions from engine.
func NewSessionStore(engine *conversation.Engine, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		engine:   engine,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*ChatSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session, optionally seeded with an initial emotion.
func (s *SessionStore) Create(ctx context.Context, initial *lexicon.Emotion) *ChatSession {
	hub := NewHub()
	now := s.now()
	cs := &ChatSession{
		ID:        uuid.NewString(),
		Session:   s.engine.NewSession(hub),
		Hub:       hub,
		CreatedAt: now,
		lastSeen:  now,
	}
	cs.Session.Start(ctx, initial)

	s.mu.Lock()
	s.sessions[cs.ID] = cs
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return cs
}

// Get returns the session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*ChatSession, error) {
	s.mu.RLock()
	cs, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if now.Sub(cs.idleSince()) > s.ttl {
		s.Delete(id)
		return nil, ErrSessionNotFound
	}
	cs.touch(now)
	return cs, nil
}

// Delete abandons and removes a session. It reports whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	cs, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}
	cs.Session.Abandon()
	cs.Hub.Close()
	metrics.ActiveSessions.Set(float64(n))
	return true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeExpired removes sessions idle longer than the TTL and returns how many
// were removed. Sessions with a turn in flight are kept.
func (s *SessionStore) PurgeExpired() int {
	now := s.now()

	s.mu.Lock()
	var expired []*ChatSession
	for id, cs := range s.sessions {
		if now.Sub(cs.idleSince()) > s.ttl && !cs.Session.Busy() {
			expired = append(expired, cs)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, cs := range expired {
		cs.Session.Abandon()
		cs.Hub.Close()
	}
	metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}
