package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CachePrefix namespaces search entries in shared key/value stores.
const CachePrefix = "search:v1:"

// DefaultCacheTTL bounds how long a cached result set is served.
const DefaultCacheTTL = 24 * time.Hour

// Store is the key/value cache collaborator. A missing key is reported as
// found=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheKey normalizes query into a store key: lower case, trimmed, inner
// whitespace collapsed.
func CacheKey(query string) string {
	return CachePrefix + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryStore is an in-process Store with lazy TTL expiry.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. A ttl of zero or less uses
// DefaultCacheTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the value stored under key if it has not expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().Sub(e.storedAt) > m.ttl {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (m *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.entries {
		if e.storedAt.Before(cutoff) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}
