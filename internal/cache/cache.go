// Package cache is a small TTL cache in front of expensive aggregate reads.
// Values are opaque, independently-computed blobs; a Set fully replaces the
// prior entry and last-writer-wins is fine.
package cache

import (
	"sync"
	"time"

	"dealview/internal/metrics"
)

// Standard TTLs for the cached endpoints.
const (
	FiltersTTL = 5 * time.Minute
	StatsTTL   = 60 * time.Second
)

// Store is the result-cache contract shared by the in-memory and Redis
// backends.
type Store interface {
	// Get returns the cached value only while it is unexpired.
	Get(key string) ([]byte, bool)
	// Set stores a value with an absolute expiry ttl from now.
	Set(key string, value []byte, ttl time.Duration)
	// Invalidate removes one entry.
	Invalidate(key string)
	// Reset removes every entry.
	Reset()
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the default in-process Store. Entries are immutable once
// written and evicted lazily: an expired entry is dropped by the read that
// finds it.
type Memory struct {
	mu    sync.RWMutex
	store map[string]entry
	now   func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{store: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.store[key]
	m.mu.RUnlock()
	if !ok {
		metrics.RecordCacheEvent(key, "miss")
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		// Recheck under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := m.store[key]; ok && !m.now().Before(cur.expiresAt) {
			delete(m.store, key)
		}
		m.mu.Unlock()
		metrics.RecordCacheEvent(key, "expired")
		return nil, false
	}
	metrics.RecordCacheEvent(key, "hit")
	return e.value, true
}

func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.store[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.store, key)
	m.mu.Unlock()
}

func (m *Memory) Reset() {
	m.mu.Lock()
	m.store = make(map[string]entry)
	m.mu.Unlock()
}
