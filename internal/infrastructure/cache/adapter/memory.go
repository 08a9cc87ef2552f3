package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/cache/port"
)

// MemoryCache is an in-process port.Cache used in development and tests.
// Expiry is checked lazily on Get; the clock is injectable so tests can
// assert TTL behavior without sleeping.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// NewMemoryCache constructs an empty MemoryCache using the real clock.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock constructs a MemoryCache with the given clock.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

var _ port.Cache = (*MemoryCache)(nil)

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", port.ErrMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", port.ErrMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Del(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := m.entries[key]; ok {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryCache) Ping(ctx context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }
