package redis

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is the key count above which Incr drops every expired key.
const sweepThreshold = 10000

// MemoryCounter is an in-process Counter with Redis INCR/EXPIRE/TTL semantics.
// Counts are per instance and do not survive a restart.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	counts  map[string]int64
	expires map[string]time.Time
}

var _ Counter = (*MemoryCounter)(nil)

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		now:     time.Now,
		counts:  map[string]int64{},
		expires: map[string]time.Time{},
	}
}

func (m *MemoryCounter) evict(key string, now time.Time) {
	if exp, found := m.expires[key]; found && !now.Before(exp) {
		delete(m.counts, key)
		delete(m.expires, key)
	}
}

func (m *MemoryCounter) sweep(now time.Time) {
	for key := range m.expires {
		m.evict(key, now)
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evict(key, now)
	if len(m.counts) > sweepThreshold {
		m.sweep(now)
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *MemoryCounter) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.counts[key]; found {
		m.expires[key] = m.now().Add(expiration)
	}
	return nil
}

// TTL mirrors Redis: -2 for a missing key, -1 for a key without expiry.
func (m *MemoryCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evict(key, now)
	if _, found := m.counts[key]; !found {
		return -2, nil
	}
	exp, found := m.expires[key]
	if !found {
		return -1, nil
	}
	return exp.Sub(now), nil
}

// Len reports how many keys are tracked.
func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counts)
}
