package cache

import (
	"context"
	"sync"
	"time"
)

// entry holds a stored value with the time it was written.
type entry struct {
	value   string
	written time.Time
}

// Memory is a thread-safe in-process translation memory with optional TTL.
type Memory struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-process translation memory. A ttl of 0 keeps
// entries for the lifetime of the process.
func NewMemory(ttl time.Duration) *Memory {
	if ttl < 0 {
		ttl = 0
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements TranslationCache.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false
	}
	if m.expired(e) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set implements TranslationCache.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, written: m.now()}
	return nil
}

// Len returns the number of entries (including expired ones).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// Snapshot returns all live entries as key-value pairs.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.entries))
	for k, e := range m.entries {
		if m.expired(e) {
			continue
		}
		out[k] = e.value
	}
	return out
}

func (m *Memory) expired(e entry) bool {
	return m.ttl > 0 && m.now().Sub(e.written) > m.ttl
}

// Verify Memory implements TranslationCache
var _ TranslationCache = (*Memory)(nil)
