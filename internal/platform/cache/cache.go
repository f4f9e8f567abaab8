// Package cache provides the injected TTL cache used by the role resolver.
// Implementations must be safe for concurrent use; entries expire by TTL only
// and are never invalidated explicitly.
package cache

import (
	"sync"
	"time"
)

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process Cache backed by a mutex-guarded map.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(item.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return item.value, true
}

func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Disabled is a Cache that stores nothing, for tests and for deployments
// that want every role lookup to hit the store.
type Disabled struct{}

func (Disabled) Get(string) (any, bool)         { return nil, false }
func (Disabled) Set(string, any, time.Duration) {}
func (Disabled) Delete(string)                  {}
