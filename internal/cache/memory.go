package cache

import (
	"context"
	"sync"
	"time"

	"github.com/medishare/medlabel/internal/entity"
)

type memoryEntry struct {
	rec       entity.Record
	expiresAt time.Time
}

// Memory is an in-process Store. Used when no cache path is configured and
// as the reference behavior for the sqlite store.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (entity.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return entity.Record{}, false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return entity.Record{}, false, nil
	}
	return e.rec, true, nil
}

func (m *Memory) Put(_ context.Context, key string, rec entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{rec: rec, expiresAt: m.now().Add(m.ttl)}
	// opportunistic sweep; the map never grows unbounded between puts
	for k, e := range m.entries {
		if m.now().After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
