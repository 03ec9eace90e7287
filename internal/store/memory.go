// internal/store/memory.go
//
// In-memory implementation of Backend.
// Used when no DB_PATH is configured, and in tests.
//
// Characteristics:
//   - Values are copied on Put and Get, so callers can't alias stored bytes.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
)

// memory is an in-memory map-based Backend implementation.
type memory struct {
	mu      sync.RWMutex      // guards data and results
	data    map[string][]byte // keyed by full key
	results map[string]map[int]Result
}

// NewMemoryStore constructs a new in-memory Backend.
func NewMemoryStore() Backend {
	return &memory{
		data:    make(map[string][]byte),
		results: make(map[string]map[int]Result),
	}
}

// Get looks up a key.
func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrNotFound
}

// Put adds or replaces a key.
func (m *memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// RecordResult stores r unless the player already has a result for r.Day.
func (m *memory) RecordResult(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	days, ok := m.results[r.Player]
	if !ok {
		days = make(map[int]Result)
		m.results[r.Player] = days
	}
	if _, dup := days[r.Day]; !dup {
		days[r.Day] = r
	}
	return nil
}

// Results returns up to limit results, newest day first.
func (m *memory) Results(ctx context.Context, player string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, len(m.results[player]))
	for _, r := range m.results[player] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
