// internal/play/registry.go
//
// Registry of live controllers, one per player.
// Responsibilities:
//   - Create a player's Controller on first use, scoped to its own key prefix.
//   - Refresh the controller for the current day on every lookup.
//   - Evict controllers idle for longer than the idle TTL. Controllers with an
//     open subscription or a pending reveal are kept.
//
// An evicted player loses nothing: the next lookup rebuilds the controller
// from storage.

package play

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wordle-daily/internal/store"
)

// DefaultIdleTTL is used when NewRegistry is given a non-positive TTL.
const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	c        *Controller
	lastUsed time.Time
}

// Registry hands out one Controller per player, creating them on first use.
type Registry struct {
	mu        sync.Mutex
	base      Options
	backend   store.Backend
	idle      time.Duration
	entries   map[string]*entry
	lastSweep time.Time
}

// NewRegistry returns a Registry whose controllers share base (Player, Store
// and Results are filled in per player) and keep their data in backend.
// Controllers unused for idle are closed and dropped.
func NewRegistry(base Options, backend store.Backend, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTTL
	}
	return &Registry{
		base:    base,
		backend: backend,
		idle:    idle,
		entries: make(map[string]*entry),
	}
}

// Get returns the controller for player, refreshed for the current day.
func (r *Registry) Get(ctx context.Context, player string) (*Controller, error) {
	now := r.base.Scheduler.Now()

	r.mu.Lock()
	r.sweep(now)
	e, ok := r.entries[player]
	if ok {
		e.lastUsed = now
	}
	r.mu.Unlock()

	if !ok {
		c, err := r.build(ctx, player)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if e, ok = r.entries[player]; ok {
			// Another request got there first.
			e.lastUsed = now
			r.mu.Unlock()
			c.Close()
		} else {
			e = &entry{c: c, lastUsed: now}
			r.entries[player] = e
			r.mu.Unlock()
		}
	}

	e.c.Refresh(ctx)
	return e.c, nil
}

func (r *Registry) build(ctx context.Context, player string) (*Controller, error) {
	opts := r.base
	opts.Player = player
	opts.Store = store.Namespace(r.backend, player)
	opts.Results = r.backend
	return New(ctx, opts)
}

// sweep closes idle controllers. It runs at most once per quarter TTL.
// Callers hold r.mu.
func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.idle/4 {
		return
	}
	r.lastSweep = now
	for id, e := range r.entries {
		if now.Sub(e.lastUsed) < r.idle || e.c.Busy() {
			continue
		}
		e.c.Close()
		delete(r.entries, id)
	}
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close closes every controller.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		e.c.Close()
		delete(r.entries, id)
	}
}
