// internal/store/store.go
//
// Durable storage for player progress.
//
// The game keeps three values per player, mirroring what a browser would keep
// in local storage:
//   - KeyGameState:  the session snapshot (JSON).
//   - KeyLastPlayed: RFC3339 timestamp of the last save.
//   - KeyStatistics: the statistics record (JSON), kept indefinitely.
//
// Implementations: in-memory (memory.go) and SQLite (sqlite.go). Both also
// implement ResultLog, a history of completed games.
package store

import (
	"context"
	"errors"
	"time"
)

// Storage keys.
const (
	KeyGameState  = "game-state"
	KeyLastPlayed = "last-played"
	KeyStatistics = "statistics"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("store: not found")

// Store defines a byte-oriented key/value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
}

// Result is one completed game.
type Result struct {
	Player     string    `json:"-"`
	Day        int       `json:"day"`
	Date       string    `json:"date"` // YYYY-MM-DD in the game's time zone
	Won        bool      `json:"won"`
	Attempts   int       `json:"attempts"` // rows used
	Grid       string    `json:"grid"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ResultLog records completed games. One result per player and day; later
// writes for the same day are ignored.
type ResultLog interface {
	RecordResult(ctx context.Context, r Result) error
	// Results returns the player's most recent results, newest day first.
	Results(ctx context.Context, player string, limit int) ([]Result, error)
}

// Backend is a Store that also keeps a ResultLog.
type Backend interface {
	Store
	ResultLog
	Close() error
}

// Namespace scopes every key of s under prefix.
func Namespace(s Store, prefix string) Store {
	return &namespaced{s: s, prefix: prefix + ":"}
}

type namespaced struct {
	s      Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.s.Get(ctx, n.prefix+key)
}

func (n *namespaced) Put(ctx context.Context, key string, value []byte) error {
	return n.s.Put(ctx, n.prefix+key, value)
}
