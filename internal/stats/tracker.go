// internal/stats/tracker.go
//
// Persistent wrapper around Statistics.
// Responsibilities:
//   - Load the record from store.KeyStatistics (missing or corrupt reads as zero).
//   - Apply a win or loss and save it back under one lock.

package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle-daily/internal/store"
)

// Tracker persists one player's Statistics under store.KeyStatistics.
// Each Record call loads, mutates and saves under a single lock.
type Tracker struct {
	mu    sync.Mutex
	store store.Store
	day   DayFunc
	log   zerolog.Logger
}

// NewTracker returns a Tracker over s.
func NewTracker(s store.Store, day DayFunc, log zerolog.Logger) *Tracker {
	return &Tracker{store: s, day: day, log: log}
}

// Get returns the current statistics. A missing or unreadable record reads as
// zero statistics.
func (t *Tracker) Get(ctx context.Context) (Statistics, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// RecordWin records a win in attempts rows and returns the updated record.
func (t *Tracker) RecordWin(ctx context.Context, attempts int, now time.Time) (Statistics, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.load(ctx)
	if err != nil {
		return s, err
	}
	if err := s.RecordWin(attempts, now, t.day); err != nil {
		return s, err
	}
	return s, t.save(ctx, s)
}

// RecordLoss records a loss and returns the updated record.
func (t *Tracker) RecordLoss(ctx context.Context) (Statistics, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.load(ctx)
	if err != nil {
		return s, err
	}
	s.RecordLoss()
	return s, t.save(ctx, s)
}

func (t *Tracker) load(ctx context.Context) (Statistics, error) {
	var s Statistics
	raw, err := t.store.Get(ctx, store.KeyStatistics)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("load statistics: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		t.log.Warn().Err(err).Msg("corrupt statistics record; starting over")
		return Statistics{}, nil
	}
	return s, nil
}

func (t *Tracker) save(ctx context.Context, s Statistics) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := t.store.Put(ctx, store.KeyStatistics, raw); err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}
	return nil
}
