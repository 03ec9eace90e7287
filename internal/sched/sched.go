// Package sched runs deferred, cancellable callbacks against an injected clock.
//
// Production code uses New(clockwork.NewRealClock()). Tests use Virtual, which
// only moves when Advance is called and runs due callbacks inline, in due-time
// order, on the caller's goroutine.
package sched

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a scheduled callback.
type Task interface {
	// Cancel stops the callback if it has not run yet. It reports whether
	// the call stopped it.
	Cancel() bool
}

// Scheduler creates deferred tasks and reports the current time.
type Scheduler interface {
	Now() time.Time
	After(d time.Duration, fn func()) Task
}

// New returns a Scheduler backed by clock. Callbacks run on their own
// goroutine, as with time.AfterFunc.
func New(clock clockwork.Clock) Scheduler {
	return clockScheduler{clock: clock}
}

type clockScheduler struct {
	clock clockwork.Clock
}

func (s clockScheduler) Now() time.Time { return s.clock.Now() }

func (s clockScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{t: s.clock.AfterFunc(d, fn)}
}

type timerTask struct {
	t clockwork.Timer
}

func (t timerTask) Cancel() bool { return t.t.Stop() }

// Virtual is a deterministic Scheduler for tests.
type Virtual struct {
	mu    sync.Mutex
	clock clockwork.FakeClock
	queue []*virtualTask
	seq   int
}

type virtualTask struct {
	v        *Virtual
	due      time.Time
	seq      int
	fn       func()
	canceled bool
	done     bool
}

// NewVirtual returns a Virtual scheduler whose clock starts at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{clock: clockwork.NewFakeClockAt(start)}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time { return v.clock.Now() }

// After queues fn to run once virtual time reaches Now()+d.
func (v *Virtual) After(d time.Duration, fn func()) Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTask{v: v, due: v.clock.Now().Add(d), seq: v.seq, fn: fn}
	v.queue = append(v.queue, t)
	return t
}

// Advance moves virtual time forward by d, running every task that falls due,
// including tasks scheduled by callbacks within the window.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.clock.Now().Add(d)
	for {
		next := v.popDue(target)
		if next == nil {
			break
		}
		if gap := next.due.Sub(v.clock.Now()); gap > 0 {
			v.clock.Advance(gap)
		}
		v.mu.Unlock()
		next.fn()
		v.mu.Lock()
	}
	if gap := target.Sub(v.clock.Now()); gap > 0 {
		v.clock.Advance(gap)
	}
	v.mu.Unlock()
}

// Pending returns the number of tasks still waiting to run.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

// popDue removes and returns the earliest live task due at or before target.
// Callers hold v.mu.
func (v *Virtual) popDue(target time.Time) *virtualTask {
	sort.SliceStable(v.queue, func(i, j int) bool {
		if v.queue[i].due.Equal(v.queue[j].due) {
			return v.queue[i].seq < v.queue[j].seq
		}
		return v.queue[i].due.Before(v.queue[j].due)
	})
	if len(v.queue) == 0 || v.queue[0].due.After(target) {
		return nil
	}
	t := v.queue[0]
	v.queue = v.queue[1:]
	t.done = true
	return t
}

func (t *virtualTask) Cancel() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	for i, q := range t.v.queue {
		if q == t {
			t.v.queue = append(t.v.queue[:i], t.v.queue[i+1:]...)
			break
		}
	}
	return true
}
