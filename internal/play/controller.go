// internal/play/controller.go
//
// Controller drives one player's daily game.
// Responsibilities:
//   - Restore today's session from storage, or start a fresh one.
//   - Translate key events into game.Session transitions.
//   - Persist the session snapshot after every transition.
//   - Record statistics and the result log when a game ends.
//   - Hold transient view state (message, shake row, share grid) and clear it
//     with deferred scheduler tasks.
//
// All methods are safe for concurrent use; transitions are serialized by one
// mutex, so HTTP handlers, WebSocket readers and scheduler callbacks never
// interleave within a transition.
package play

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-daily/internal/daily"
	"github.com/robalobadob/wordle-daily/internal/game"
	"github.com/robalobadob/wordle-daily/internal/sched"
	"github.com/robalobadob/wordle-daily/internal/stats"
	"github.com/robalobadob/wordle-daily/internal/store"
)

// Control keys. Lowercase aliases "submit" and "deletelast" are accepted too.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
)

// User-facing messages.
const (
	MsgIncompleteRow = "Not enough letters"
	MsgUnknownWord   = "Not in word list"
)

// winMessages is indexed by the winning row.
var winMessages = [game.Rows]string{"Genius", "Magnificent", "Impressive", "Splendid", "Great", "Phew"}

// Words is the word source a Controller needs.
type Words interface {
	game.Dictionary
	AnswerForDay(day int) string
}

// Options configures a Controller.
type Options struct {
	Player    string
	GameName  string
	Calendar  daily.Calendar
	Words     Words
	Store     store.Store     // already scoped to the player
	Results   store.ResultLog // optional
	Scheduler sched.Scheduler

	RevealDelay     time.Duration
	ShakeDuration   time.Duration
	MessageDuration time.Duration

	Logger *zerolog.Logger // defaults to the global logger
}

// View is everything a client needs to draw the game.
type View struct {
	Day          int               `json:"day"`
	Board        game.Board        `json:"board"`
	Row          int               `json:"currentRowIndex"`
	ShakeRow     int               `json:"shakeRowIndex"`
	Message      string            `json:"message"`
	LetterStates game.LetterStates `json:"letterStates"`
	Success      bool              `json:"success"`
	Status       game.Status       `json:"status"`
	Grid         string            `json:"grid,omitempty"`
	Revealing    bool              `json:"revealing"`
}

// Controller is the per-player game state store.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	log     zerolog.Logger
	tracker *stats.Tracker

	session   *game.Session
	shakeRow  int
	message   string
	grid      string
	revealing bool
	closed    bool

	tasks   map[string]sched.Task
	subs    map[int]chan View
	nextSub int
}

// New builds a Controller and loads today's session.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Words == nil || opts.Store == nil || opts.Scheduler == nil {
		return nil, errors.New("play: Words, Store and Scheduler are required")
	}
	if opts.GameName == "" {
		opts.GameName = "Wordle"
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("player", opts.Player).Logger()

	c := &Controller{
		opts:     opts,
		log:      logger,
		tracker:  stats.NewTracker(opts.Store, opts.Calendar.Day, logger),
		shakeRow: -1,
		tasks:    make(map[string]sched.Task),
		subs:     make(map[int]chan View),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = c.load(ctx, opts.Scheduler.Now())
	if c.session.Status.Terminal() {
		c.grid = c.share()
	}
	// Nothing is written until the first transition.
	return c, nil
}

// Key applies one input event and returns the resulting view.
// Letters a–z (either case), KeyEnter and KeyBackspace are understood;
// anything else, and any input during the reveal or after the game ended,
// is ignored.
func (c *Controller) Key(ctx context.Context, key string) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.viewLocked()
	}
	c.rollover(ctx)
	if c.revealing {
		return c.viewLocked()
	}

	changed := false
	switch strings.ToLower(key) {
	case "enter", "submit":
		changed = c.submit(ctx)
	case "backspace", "deletelast":
		changed = c.session.RemoveLetter()
		if changed {
			c.persist(ctx)
		}
	default:
		if len(key) == 1 {
			changed = c.session.AppendLetter(rune(key[0]))
			if changed {
				c.persist(ctx)
			}
		}
	}
	if changed {
		c.publish()
	}
	return c.viewLocked()
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Refresh starts a new session if the calendar day has changed.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.rollover(ctx) {
		c.publish()
	}
}

// Stats returns the player's statistics.
func (c *Controller) Stats(ctx context.Context) (stats.Statistics, error) {
	return c.tracker.Get(ctx)
}

// Share returns the share grid once the game has ended.
func (c *Controller) Share() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Status.Terminal() {
		return "", false
	}
	return c.share(), true
}

// History returns the player's recent completed games.
func (c *Controller) History(ctx context.Context, limit int) ([]store.Result, error) {
	if c.opts.Results == nil {
		return []store.Result{}, nil
	}
	return c.opts.Results.Results(ctx, c.opts.Player, limit)
}

// Subscribe returns a channel receiving a View after every change, including
// changes made by deferred tasks. Slow readers only miss intermediate views.
func (c *Controller) Subscribe() (<-chan View, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan View, 4)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Busy reports whether the controller has subscribers or a pending reveal.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) > 0 || c.revealing
}

// Close cancels pending tasks and closes subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for slot, t := range c.tasks {
		t.Cancel()
		delete(c.tasks, slot)
	}
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// ---------------------------------------------------------------------------
// transitions (callers hold c.mu)

// submit handles KeyEnter and reports whether the view changed.
func (c *Controller) submit(ctx context.Context) bool {
	sub, err := c.session.SubmitRow(c.opts.Words)
	switch {
	case errors.Is(err, game.ErrIncompleteRow):
		c.reject(MsgIncompleteRow)
		return true
	case errors.Is(err, game.ErrUnknownWord):
		c.reject(MsgUnknownWord)
		return true
	case err != nil:
		return false
	}

	c.log.Debug().Int("day", c.session.Day).Int("row", sub.Row).Str("status", string(sub.Status)).Msg("row submitted")
	c.persist(ctx)
	if sub.Status.Terminal() {
		c.finish(ctx, sub)
	}

	c.revealing = true
	c.schedule("reveal", c.opts.RevealDelay, func() {
		c.revealing = false
		if sub.Status.Terminal() {
			c.grid = c.share()
			c.cancel("message")
			if sub.Status == game.StatusWon {
				c.message = winMessages[sub.Row]
			} else {
				c.message = strings.ToUpper(c.session.Answer)
			}
		}
	})
	return true
}

// finish records the completed game. It runs inside the transition so the
// result survives even if the reveal never fires.
func (c *Controller) finish(ctx context.Context, sub game.Submission) {
	now := c.opts.Scheduler.Now()
	won := sub.Status == game.StatusWon

	var err error
	if won {
		_, err = c.tracker.RecordWin(ctx, sub.Attempts, now)
	} else {
		_, err = c.tracker.RecordLoss(ctx)
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("record statistics")
	}

	if c.opts.Results != nil {
		r := store.Result{
			Player:     c.opts.Player,
			Day:        c.session.Day,
			Date:       c.opts.Calendar.DateKey(now),
			Won:        won,
			Attempts:   sub.Attempts,
			Grid:       c.share(),
			FinishedAt: now,
		}
		if err := c.opts.Results.RecordResult(ctx, r); err != nil {
			c.log.Warn().Err(err).Msg("record result")
		}
	}
	c.log.Info().Int("day", c.session.Day).Bool("won", won).Int("attempts", sub.Attempts).Msg("game finished")
}

// reject shows a transient message and shakes the active row.
func (c *Controller) reject(msg string) {
	c.shakeRow = c.session.Row
	c.schedule("shake", c.opts.ShakeDuration, func() { c.shakeRow = -1 })
	c.message = msg
	c.schedule("message", c.opts.MessageDuration, func() { c.message = "" })
}

// rollover replaces the session when the day has changed. It reports whether
// it did.
func (c *Controller) rollover(ctx context.Context) bool {
	if c.revealing {
		return false
	}
	now := c.opts.Scheduler.Now()
	day := c.opts.Calendar.Day(now)
	if day == c.session.Day {
		return false
	}
	c.log.Info().Int("from", c.session.Day).Int("to", day).Msg("new day")
	for slot := range c.tasks {
		c.cancel(slot)
	}
	c.session = game.NewSession(day, c.opts.Words.AnswerForDay(day))
	c.shakeRow, c.message, c.grid = -1, "", ""
	c.persist(ctx)
	return true
}

// schedule runs fn under c.mu after d, replacing any pending task in slot.
func (c *Controller) schedule(slot string, d time.Duration, fn func()) {
	c.cancel(slot)
	var task sched.Task
	task = c.opts.Scheduler.After(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.tasks[slot] != task {
			return
		}
		delete(c.tasks, slot)
		fn()
		c.publish()
	})
	c.tasks[slot] = task
}

func (c *Controller) cancel(slot string) {
	if t, ok := c.tasks[slot]; ok {
		t.Cancel()
		delete(c.tasks, slot)
	}
}

func (c *Controller) share() string {
	return c.session.Share(c.opts.GameName, strconv.Itoa(c.session.Day))
}

func (c *Controller) viewLocked() View {
	return View{
		Day:          c.session.Day,
		Board:        c.session.Board,
		Row:          c.session.Row,
		ShakeRow:     c.shakeRow,
		Message:      c.message,
		LetterStates: c.session.Letters.Clone(),
		Success:      c.session.Success(),
		Status:       c.session.Status,
		Grid:         c.grid,
		Revealing:    c.revealing,
	}
}

// publish sends the current view to every subscriber, replacing a queued
// view when a subscriber's buffer is full.
func (c *Controller) publish() {
	if len(c.subs) == 0 {
		return
	}
	v := c.viewLocked()
	for _, ch := range c.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// ---------------------------------------------------------------------------
// persistence (callers hold c.mu)

// load returns today's session from storage, or a fresh one. Missing,
// unreadable or stale snapshots are never an error.
func (c *Controller) load(ctx context.Context, now time.Time) *game.Session {
	day := c.opts.Calendar.Day(now)
	answer := c.opts.Words.AnswerForDay(day)
	fresh := func(reason string) *game.Session {
		c.log.Debug().Int("day", day).Str("reason", reason).Msg("starting fresh session")
		return game.NewSession(day, answer)
	}

	raw, err := c.opts.Store.Get(ctx, store.KeyLastPlayed)
	if err != nil {
		return fresh("no last-played")
	}
	last, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return fresh("bad last-played")
	}
	if c.opts.Calendar.Day(last) != day {
		return fresh("last played another day")
	}

	raw, err = c.opts.Store.Get(ctx, store.KeyGameState)
	if err != nil {
		return fresh("no snapshot")
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fresh("corrupt snapshot")
	}
	if snap.Day != day || snap.Answer != answer {
		return fresh("stale snapshot")
	}
	s, err := game.Restore(snap)
	if err != nil {
		c.log.Debug().Err(err).Msg("invalid snapshot")
		return fresh("invalid snapshot")
	}
	c.log.Debug().Int("day", day).Int("row", s.Row).Str("status", string(s.Status)).Msg("session restored")
	return s
}

// persist writes the snapshot and the last-played time. Failures are logged;
// the in-memory game carries on.
func (c *Controller) persist(ctx context.Context) {
	raw, err := json.Marshal(c.session.Snapshot())
	if err != nil {
		c.log.Warn().Err(err).Msg("encode snapshot")
		return
	}
	if err := c.opts.Store.Put(ctx, store.KeyGameState, raw); err != nil {
		c.log.Warn().Err(err).Msg("save snapshot")
		return
	}
	now := c.opts.Scheduler.Now().Format(time.RFC3339Nano)
	if err := c.opts.Store.Put(ctx, store.KeyLastPlayed, []byte(now)); err != nil {
		c.log.Warn().Err(err).Msg("save last-played")
	}
}
