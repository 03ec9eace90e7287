package play

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle-daily/internal/daily"
	"github.com/robalobadob/wordle-daily/internal/game"
	"github.com/robalobadob/wordle-daily/internal/sched"
	"github.com/robalobadob/wordle-daily/internal/store"
	"github.com/robalobadob/wordle-daily/internal/words"
)

var (
	ctx = context.Background()
	t0  = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
)

const (
	reveal  = 1600 * time.Millisecond
	shake   = 500 * time.Millisecond
	message = 2 * time.Second
)

func testOptions(t *testing.T, v *sched.Virtual) Options {
	t.Helper()
	src, err := words.New([]string{"react"}, []string{"crane", "rebut", "slate", "peeps"}, "")
	if err != nil {
		t.Fatal(err)
	}
	nop := zerolog.Nop()
	return Options{
		GameName:        "Wordle",
		Calendar:        daily.NewCalendar(time.UTC, time.Time{}),
		Words:           src,
		Scheduler:       v,
		RevealDelay:     reveal,
		ShakeDuration:   shake,
		MessageDuration: message,
		Logger:          &nop,
	}
}

// newController builds a controller for player p1 on backend.
func newController(t *testing.T, v *sched.Virtual, backend store.Backend) *Controller {
	t.Helper()
	opts := testOptions(t, v)
	opts.Player = "p1"
	opts.Store = store.Namespace(backend, "p1")
	opts.Results = backend
	c, err := New(ctx, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func typeWord(c *Controller, w string) View {
	var v View
	for _, r := range w {
		v = c.Key(ctx, string(r))
	}
	return v
}

// guess types w, submits it and waits for the reveal.
func guess(c *Controller, v *sched.Virtual, w string) View {
	typeWord(c, w)
	c.Key(ctx, KeyEnter)
	v.Advance(reveal)
	return c.View()
}

func TestKeysEditActiveRow(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())

	view := typeWord(c, "rEa")
	if got := view.Board.Word(0); got != "rea" {
		t.Fatalf("row 0 = %q, want rea", got)
	}
	for _, k := range []string{"1", "Shift", "", "ab", "é"} {
		view = c.Key(ctx, k)
	}
	if got := view.Board.Word(0); got != "rea" {
		t.Fatalf("row 0 after junk keys = %q", got)
	}
	view = c.Key(ctx, KeyBackspace)
	if got := view.Board.Word(0); got != "re" {
		t.Fatalf("row 0 after Backspace = %q, want re", got)
	}
	view = typeWord(c, "actxy")
	if got := view.Board.Word(0); got != "react" {
		t.Fatalf("row 0 after overflow = %q, want react", got)
	}
	if view.Row != 0 || view.Status != game.StatusActive || view.ShakeRow != -1 {
		t.Errorf("view = %+v", view)
	}
}

func TestRejectShowsMessageAndShake(t *testing.T) {
	tests := []struct {
		typed string
		want  string
	}{
		{"rea", MsgIncompleteRow},
		{"zzzzz", MsgUnknownWord},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			v := sched.NewVirtual(t0)
			c := newController(t, v, store.NewMemoryStore())
			typeWord(c, tt.typed)
			view := c.Key(ctx, KeyEnter)
			if view.Message != tt.want || view.ShakeRow != 0 || view.Row != 0 {
				t.Fatalf("after Enter: message=%q shake=%d row=%d", view.Message, view.ShakeRow, view.Row)
			}
			if view.Board.Word(0) != tt.typed {
				t.Errorf("rejected row changed to %q", view.Board.Word(0))
			}

			v.Advance(shake)
			view = c.View()
			if view.ShakeRow != -1 || view.Message != tt.want {
				t.Fatalf("after shake: message=%q shake=%d", view.Message, view.ShakeRow)
			}
			v.Advance(message - shake)
			if got := c.View().Message; got != "" {
				t.Errorf("message after %v = %q", message, got)
			}
		})
	}
}

func TestNewerMessageReplacesTimer(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	c.Key(ctx, KeyEnter)
	v.Advance(time.Second)
	c.Key(ctx, KeyEnter)

	v.Advance(1500 * time.Millisecond)
	if got := c.View().Message; got != MsgIncompleteRow {
		t.Fatalf("message cleared by the replaced timer: %q", got)
	}
	v.Advance(500 * time.Millisecond)
	if got := c.View().Message; got != "" {
		t.Errorf("message = %q, want cleared", got)
	}
}

func TestInputLockedDuringReveal(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	typeWord(c, "crane")
	view := c.Key(ctx, KeyEnter)
	if !view.Revealing || view.Row != 1 {
		t.Fatalf("after submit: revealing=%v row=%d", view.Revealing, view.Row)
	}
	want := [game.Cols]game.LetterState{game.StatePresent, game.StatePresent, game.StateCorrect, game.StateAbsent, game.StatePresent}
	for i, tile := range view.Board[0] {
		if tile.State != want[i] {
			t.Errorf("tile %d = %s, want %s", i, tile.State, want[i])
		}
	}

	c.Key(ctx, "s")
	if got := c.View().Board.Word(1); got != "" {
		t.Fatalf("key accepted during reveal: row 1 = %q", got)
	}
	v.Advance(reveal)
	view = c.Key(ctx, "s")
	if view.Revealing || view.Board.Word(1) != "s" {
		t.Errorf("after reveal: revealing=%v row 1 = %q", view.Revealing, view.Board.Word(1))
	}
}

func TestWinFlow(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	c := newController(t, v, backend)
	guess(c, v, "crane")

	typeWord(c, "react")
	view := c.Key(ctx, KeyEnter)
	if view.Status != game.StatusWon || !view.Success || view.Row != 2 {
		t.Fatalf("after winning row: %+v", view)
	}
	if view.Message != "" || view.Grid != "" {
		t.Errorf("result shown before reveal: message=%q grid=%q", view.Message, view.Grid)
	}

	// Statistics are recorded at the transition, not at the reveal.
	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.GamesPlayed != 1 || st.GamesWon != 1 || st.CurrentStreak != 1 || st.GuessDistribution[1] != 1 {
		t.Errorf("stats = %+v", st)
	}

	v.Advance(reveal)
	view = c.View()
	if view.Message != "Magnificent" {
		t.Errorf("message = %q, want Magnificent", view.Message)
	}
	wantGrid := "Wordle " + strconv.Itoa(view.Day) + " 2/6\n\n🟨🟨🟩⬛🟨\n🟩🟩🟩🟩🟩"
	if view.Grid != wantGrid {
		t.Errorf("grid = %q, want %q", view.Grid, wantGrid)
	}
	if share, ok := c.Share(); !ok || share != wantGrid {
		t.Errorf("Share = %q, %v", share, ok)
	}

	// The final message stays up.
	v.Advance(time.Minute)
	if got := c.View().Message; got != "Magnificent" {
		t.Errorf("final message cleared: %q", got)
	}
	view = typeWord(c, "crane")
	if view.Board.Word(2) != "" {
		t.Errorf("input accepted after win")
	}

	hist, err := c.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || !hist[0].Won || hist[0].Attempts != 2 || hist[0].Grid != wantGrid || hist[0].Date != "2024-03-10" {
		t.Errorf("history = %+v", hist)
	}
}

func TestLossFlow(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	for i := 0; i < game.Rows; i++ {
		guess(c, v, "crane")
	}
	view := c.View()
	if view.Status != game.StatusLost || view.Success || view.Row != game.Rows {
		t.Fatalf("after six misses: %+v", view)
	}
	if view.Message != "REACT" {
		t.Errorf("message = %q, want REACT", view.Message)
	}
	header := "Wordle " + strconv.Itoa(view.Day) + " X/6\n\n"
	if !strings.HasPrefix(view.Grid, header) || strings.Count(view.Grid, "\n") != 1+game.Rows {
		t.Errorf("grid = %q", view.Grid)
	}
	st, _ := c.Stats(ctx)
	if st.GamesPlayed != 1 || st.GamesWon != 0 || st.CurrentStreak != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestWinMessagesByRow(t *testing.T) {
	for row, want := range winMessages {
		v := sched.NewVirtual(t0)
		c := newController(t, v, store.NewMemoryStore())
		for i := 0; i < row; i++ {
			guess(c, v, "slate")
		}
		if got := guess(c, v, "react").Message; got != want {
			t.Errorf("win on row %d: message = %q, want %q", row+1, got, want)
		}
	}
}

func TestShareBeforeEnd(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	guess(c, v, "crane")
	if _, ok := c.Share(); ok {
		t.Errorf("Share available for an active game")
	}
}

func TestRestoresSameDay(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	c := newController(t, v, backend)
	guess(c, v, "crane")
	typeWord(c, "sl")
	c.Close()

	v.Advance(3 * time.Hour)
	view := newController(t, v, backend).View()
	if view.Row != 1 || view.Board.Word(0) != "crane" || view.Board.Word(1) != "sl" {
		t.Fatalf("restored view: row=%d rows=%q,%q", view.Row, view.Board.Word(0), view.Board.Word(1))
	}
	if view.LetterStates["a"] != game.StateCorrect || view.LetterStates["n"] != game.StateAbsent {
		t.Errorf("letter states = %v", view.LetterStates)
	}
}

func TestRestoredFinishedGameIsNotRecounted(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	c := newController(t, v, backend)
	guess(c, v, "react")
	c.Close()

	c = newController(t, v, backend)
	view := c.View()
	if view.Status != game.StatusWon || view.Grid == "" {
		t.Fatalf("restored finished game: status=%s grid=%q", view.Status, view.Grid)
	}
	c.Key(ctx, KeyEnter)
	st, _ := c.Stats(ctx)
	if st.GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, want 1", st.GamesPlayed)
	}
}

func TestNextDayStartsFresh(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	c := newController(t, v, backend)
	guess(c, v, "react")
	day := c.View().Day
	c.Close()

	v.Advance(24 * time.Hour)
	view := newController(t, v, backend).View()
	if view.Day != day+1 || view.Row != 0 || view.Status != game.StatusActive || len(view.LetterStates) != 0 {
		t.Errorf("next day view = %+v", view)
	}
}

func TestRefreshRollsOver(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	typeWord(c, "cra")
	c.Key(ctx, KeyEnter)
	day := c.View().Day

	c.Refresh(ctx)
	if c.View().Day != day {
		t.Fatalf("Refresh changed day without rollover")
	}
	v.Advance(15 * time.Hour)
	c.Refresh(ctx)
	view := c.View()
	if view.Day != day+1 || view.Board.Word(0) != "" || view.Message != "" || view.ShakeRow != -1 {
		t.Errorf("after rollover: %+v", view)
	}
}

func TestCorruptSnapshotStartsFresh(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	ns := store.Namespace(backend, "p1")
	_ = ns.Put(ctx, store.KeyLastPlayed, []byte(t0.Format(time.RFC3339Nano)))

	for _, raw := range []string{`{not json`, `{"answer":"react","day":-4}`, `{"answer":"REACT"}`} {
		_ = ns.Put(ctx, store.KeyGameState, []byte(raw))
		view := newController(t, v, backend).View()
		if view.Row != 0 || view.Status != game.StatusActive {
			t.Errorf("snapshot %s: view = %+v", raw, view)
		}
	}
}

func TestSnapshotForAnotherAnswerStartsFresh(t *testing.T) {
	v := sched.NewVirtual(t0)
	day := daily.NewCalendar(time.UTC, time.Time{}).Day(t0)

	for _, tt := range []struct {
		answer  string
		restore bool
	}{
		{"crane", false}, // today's day, but the word list or salt changed
		{"react", true},
	} {
		backend := store.NewMemoryStore()
		ns := store.Namespace(backend, "p1")
		s := game.NewSession(day, tt.answer)
		for _, r := range "sla" {
			s.AppendLetter(r)
		}
		raw, err := json.Marshal(s.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		_ = ns.Put(ctx, store.KeyGameState, raw)
		_ = ns.Put(ctx, store.KeyLastPlayed, []byte(t0.Format(time.RFC3339Nano)))

		view := newController(t, v, backend).View()
		if got := view.Board.Word(0) == "sla"; got != tt.restore {
			t.Errorf("answer %s: restored = %v, want %v (row 0 = %q)", tt.answer, got, tt.restore, view.Board.Word(0))
		}
		if view.Day != day {
			t.Errorf("answer %s: day = %d, want %d", tt.answer, view.Day, day)
		}
	}
}

func TestNewWritesNothingUntilFirstKey(t *testing.T) {
	v := sched.NewVirtual(t0)
	backend := store.NewMemoryStore()
	ns := store.Namespace(backend, "p1")
	c := newController(t, v, backend)
	c.View()
	for _, key := range []string{store.KeyGameState, store.KeyLastPlayed, store.KeyStatistics} {
		if _, err := ns.Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s written by New: err = %v", key, err)
		}
	}

	c.Key(ctx, "r")
	for _, key := range []string{store.KeyGameState, store.KeyLastPlayed} {
		if _, err := ns.Get(ctx, key); err != nil {
			t.Errorf("%s after first key: %v", key, err)
		}
	}
}

func TestRegistryEvictsIdleControllers(t *testing.T) {
	v := sched.NewVirtual(t0)
	r := NewRegistry(testOptions(t, v), store.NewMemoryStore(), time.Hour)
	t.Cleanup(r.Close)

	alice, _ := r.Get(ctx, "alice")
	alice.Key(ctx, "c")
	bob, _ := r.Get(ctx, "bob")
	_, cancel := bob.Subscribe()
	defer cancel()

	v.Advance(2 * time.Hour)
	if _, err := r.Get(ctx, "carol"); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (bob is subscribed, carol is new)", r.Len())
	}
	if again, _ := r.Get(ctx, "bob"); again != bob {
		t.Errorf("subscribed controller was replaced")
	}

	back, _ := r.Get(ctx, "alice")
	if back == alice {
		t.Fatalf("idle controller was not evicted")
	}
	if got := back.View().Board.Word(0); got != "c" {
		t.Errorf("alice's row after eviction = %q, want c", got)
	}
	if got := alice.Key(ctx, "r").Board.Word(0); got != "c" {
		t.Errorf("evicted controller still accepts keys: %q", got)
	}
}

func TestRegistryConcurrentGet(t *testing.T) {
	v := sched.NewVirtual(t0)
	r := NewRegistry(testOptions(t, v), store.NewMemoryStore(), time.Hour)
	t.Cleanup(r.Close)

	const n = 16
	got := make(chan *Controller, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := r.Get(ctx, "dave")
			if err != nil {
				t.Error(err)
			}
			got <- c
		}()
	}
	wg.Wait()
	close(got)

	first := <-got
	for c := range got {
		if c != first {
			t.Fatalf("concurrent Get returned different controllers")
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestPlayersAreIsolated(t *testing.T) {
	v := sched.NewVirtual(t0)
	r := NewRegistry(testOptions(t, v), store.NewMemoryStore(), time.Hour)
	t.Cleanup(r.Close)

	a, err := r.Get(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Get(ctx, "bob")
	again, _ := r.Get(ctx, "alice")
	if a != again || a == b || r.Len() != 2 {
		t.Fatalf("registry returned wrong controllers")
	}
	typeWord(a, "react")
	a.Key(ctx, KeyEnter)

	if b.View().Board.Word(0) != "" {
		t.Errorf("bob sees alice's board")
	}
	if st, _ := b.Stats(ctx); st.GamesPlayed != 0 {
		t.Errorf("bob's stats = %+v", st)
	}
	if hist, _ := b.History(ctx, 5); len(hist) != 0 {
		t.Errorf("bob's history = %+v", hist)
	}
}

func TestSubscribeReceivesDeferredUpdates(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	updates, cancel := c.Subscribe()
	defer cancel()

	c.Key(ctx, KeyEnter)
	if got := latest(updates); got.ShakeRow != 0 || got.Message != MsgIncompleteRow {
		t.Fatalf("update after reject = %+v", got)
	}
	v.Advance(message)
	if got := latest(updates); got.ShakeRow != -1 || got.Message != "" {
		t.Fatalf("update after timers = %+v", got)
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Errorf("channel open after cancel")
	}
}

func TestCloseStopsTimersAndSubscriptions(t *testing.T) {
	v := sched.NewVirtual(t0)
	c := newController(t, v, store.NewMemoryStore())
	updates, _ := c.Subscribe()
	c.Key(ctx, KeyEnter)
	c.Close()
	if v.Pending() != 0 {
		t.Errorf("pending tasks after Close = %d", v.Pending())
	}
	for range updates {
	}
	c.Close()
}

// latest drains ch and returns the last view received.
func latest(ch <-chan View) View {
	var v View
	for {
		select {
		case got := <-ch:
			v = got
		default:
			return v
		}
	}
}
