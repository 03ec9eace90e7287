// internal/game/session.go
//
// Session is the state machine for one player's puzzle on one day.
//
// States: active (row 0..5), won, lost.
//   - AppendLetter fills the left-most empty slot of the active row.
//   - RemoveLetter clears the right-most filled slot of the active row.
//   - SubmitRow evaluates a full row; on acceptance the row is frozen and the
//     session either wins, loses (after the 6th row) or moves to the next row.
//
// Once won or lost every input is a no-op. Row counts submitted rows once the
// session is terminal, so it always lies in 0..Rows.
package game

import (
	"errors"
	"fmt"
)

// Status is the coarse session state.
type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// Terminal reports whether no more input is accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

var (
	// ErrIncompleteRow is returned when submitting a row with empty slots.
	ErrIncompleteRow = errors.New("not enough letters")
	// ErrUnknownWord is returned when the submitted word is not acceptable.
	ErrUnknownWord = errors.New("not in word list")
	// ErrGameOver is returned when submitting after the session ended.
	ErrGameOver = errors.New("game finished")
)

// Session holds the state of a single daily puzzle.
type Session struct {
	Day     int
	Answer  string
	Board   Board
	Row     int
	Status  Status
	Letters LetterStates
}

// Submission describes an accepted row.
type Submission struct {
	Row      int // index of the row just submitted
	States   [Cols]LetterState
	Status   Status
	Attempts int // rows used so far, including this one
}

// NewSession starts a fresh puzzle.
func NewSession(day int, answer string) *Session {
	return &Session{
		Day:     day,
		Answer:  answer,
		Board:   NewBoard(),
		Status:  StatusActive,
		Letters: LetterStates{},
	}
}

// AppendLetter places ch (a–z, either case) in the next empty slot.
// It reports whether the board changed.
func (s *Session) AppendLetter(ch rune) bool {
	if s.Status != StatusActive {
		return false
	}
	switch {
	case ch >= 'A' && ch <= 'Z':
		ch += 'a' - 'A'
	case ch >= 'a' && ch <= 'z':
	default:
		return false
	}
	row := &s.Board[s.Row]
	for i := range row {
		if row[i].Letter == "" {
			row[i] = Tile{Letter: string(ch), State: StateInitial}
			return true
		}
	}
	return false
}

// RemoveLetter clears the last filled slot of the active row.
// It reports whether the board changed.
func (s *Session) RemoveLetter() bool {
	if s.Status != StatusActive {
		return false
	}
	row := &s.Board[s.Row]
	for i := Cols - 1; i >= 0; i-- {
		if row[i].Letter != "" {
			row[i] = Tile{State: StateInitial}
			return true
		}
	}
	return false
}

// SubmitRow evaluates the active row. On ErrIncompleteRow or ErrUnknownWord
// the session is left exactly as it was and the row stays editable.
func (s *Session) SubmitRow(dict Dictionary) (Submission, error) {
	if s.Status != StatusActive {
		return Submission{}, ErrGameOver
	}
	guess := s.Board.Word(s.Row)
	if len(guess) != Cols {
		return Submission{}, ErrIncompleteRow
	}
	ev := Evaluate(guess, s.Answer, s.Letters, dict)
	if !ev.Accepted {
		return Submission{}, ErrUnknownWord
	}

	row := s.Row
	for i := range s.Board[row] {
		s.Board[row][i].State = ev.States[i]
	}
	s.Letters = ev.LetterStates
	s.Row++

	switch {
	case allCorrect(ev.States):
		s.Status = StatusWon
	case s.Row >= Rows:
		s.Status = StatusLost
	}
	return Submission{Row: row, States: ev.States, Status: s.Status, Attempts: s.Row}, nil
}

// Success reports whether the puzzle was solved.
func (s *Session) Success() bool { return s.Status == StatusWon }

// Share renders the share grid. Lost sessions report X/6 with all six rows.
func (s *Session) Share(name, dayLabel string) string {
	used := s.Row
	if s.Status == StatusLost {
		// Rows+1 renders X/6, never the 6/6 of a last-row win.
		used = Rows + 1
	}
	return ShareGrid(name, s.Board, used, dayLabel)
}

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	Board           Board        `json:"board"`
	CurrentRowIndex int          `json:"currentRowIndex"`
	LetterStates    LetterStates `json:"letterStates"`
	Answer          string       `json:"answer"`
	Day             int          `json:"day"`
}

// Snapshot captures the session for storage.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Board:           s.Board,
		CurrentRowIndex: s.Row,
		LetterStates:    s.Letters.Clone(),
		Answer:          s.Answer,
		Day:             s.Day,
	}
}

// Restore rebuilds a Session from a snapshot, deriving its status from the
// board. Snapshots that could not have been produced by a Session are rejected.
func Restore(snap Snapshot) (*Session, error) {
	if len(snap.Answer) != Cols || !isLower(snap.Answer) {
		return nil, fmt.Errorf("restore: invalid answer %q", snap.Answer)
	}
	if snap.CurrentRowIndex < 0 || snap.CurrentRowIndex > Rows {
		return nil, fmt.Errorf("restore: row %d out of range", snap.CurrentRowIndex)
	}
	if err := snap.LetterStates.Validate(); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	for r, row := range snap.Board {
		submitted := r < snap.CurrentRowIndex
		for c, t := range row {
			if t.Letter != "" && !IsLetter(t.Letter) {
				return nil, fmt.Errorf("restore: bad letter %q at %d,%d", t.Letter, r, c)
			}
			if !t.State.Valid() {
				return nil, fmt.Errorf("restore: bad state %q at %d,%d", t.State, r, c)
			}
			if submitted && (t.Letter == "" || t.State == StateInitial) {
				return nil, fmt.Errorf("restore: submitted row %d incomplete", r)
			}
			if !submitted && t.State != StateInitial {
				return nil, fmt.Errorf("restore: unsubmitted row %d has state", r)
			}
		}
	}

	s := &Session{
		Day:     snap.Day,
		Answer:  snap.Answer,
		Board:   snap.Board,
		Row:     snap.CurrentRowIndex,
		Status:  StatusActive,
		Letters: snap.LetterStates.Clone(),
	}
	if s.Row > 0 {
		var last [Cols]LetterState
		for i, t := range s.Board[s.Row-1] {
			last[i] = t.State
		}
		switch {
		case allCorrect(last):
			s.Status = StatusWon
		case s.Row == Rows:
			s.Status = StatusLost
		}
	}
	if s.Status == StatusActive {
		for r := 0; r < s.Row-1; r++ {
			if s.Board.Word(r) == s.Answer {
				return nil, fmt.Errorf("restore: row %d solved but game continued", r)
			}
		}
	}
	return s, nil
}
