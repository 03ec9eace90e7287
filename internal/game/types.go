// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - LetterState: per-tile / per-letter feedback (initial/absent/present/correct).
//   - Tile, Board: the 6x5 grid owned by a Session.
//   - LetterStates: strongest state seen per letter, for keyboard colouring.

package game

import "fmt"

const (
	Rows = 6
	Cols = 5
)

// LetterState represents the evaluation result for a tile or a letter.
// Possible values:
//   - "initial": not evaluated yet (empty slot or unsubmitted row).
//   - "absent":  letter is not in the answer (after accounting for duplicates).
//   - "present": letter is in the answer, in a different position.
//   - "correct": letter is in the answer at this position.
type LetterState string

const (
	StateInitial LetterState = "initial"
	StateAbsent  LetterState = "absent"
	StatePresent LetterState = "present"
	StateCorrect LetterState = "correct"
)

// Rank orders states by priority: correct > present > absent > initial.
// Unknown values rank below initial.
func (s LetterState) Rank() int {
	switch s {
	case StateCorrect:
		return 3
	case StatePresent:
		return 2
	case StateAbsent:
		return 1
	case StateInitial:
		return 0
	}
	return -1
}

// Valid reports whether s is one of the four known states.
func (s LetterState) Valid() bool { return s.Rank() >= 0 }

// Tile is one letter slot. Letter is "" while empty.
type Tile struct {
	Letter string      `json:"letter"`
	State  LetterState `json:"state"`
}

// Board is the full grid, row-major.
type Board [Rows][Cols]Tile

// NewBoard returns an empty board with every tile in the initial state.
func NewBoard() Board {
	var b Board
	for r := range b {
		for c := range b[r] {
			b[r][c] = Tile{State: StateInitial}
		}
	}
	return b
}

// Word returns the letters of row r concatenated ("" for empty slots).
func (b Board) Word(r int) string {
	buf := make([]byte, 0, Cols)
	for _, t := range b[r] {
		buf = append(buf, t.Letter...)
	}
	return string(buf)
}

// LetterStates maps a lowercase letter to the strongest state observed for it.
type LetterStates map[string]LetterState

// Clone returns an independent copy (never nil).
func (ls LetterStates) Clone() LetterStates {
	out := make(LetterStates, len(ls))
	for k, v := range ls {
		out[k] = v
	}
	return out
}

// Upgrade records st for letter only if it outranks what is already stored.
func (ls LetterStates) Upgrade(letter string, st LetterState) {
	if st.Rank() > ls[letter].Rank() {
		ls[letter] = st
	}
}

// Validate enforces the key domain (a–z) and value domain.
func (ls LetterStates) Validate() error {
	for k, v := range ls {
		if !IsLetter(k) {
			return fmt.Errorf("letter states: invalid key %q", k)
		}
		if !v.Valid() || v == StateInitial {
			return fmt.Errorf("letter states: invalid state %q for %q", v, k)
		}
	}
	return nil
}

// IsLetter reports whether s is exactly one lowercase ASCII letter.
func IsLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}
