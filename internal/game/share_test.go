package game

import "testing"

func TestShareGridWin(t *testing.T) {
	s := NewSession(7, "react")
	play(t, s, "rebut")
	play(t, s, "react")

	want := "Wordle 7 2/6\n\n🟩🟩⬛⬛🟩\n🟩🟩🟩🟩🟩"
	if got := s.Share("Wordle", "7"); got != want {
		t.Errorf("Share =\n%s\nwant\n%s", got, want)
	}
	// Reproducible from the board alone.
	if got := ShareGrid("Wordle", s.Board, 2, "7"); got != want {
		t.Errorf("ShareGrid differs from Session.Share")
	}
}

func TestShareGridLoss(t *testing.T) {
	s := NewSession(8, "sheep")
	for i := 0; i < Rows; i++ {
		play(t, s, "peeps")
	}
	got := s.Share("Wordle", "8")
	line := "🟨🟨🟩⬛🟨"
	want := "Wordle 8 X/6\n\n" + line + "\n" + line + "\n" + line + "\n" + line + "\n" + line + "\n" + line
	if got != want {
		t.Errorf("Share =\n%s\nwant\n%s", got, want)
	}
}

func TestShareGridEmpty(t *testing.T) {
	if got := ShareGrid("Wordle", NewBoard(), 0, "1"); got != "Wordle 1 0/6\n\n" {
		t.Errorf("ShareGrid = %q", got)
	}
}
