// internal/game/share.go
//
// Share text for a finished board.
// Responsibilities:
//   - Render the header line with the game name, day label and score.
//   - Render one emoji row per used board row.

package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Share grid glyphs.
const (
	GlyphCorrect = "🟩"
	GlyphPresent = "🟨"
	GlyphOther   = "⬛"
)

// ShareGrid renders a finished board as shareable text:
//
//	<name> <dayLabel> <rowsUsed|X>/6
//
//	🟩⬛🟨⬛⬛
//	🟩🟩🟩🟩🟩
//
// rowsUsed above Rows prints X and all Rows rows. The output depends only on
// the arguments.
func ShareGrid(name string, board Board, rowsUsed int, dayLabel string) string {
	score := strconv.Itoa(rowsUsed)
	if rowsUsed > Rows {
		score = "X"
	}
	n := rowsUsed
	if n > Rows {
		n = Rows
	}
	if n < 0 {
		n = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s/%d\n\n", name, dayLabel, score, Rows)
	for r := 0; r < n; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for _, t := range board[r] {
			switch t.State {
			case StateCorrect:
				b.WriteString(GlyphCorrect)
			case StatePresent:
				b.WriteString(GlyphPresent)
			default:
				b.WriteString(GlyphOther)
			}
		}
	}
	return b.String()
}
