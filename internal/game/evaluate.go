// internal/game/evaluate.go
//
// Guess evaluation.
//
// Score implements the three-pass algorithm:
//   Pass 1: exact matches are correct; their answer letters leave the pool.
//   Pass 2: left to right, each unmarked letter still in the pool is present and
//           consumes the first unconsumed occurrence.
//   Pass 3: everything left is absent.
//
// The order matters for repeated letters: a letter in the guess can never
// claim more marks than it has occurrences in the answer.
package game

// Dictionary answers whether a word may be guessed.
type Dictionary interface {
	IsAcceptable(word string) bool
}

// Evaluation is the result of evaluating one full row.
type Evaluation struct {
	Accepted     bool
	States       [Cols]LetterState
	LetterStates LetterStates
}

// consumed marks a pool slot already matched.
const consumed byte = 0

// Evaluate scores guess against answer and merges the result into a copy of
// prev. A guess that is neither the answer nor in dict is rejected and prev is
// returned untouched.
func Evaluate(guess, answer string, prev LetterStates, dict Dictionary) Evaluation {
	if len(guess) != Cols || !isLower(guess) {
		return Evaluation{LetterStates: prev}
	}
	if guess != answer && (dict == nil || !dict.IsAcceptable(guess)) {
		return Evaluation{LetterStates: prev}
	}

	states := Score(answer, guess)
	next := prev.Clone()
	for i, st := range states {
		next.Upgrade(guess[i:i+1], st)
	}
	return Evaluation{Accepted: true, States: states, LetterStates: next}
}

// Score returns per-position states for guess against answer. Both are
// expected to be Cols lowercase letters; missing positions score absent.
func Score(answer, guess string) [Cols]LetterState {
	var res [Cols]LetterState
	var pool [Cols]byte
	copy(pool[:], answer)

	// First pass: exact matches.
	for i := 0; i < Cols && i < len(guess); i++ {
		if guess[i] == pool[i] {
			res[i] = StateCorrect
			pool[i] = consumed
		}
	}

	// Second pass: present elsewhere, consuming left to right.
	for i := 0; i < Cols && i < len(guess); i++ {
		if res[i] != "" {
			continue
		}
		for j := 0; j < Cols; j++ {
			if pool[j] != consumed && pool[j] == guess[i] {
				res[i] = StatePresent
				pool[j] = consumed
				break
			}
		}
	}

	// Third pass: the rest are absent.
	for i := range res {
		if res[i] == "" {
			res[i] = StateAbsent
		}
	}
	return res
}

// allCorrect returns true if every state is StateCorrect.
func allCorrect(states [Cols]LetterState) bool {
	for _, s := range states {
		if s != StateCorrect {
			return false
		}
	}
	return true
}

// isLower checks that a string consists only of lowercase a–z.
func isLower(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
