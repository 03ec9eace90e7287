// internal/words/words.go
//
// Word source for the daily puzzle.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or the embedded defaults.
//   - Maintain a lookup set of acceptable guesses (answers ∪ allowed).
//   - Map a day number to that day's answer.
//
// Word Lists:
//   - "answers": canonical solutions, in order (exactly 5 lowercase letters).
//   - "allowed": extra valid guesses (answers are always acceptable too).
//
// Loading behavior (Load):
//   1. If AnswersFile and AllowedFile are both set, read each.
//   2. If only AllowedFile is set, use that file for both.
//   3. Otherwise use assets/answers.txt and assets/allowed.txt.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); anything else is dropped.
//   • Lists are normalized to lowercase; '#' lines are comments.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/robalobadob/wordle-daily/assets"
	"github.com/robalobadob/wordle-daily/internal/daily"
)

// Length is the number of letters in every word.
const Length = 5

// ErrNoAnswers is returned when the answers list ends up empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Options selects where word lists come from and how days map to answers.
type Options struct {
	AnswersFile string
	AllowedFile string
	Salt        string // optional; see daily.WordIndex
}

// Source is an immutable word source. Safe for concurrent use.
type Source struct {
	answers    []string
	acceptable map[string]struct{}
	salt       string
}

// Load builds a Source according to opts.
func Load(opts Options) (*Source, error) {
	var ansList, allowList []string
	var err error

	switch {
	case opts.AnswersFile != "" && opts.AllowedFile != "":
		if ansList, err = readWordFile(opts.AnswersFile); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(opts.AllowedFile); err != nil {
			return nil, err
		}

	case opts.AnswersFile == "" && opts.AllowedFile != "":
		if allowList, err = readWordFile(opts.AllowedFile); err != nil {
			return nil, err
		}
		ansList = allowList

	default:
		if ansList, err = readEmbedded(assets.Answers); err != nil {
			return nil, err
		}
		if allowList, err = readEmbedded(assets.Allowed); err != nil {
			return nil, err
		}
	}
	return New(ansList, allowList, opts.Salt)
}

// New builds a Source from in-memory lists. Entries are normalized the same way
// file lines are.
func New(answers, allowed []string, salt string) (*Source, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, ErrNoAnswers
	}
	set := toSet(ans)
	for _, w := range normalize(allowed) {
		set[w] = struct{}{}
	}
	return &Source{answers: ans, acceptable: set, salt: salt}, nil
}

// AnswerForDay returns the answer for a day number. Same day, same word.
func (s *Source) AnswerForDay(day int) string {
	return s.answers[daily.WordIndex(day, s.salt, len(s.answers))]
}

// IsAcceptable reports whether w is a valid guess (answers ∪ allowed).
func (s *Source) IsAcceptable(w string) bool {
	_, ok := s.acceptable[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, acceptable).
func (s *Source) Stats() (answersCount int, acceptableCount int) {
	return len(s.answers), len(s.acceptable)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	return readLines(f)
}

func readEmbedded(open func() (io.ReadCloser, error)) ([]string, error) {
	f, err := open()
	if err != nil {
		return nil, fmt.Errorf("open embedded word list: %w", err)
	}
	defer f.Close()
	return readLines(f)
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize lowercases, trims and keeps only valid 5-letter alphabetic words,
// dropping comments and duplicates while preserving order.
func normalize(lines []string) []string {
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		w := strings.TrimSpace(strings.ToLower(line))
		if strings.HasPrefix(w, "#") || len(w) != Length || !IsAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// IsAlpha reports whether s is all lowercase ASCII letters.
func IsAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
