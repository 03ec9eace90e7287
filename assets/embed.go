// assets/embed.go
//
// Embedded default word lists. Used when no WORDS_*_FILE overrides are set.
package assets

import (
	"embed"
	"io"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// Answers opens the embedded answer list.
func Answers() (io.ReadCloser, error) {
	return FS.Open("answers.txt")
}

// Allowed opens the embedded list of extra acceptable guesses.
func Allowed() (io.ReadCloser, error) {
	return FS.Open("allowed.txt")
}
