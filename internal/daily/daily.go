// internal/daily/daily.go
//
// Calendar helpers for the daily puzzle.
// Responsibilities:
//   - Map a wall-clock instant to a day number (days since a fixed epoch).
//   - Produce YYYY-MM-DD keys for logs and the result log.
//   - Derive a salted, deterministic word index for a day number.
//
// Day numbers are computed on civil dates in the configured location, never on
// raw durations, so DST shifts and late-night UTC offsets cannot move a player
// into the wrong puzzle.
package daily

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultEpoch is day zero.
var DefaultEpoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// Calendar converts instants to day numbers for one location.
type Calendar struct {
	Location *time.Location
	Epoch    time.Time // only the Y/M/D part is used
}

// NewCalendar returns a Calendar; nil loc means UTC, zero epoch means DefaultEpoch.
func NewCalendar(loc *time.Location, epoch time.Time) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	return Calendar{Location: loc, Epoch: epoch}
}

// Day returns the number of calendar days between the epoch and t's civil date.
func (c Calendar) Day(t time.Time) int {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	epoch := c.Epoch
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	y, m, d := t.In(loc).Date()
	ey, em, ed := epoch.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(start) / (24 * time.Hour))
}

// DateKey returns t's civil date in the calendar's location as YYYY-MM-DD.
func (c Calendar) DateKey(t time.Time) string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index in [0, answersLen) for a day number.
// An empty salt gives day mod answersLen, so consecutive days walk the list in
// order; a non-empty salt hashes the day with keyed BLAKE2b first.
func WordIndex(day int, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	if salt == "" {
		i := day % answersLen
		if i < 0 {
			i += answersLen
		}
		return i
	}
	key := blake2b.Sum256([]byte(salt))
	h, err := blake2b.New256(key[:])
	if err != nil {
		// Only reachable with a key over 64 bytes.
		return WordIndex(day, "", answersLen)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(day)))
	h.Write(buf[:])
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}
