// Package stats tracks a player's win/loss counters and streaks.
//
// Statistics change only when a game completes: RecordWin or RecordLoss.
// Streaks are computed on day numbers (see daily.Calendar), not on raw
// timestamps, so a win late at night and one early the next morning count as
// consecutive days in the player's time zone.
package stats

import (
	"fmt"
	"math"
	"time"
)

// MaxAttempts is the number of rows on the board.
const MaxAttempts = 6

// DayFunc maps an instant to its day number.
type DayFunc func(time.Time) int

// Statistics is the persisted record.
type Statistics struct {
	GamesPlayed       int              `json:"gamesPlayed"`
	GamesWon          int              `json:"gamesWon"`
	CurrentStreak     int              `json:"currentStreak"`
	MaxStreak         int              `json:"maxStreak"`
	GuessDistribution [MaxAttempts]int `json:"guessDistribution"`
	LastWin           *time.Time       `json:"lastWin"`
}

// RecordWin counts a win in attempts rows at now.
func (s *Statistics) RecordWin(attempts int, now time.Time, day DayFunc) error {
	if attempts < 1 || attempts > MaxAttempts {
		return fmt.Errorf("stats: attempts must be between 1 and %d, got %d", MaxAttempts, attempts)
	}

	if s.LastWin == nil {
		s.CurrentStreak = 1
	} else {
		switch diff := day(now) - day(*s.LastWin); {
		case diff == 1:
			s.CurrentStreak++
		case diff > 1:
			s.CurrentStreak = 1
		}
	}
	if s.CurrentStreak > s.MaxStreak {
		s.MaxStreak = s.CurrentStreak
	}

	s.GamesPlayed++
	s.GamesWon++
	s.GuessDistribution[attempts-1]++
	won := now
	s.LastWin = &won
	return nil
}

// RecordLoss counts a loss and breaks the streak.
func (s *Statistics) RecordLoss() {
	s.GamesPlayed++
	s.CurrentStreak = 0
}

// WinRate is the rounded percentage of games won; 0 before any game.
func (s Statistics) WinRate() int {
	if s.GamesPlayed == 0 {
		return 0
	}
	return int(math.Round(float64(s.GamesWon) / float64(s.GamesPlayed) * 100))
}
