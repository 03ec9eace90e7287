// Package config reads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/wordle-daily/internal/daily"
)

// Config is the full server configuration.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// DBPath selects the SQLite store; empty keeps everything in memory.
	DBPath string `env:"DB_PATH"`

	AnswersFile string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `env:"WORDS_ALLOWED_FILE"`
	DailySalt   string `env:"DAILY_SALT"`
	TimeZone    string `env:"TIME_ZONE" envDefault:"UTC"`
	Epoch       string `env:"EPOCH"     envDefault:"2022-01-01"`
	GameName    string `env:"GAME_NAME" envDefault:"Wordle"`

	JWTSecret    string `env:"JWT_SECRET"    envDefault:"dev_secret_change_me"`
	CookieName   string `env:"COOKIE_NAME"   envDefault:"wordle_player"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Production   bool   `env:"PRODUCTION"`

	RevealDelay     time.Duration `env:"REVEAL_DELAY"     envDefault:"1600ms"`
	ShakeDuration   time.Duration `env:"SHAKE_DURATION"   envDefault:"500ms"`
	MessageDuration time.Duration `env:"MESSAGE_DURATION" envDefault:"2s"`
	// PlayerIdleTTL is how long an unused player's game stays in memory.
	PlayerIdleTTL time.Duration `env:"PLAYER_IDLE_TTL" envDefault:"30m"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Calendar(); err != nil {
		return Config{}, err
	}
	if cfg.RevealDelay < 0 || cfg.ShakeDuration < 0 || cfg.MessageDuration < 0 || cfg.PlayerIdleTTL < 0 {
		return Config{}, fmt.Errorf("config: durations must not be negative")
	}
	return cfg, nil
}

// Calendar builds the day-number calendar from TimeZone and Epoch.
func (c Config) Calendar() (daily.Calendar, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return daily.Calendar{}, fmt.Errorf("config: TIME_ZONE: %w", err)
	}
	epoch, err := time.Parse("2006-01-02", c.Epoch)
	if err != nil {
		return daily.Calendar{}, fmt.Errorf("config: EPOCH: %w", err)
	}
	return daily.NewCalendar(loc, epoch), nil
}
