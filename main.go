// main.go
//
// Entry point for the daily word game server.
// Responsibilities:
//   - Load .env and environment configuration.
//   - Configure zerolog.
//   - Load word lists, open storage (SQLite when DB_PATH is set, else memory).
//   - Build the per-player game registry and start the HTTP server.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-daily/internal/config"
	"github.com/robalobadob/wordle-daily/internal/httpserver"
	"github.com/robalobadob/wordle-daily/internal/play"
	"github.com/robalobadob/wordle-daily/internal/sched"
	"github.com/robalobadob/wordle-daily/internal/store"
	"github.com/robalobadob/wordle-daily/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	src, err := words.Load(words.Options{
		AnswersFile: cfg.AnswersFile,
		AllowedFile: cfg.AllowedFile,
		Salt:        cfg.DailySalt,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	a, g := src.Stats()
	log.Info().Int("answers", a).Int("allowed", g).Msg("word lists loaded")

	backend, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer backend.Close()

	cal, _ := cfg.Calendar() // validated by config.Load
	games := play.NewRegistry(play.Options{
		GameName:        cfg.GameName,
		Calendar:        cal,
		Words:           src,
		Scheduler:       sched.New(clockwork.NewRealClock()),
		RevealDelay:     cfg.RevealDelay,
		ShakeDuration:   cfg.ShakeDuration,
		MessageDuration: cfg.MessageDuration,
	}, backend, cfg.PlayerIdleTTL)
	defer games.Close()

	srv := httpserver.New(cfg, games, src)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Info().Str("port", cfg.Port).Int("day", cal.Day(clockwork.NewRealClock().Now())).Msg("starting wordle-daily")
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
			stop()
		}
	}()
	<-ctx.Done()

	// Drain requests before the deferred registry and store closes run.
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
}

// openStore picks SQLite when path is set, otherwise an in-memory store.
func openStore(path string) (store.Backend, error) {
	if path == "" {
		log.Warn().Msg("DB_PATH not set; progress is kept in memory only")
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(path)
}
