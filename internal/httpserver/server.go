// internal/httpserver/server.go
//
// HTTP server wiring for the daily word game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Player endpoints (anonymous player cookie): /game, /game/key, /game/ws,
//     /stats, /share, /history.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every player route runs behind withPlayer, which issues a signed player
//     token on first visit. There are no accounts.
//   - /game/ws is mounted outside the request timeout; the socket lives as
//     long as the client keeps it open.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-daily/internal/config"
	"github.com/robalobadob/wordle-daily/internal/play"
)

// WordCounter reports word list sizes for /debug/words.
type WordCounter interface {
	Stats() (answersCount int, acceptableCount int)
}

// Server bundles the router, per-player controllers and settings.
type Server struct {
	r     *chi.Mux
	http  *http.Server
	cfg   config.Config
	games *play.Registry
	words WordCounter
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, games *play.Registry, words WordCounter) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, games: games, words: words, now: time.Now}
	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 10 * time.Second}

	// --- middleware ---
	s.r.Use(chimw.RequestID)          // add X-Request-ID
	s.r.Use(chimw.RealIP)             // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)          // recover from panics
	s.r.Use(jsonContentType)          // default JSON responses
	s.r.Use(s.cors(cfg.ClientOrigin)) // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-daily","endpoints":["/health","GET /game","POST /game/key","/game/ws","/stats","/share","/history"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.words.Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
	})

	// Player routes with a bounded handler time.
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(s.withPlayer)
		r.Get("/game", s.handleGame)
		r.Post("/game/key", s.handleKey)
		r.Get("/stats", s.handleStats)
		r.Get("/share", s.handleShare)
		r.Get("/history", s.handleHistory)
	})

	// Long-lived socket.
	s.r.With(s.withPlayer).Get("/game/ws", s.handleSocket)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	log.Info().Str("addr", addr).Msg("listening")
	return s.http.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Upgraded sockets are not tracked; closing the registry ends them.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func (s *Server) cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
