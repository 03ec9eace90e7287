// internal/httpserver/routes_game.go
//
// HTTP routes for the player's daily game.
//   - GET  /game      → current view (board, letter states, message, status)
//   - POST /game/key  → apply one key event {"key":"a"|"Enter"|"Backspace"}
//   - GET  /stats     → statistics plus win rate
//   - GET  /share     → share grid once the game has ended (404 before)
//   - GET  /history   → recent completed games, newest first (?limit=N)
//
// Every handler resolves the caller's controller through the registry, which
// also rolls the session over when the day has changed.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-daily/internal/play"
	"github.com/robalobadob/wordle-daily/internal/stats"
)

const (
	defaultHistory = 20
	maxHistory     = 100
)

// controller resolves the caller's controller or writes a 500.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*play.Controller, bool) {
	player := playerFrom(r.Context())
	c, err := s.games.Get(r.Context(), player)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("load game")
		http.Error(w, `{"error":"game_unavailable"}`, http.StatusInternalServerError)
		return nil, false
	}
	return c, true
}

// handleGame returns the current view.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(c.View())
}

// keyReq is the payload for POST /game/key and for socket messages.
type keyReq struct {
	Key string `json:"key"`
}

// handleKey applies one key event and returns the resulting view.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, `{"error":"missing_key"}`, http.StatusBadRequest)
		return
	}
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(c.Key(r.Context(), req.Key))
}

// statsRes adds the derived win rate to the stored record.
type statsRes struct {
	stats.Statistics
	WinRate int `json:"winRate"`
}

// handleStats returns the player's statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	st, err := c.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load stats")
		http.Error(w, `{"error":"stats_unavailable"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(statsRes{Statistics: st, WinRate: st.WinRate()})
}

// handleShare returns the share grid of a finished game.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	grid, done := c.Share()
	if !done {
		http.Error(w, `{"error":"not_finished"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"grid": grid})
}

// handleHistory returns recent completed games.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistory)
	}
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	results, err := c.History(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("load history")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(results)
}
