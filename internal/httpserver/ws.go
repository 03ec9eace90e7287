// internal/httpserver/ws.go
//
// GET /game/ws upgrades to a WebSocket that streams the player's view.
// The server sends the current view on connect and again after every change,
// including deferred ones (shake cleared, message hidden, reveal finished).
// The client sends key events as {"key":"a"}.

package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 512
)

// checkOrigin accepts same-host pages, the configured client origin, and
// non-browser clients that send no Origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// handleSocket serves one WebSocket connection.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	// Upgrade writes its own response; carry over a freshly issued player cookie.
	var hdr http.Header
	if sc := w.Header().Values("Set-Cookie"); len(sc) > 0 {
		hdr = http.Header{"Set-Cookie": sc}
	}
	up := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := up.Upgrade(w, r, hdr)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	defer conn.Close()

	player := playerFrom(r.Context())
	updates, cancel := c.Subscribe()
	defer cancel()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(c.View()); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(wsMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			var msg keyReq
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("player", player).Msg("ws read")
				}
				return
			}
			if msg.Key != "" {
				c.Key(r.Context(), msg.Key)
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case v, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(v); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
