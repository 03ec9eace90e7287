// internal/httpserver/player.go
//
// Anonymous player identity.
// A player is a random UUID carried in an HS256 JWT, either as a cookie or as
// "Authorization: Bearer <token>". Requests without a valid token get a new
// identity and a fresh cookie.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// playerTTL is how long a player token stays valid.
const playerTTL = 365 * 24 * time.Hour

// ctxPlayerKey is the context key type for the player ID.
type ctxPlayerKey struct{}

// playerFrom returns the player ID placed by withPlayer.
func playerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxPlayerKey{}).(string)
	return id
}

// withPlayer resolves the player from the request, issuing a new identity when
// none (or an invalid one) is presented. It never rejects a request.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.parsePlayer(bearerOrCookie(r, s.cfg.CookieName))
		if !ok {
			id = uuid.NewString()
			tok, exp, err := s.signPlayer(id)
			if err != nil {
				log.Error().Err(err).Msg("sign player token")
				http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
				return
			}
			s.setPlayerCookie(w, tok, exp)
			log.Debug().Str("player", id).Msg("new player")
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// signPlayer creates an HS256 JWT whose subject is the player ID.
func (s *Server) signPlayer(id string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(playerTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parsePlayer validates a token and returns its player ID.
func (s *Server) parsePlayer(tok string) (string, bool) {
	if tok == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return "", false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// setPlayerCookie writes the player token cookie with appropriate security attributes.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or the player cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}
