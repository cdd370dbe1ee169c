package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/playperu/geoquest/internal/quiz"
	"github.com/playperu/geoquest/internal/ratelimit"
)

type ctxKey int

const (
	ctxKeyPlayer ctxKey = iota
)

// playerToken reads the token from the Authorization header, falling back to
// the token query parameter for EventSource and WebSocket clients.
func playerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

type player struct {
	token string
	quiz  *quiz.Orchestrator
}

func playerMiddleware(players *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := playerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing player token")
				return
			}

			o, ok := players.Get(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid player token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPlayer, player{token: token, quiz: o})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playerFrom(r *http.Request) player {
	return r.Context().Value(ctxKeyPlayer).(player)
}

// clientIP expects middleware.RealIP to have run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// rateLimitMiddleware rejects clients over the limit with 429.
func rateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context(), clientIP(r))
			if !d.Allowed {
				writeRateLimited(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter, d ratelimit.Decision) {
	secs := int(d.RetryAfter.Seconds())
	minutes := (secs + 59) / 60
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}

	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSON(w, http.StatusTooManyRequests, RateLimitedResponse{
		Error:      "Rate limit exceeded",
		Message:    fmt.Sprintf("Too many requests. Please try again in %d %s.", minutes, unit),
		RetryAfter: secs,
	})
}
