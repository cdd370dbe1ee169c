package server

import (
	"fmt"
	"net/http"

	"github.com/playperu/geoquest/internal/ratelimit"
)

type RateLimitResponse struct {
	OK        bool   `json:"ok"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit,omitempty"`
	Window    int    `json:"window,omitempty"` // seconds
	Error     string `json:"error,omitempty"`
}

type RateLimitedResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"` // seconds
}

type RateLimitStatusResponse struct {
	Status       string `json:"status"`
	RateLimiting string `json:"rateLimiting"`
	Limit        int    `json:"limit"`
	Window       string `json:"window"`
}

func handleRateLimit(limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Enabled() {
			writeJSON(w, http.StatusOK, RateLimitResponse{OK: true, Remaining: limiter.Limit()})
			return
		}

		d := limiter.Allow(r.Context(), clientIP(r))
		switch {
		case d.Err != nil:
			writeJSON(w, http.StatusOK, RateLimitResponse{OK: true, Error: "Rate limit check failed"})
		case !d.Allowed:
			writeRateLimited(w, d)
		default:
			writeJSON(w, http.StatusOK, RateLimitResponse{
				OK:        true,
				Remaining: d.Remaining,
				Limit:     limiter.Limit(),
				Window:    int(limiter.Window().Seconds()),
			})
		}
	}
}

func handleRateLimitStatus(limiter *ratelimit.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := "disabled"
		if limiter.Enabled() {
			state = "enabled"
		}
		writeJSON(w, http.StatusOK, RateLimitStatusResponse{
			Status:       "ok",
			RateLimiting: state,
			Limit:        limiter.Limit(),
			Window:       fmt.Sprintf("%d minutes", int(limiter.Window().Minutes())),
		})
	}
}
