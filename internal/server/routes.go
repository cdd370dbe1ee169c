package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	v := NewValidator()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoQuest API", "/openapi.json", "/docs"))

	r.Post("/api/rate-limit", handleRateLimit(deps.Limiter))
	r.Get("/api/rate-limit", handleRateLimitStatus(deps.Limiter))

	r.Route("/api/quiz", func(r chi.Router) {
		r.With(rateLimitMiddleware(deps.Limiter)).
			Post("/start", handleStart(logger, deps.Players, v))

		// Player routes, token resolved by playerMiddleware.
		r.Group(func(r chi.Router) {
			r.Use(playerMiddleware(deps.Players))
			r.Get("/state", handleState())
			r.Post("/answer", handleAnswer(v))
			r.Post("/next", handleNext())
			r.Post("/finish", handleFinish())
			r.Post("/reset", handleReset())
			r.Get("/results", handleResults())
			r.Get("/events", handleEvents(deps.Broker))
			r.Get("/ws", handleWS(logger, deps.Broker))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
