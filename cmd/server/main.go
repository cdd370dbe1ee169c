package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/geoquest/internal/bank"
	"github.com/playperu/geoquest/internal/config"
	"github.com/playperu/geoquest/internal/database"
	"github.com/playperu/geoquest/internal/handler/health"
	"github.com/playperu/geoquest/internal/migrations"
	"github.com/playperu/geoquest/internal/ratelimit"
	"github.com/playperu/geoquest/internal/server"
	"github.com/playperu/geoquest/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := map[string]health.Checker{}

	// --- SQLite (optional question store) ---
	var db *sql.DB
	if cfg.DBPath != "" {
		db, err = database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		n, err := migrations.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", n)
		checks["sqlite"] = health.SQL(db)
	}

	// --- Question bank ---
	questions := bank.Load(ctx, logger, cfg.BankPath, db)
	checks["bank"] = health.Bank(func() int { return len(questions) })

	// --- Redis (optional rate limiting) ---
	var counter ratelimit.Counter
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		counter = ratelimit.NewRedisCounter(rdb)
		checks["redis"] = health.Redis(rdb)
	} else {
		logger.Warn("redis not configured, rate limiting disabled")
	}
	limiter := ratelimit.New(counter, cfg.RateLimit, cfg.RateLimitWindow, logger)

	// --- Players ---
	broker := server.NewBroker()
	players := server.NewRegistry(questions, session.Config{
		QuestionCount: cfg.QuestionCount,
		TimeLimit:     int(cfg.QuestionTimeLimit.Seconds()),
	}, logger, broker, server.WithIdleTimeout(cfg.PlayerIdleTimeout))
	defer players.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Players: players,
		Broker:  broker,
		Limiter: limiter,
		SPADir:  cfg.SPADir,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return players.RunSweeper(gctx, time.Minute)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
