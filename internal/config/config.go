package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR"`

	// BankPath is a question bank document. Empty means the built-in bank.
	BankPath string `env:"BANK_PATH"`
	// DBPath enables the SQLite question store when set.
	DBPath string `env:"DB_PATH"`
	// RedisURL enables rate limiting when set.
	RedisURL string `env:"REDIS_URL"`

	QuestionCount     int           `env:"QUESTION_COUNT" envDefault:"10"`
	QuestionTimeLimit time.Duration `env:"QUESTION_TIME_LIMIT" envDefault:"20s"`

	// PlayerIdleTimeout evicts players with no requests for this long.
	// Zero keeps them until shutdown.
	PlayerIdleTimeout time.Duration `env:"PLAYER_IDLE_TIMEOUT" envDefault:"30m"`

	RateLimit       int           `env:"RATE_LIMIT" envDefault:"50"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.QuestionCount <= 0 {
		return nil, fmt.Errorf("QUESTION_COUNT must be positive, got %d", cfg.QuestionCount)
	}
	if cfg.QuestionTimeLimit < time.Second {
		return nil, fmt.Errorf("QUESTION_TIME_LIMIT must be at least 1s, got %s", cfg.QuestionTimeLimit)
	}
	return &cfg, nil
}
