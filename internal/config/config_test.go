package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/geoquest/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
	if cfg.QuestionCount != 10 || cfg.QuestionTimeLimit != 20*time.Second {
		t.Errorf("quiz = %d questions, %v", cfg.QuestionCount, cfg.QuestionTimeLimit)
	}
	if cfg.RateLimit != 50 || cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.RateLimit, cfg.RateLimitWindow)
	}
	if cfg.PlayerIdleTimeout != 30*time.Minute {
		t.Errorf("idle timeout = %v, want 30m", cfg.PlayerIdleTimeout)
	}
	if cfg.DBPath != "" || cfg.RedisURL != "" || cfg.BankPath != "" {
		t.Errorf("optional sources set by default: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("QUESTION_COUNT", "5")
	t.Setenv("QUESTION_TIME_LIMIT", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel)
	}
	if cfg.QuestionCount != 5 || cfg.QuestionTimeLimit != 30*time.Second {
		t.Errorf("quiz = %d questions, %v", cfg.QuestionCount, cfg.QuestionTimeLimit)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("redis url = %q", cfg.RedisURL)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero questions", "QUESTION_COUNT", "0"},
		{"sub-second limit", "QUESTION_TIME_LIMIT", "500ms"},
		{"bad duration", "RATE_LIMIT_WINDOW", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := config.Load(); err == nil {
				t.Errorf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}
