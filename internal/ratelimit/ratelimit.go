// Package ratelimit counts requests per client in a fixed window. Counter
// failures never block a request.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultLimit  = 50
	DefaultWindow = 15 * time.Minute
)

// Counter is the external store backing the limiter. TTL is negative for a
// key without expiry, as Redis reports it.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisCounter implements Counter with INCR/EXPIRE/TTL.
type RedisCounter struct {
	rdb redis.Cmdable
}

func NewRedisCounter(rdb redis.Cmdable) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	// Err is set when the counter failed and the request was let through.
	Err error
}

type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	logger  *slog.Logger
}

// New returns a limiter over counter. A nil counter disables limiting.
func New(counter Counter, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{counter: counter, limit: limit, window: window, logger: logger}
}

// Enabled reports whether a counter is configured.
func (l *Limiter) Enabled() bool { return l.counter != nil }

func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) Window() time.Duration { return l.window }

// Allow records one request from client. The window starts at the client's
// first request and is not extended by later ones.
func (l *Limiter) Allow(ctx context.Context, client string) Decision {
	if l.counter == nil {
		return Decision{Allowed: true, Remaining: l.limit}
	}

	key := "ratelimit:" + client
	n, err := l.counter.Incr(ctx, key)
	if err != nil {
		return l.failOpen(client, fmt.Errorf("incrementing counter: %w", err))
	}

	if n == 1 {
		if err := l.counter.Expire(ctx, key, l.window); err != nil {
			return l.failOpen(client, fmt.Errorf("setting expiry: %w", err))
		}
	}

	if n > int64(l.limit) {
		ttl, err := l.counter.TTL(ctx, key)
		if err != nil {
			return l.failOpen(client, fmt.Errorf("reading ttl: %w", err))
		}
		if ttl < 0 {
			// The expiry was never set, so the key would block the client
			// for good. Start a fresh window.
			if err := l.counter.Expire(ctx, key, l.window); err != nil {
				return l.failOpen(client, fmt.Errorf("repairing expiry: %w", err))
			}
			l.logger.Warn("rate limit key had no expiry", "client", client)
			ttl = l.window
		}
		return Decision{RetryAfter: ttl}
	}

	return Decision{Allowed: true, Remaining: l.limit - int(n)}
}

func (l *Limiter) failOpen(client string, err error) Decision {
	l.logger.Error("rate limit check failed", "client", client, "error", err)
	return Decision{Allowed: true, Err: err}
}
