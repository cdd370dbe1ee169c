package ratelimit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/geoquest/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCounter struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	expires   int
	incrErr   error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeCounter) Incr(_ context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.expires++
	if f.expireErr != nil {
		err := f.expireErr
		f.expireErr = nil
		return err
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	ttl, ok := f.ttls[key]
	if !ok {
		return -1, nil
	}
	return ttl, nil
}

func TestAllowCountsDown(t *testing.T) {
	c := newFakeCounter()
	l := ratelimit.New(c, 3, time.Minute, discardLogger())

	for want := 2; want >= 0; want-- {
		d := l.Allow(context.Background(), "1.2.3.4")
		if !d.Allowed || d.Remaining != want {
			t.Fatalf("decision = %+v, want allowed with %d remaining", d, want)
		}
	}

	d := l.Allow(context.Background(), "1.2.3.4")
	if d.Allowed {
		t.Fatal("fourth request allowed, want rejected")
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("retry after = %v, want 1m", d.RetryAfter)
	}

	if c.expires != 1 {
		t.Errorf("expire called %d times, want once", c.expires)
	}
	if _, ok := c.counts["ratelimit:1.2.3.4"]; !ok {
		t.Error("expected key ratelimit:1.2.3.4")
	}
}

func TestAllowPerClient(t *testing.T) {
	l := ratelimit.New(newFakeCounter(), 1, time.Minute, discardLogger())

	if d := l.Allow(context.Background(), "a"); !d.Allowed {
		t.Error("first request from a rejected")
	}
	if d := l.Allow(context.Background(), "b"); !d.Allowed {
		t.Error("first request from b rejected")
	}
	if d := l.Allow(context.Background(), "a"); d.Allowed {
		t.Error("second request from a allowed")
	}
}

func TestDisabledAllowsEverything(t *testing.T) {
	l := ratelimit.New(nil, 0, 0, discardLogger())

	if l.Enabled() {
		t.Error("limiter without counter reports enabled")
	}
	if l.Limit() != ratelimit.DefaultLimit || l.Window() != ratelimit.DefaultWindow {
		t.Errorf("limit %d window %v, want defaults", l.Limit(), l.Window())
	}
	for range 100 {
		if d := l.Allow(context.Background(), "x"); !d.Allowed || d.Remaining != ratelimit.DefaultLimit {
			t.Fatalf("decision = %+v", d)
		}
	}
}

func TestCounterErrorFailsOpen(t *testing.T) {
	c := newFakeCounter()
	c.incrErr = errors.New("connection refused")
	l := ratelimit.New(c, 1, time.Minute, discardLogger())

	d := l.Allow(context.Background(), "x")
	if !d.Allowed || d.Err == nil {
		t.Errorf("decision = %+v, want allowed with error", d)
	}
}

func TestMissingExpiryIsRepaired(t *testing.T) {
	c := newFakeCounter()
	c.expireErr = errors.New("connection reset")
	l := ratelimit.New(c, 2, time.Minute, discardLogger())

	if d := l.Allow(context.Background(), "x"); !d.Allowed || d.Err == nil {
		t.Fatalf("first decision = %+v, want allowed with error", d)
	}
	if _, ok := c.ttls["ratelimit:x"]; ok {
		t.Fatal("expiry recorded despite the failure")
	}

	l.Allow(context.Background(), "x")
	d := l.Allow(context.Background(), "x")
	if d.Allowed {
		t.Fatalf("decision = %+v, want rejected over the limit", d)
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("retry after = %v, want a fresh 1m window", d.RetryAfter)
	}
	if ttl := c.ttls["ratelimit:x"]; ttl != time.Minute {
		t.Errorf("key ttl = %v, want 1m", ttl)
	}
}

func TestRedisCounterUnreachableFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := ratelimit.New(ratelimit.NewRedisCounter(rdb), 1, time.Minute, discardLogger())
	for range 3 {
		if d := l.Allow(context.Background(), "x"); !d.Allowed {
			t.Fatalf("decision = %+v, want fail open", d)
		}
	}
}
