package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/playperu/geoquest/internal/geoquest"
	"github.com/playperu/geoquest/internal/quiz"
	"github.com/playperu/geoquest/internal/session"
)

// DefaultIdleTimeout is how long a player may go without a request before
// the registry forgets them.
const DefaultIdleTimeout = 30 * time.Minute

type entry struct {
	quiz     *quiz.Orchestrator
	lastSeen atomic.Int64 // unix nanoseconds
}

// Registry holds one quiz orchestrator per player token. Every orchestrator
// shares the same read-only question bank.
type Registry struct {
	bank   []geoquest.Question
	cfg    session.Config
	logger *slog.Logger
	broker *Broker
	clock  clock.Clock
	idle   time.Duration
	opts   []quiz.Option

	mu      sync.RWMutex
	players map[string]*entry
}

type RegistryOption func(*Registry)

// WithClock sets the clock for idle tracking and for every orchestrator's
// countdown.
func WithClock(c clock.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
		r.opts = append(r.opts, quiz.WithClock(c))
	}
}

// WithIdleTimeout sets how long an untouched player is kept. Zero or less
// keeps players until Close.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idle = d }
}

// WithQuizOptions applies opts to every orchestrator the registry creates.
func WithQuizOptions(opts ...quiz.Option) RegistryOption {
	return func(r *Registry) { r.opts = append(r.opts, opts...) }
}

// NewRegistry returns an empty registry. Session events of each player are
// published to broker under the player's token.
func NewRegistry(bank []geoquest.Question, cfg session.Config, logger *slog.Logger, broker *Broker, opts ...RegistryOption) *Registry {
	r := &Registry{
		bank:    bank,
		cfg:     cfg,
		logger:  logger,
		broker:  broker,
		clock:   clock.New(),
		idle:    DefaultIdleTimeout,
		players: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the player's orchestrator and marks the player as active.
func (r *Registry) Get(token string) (*quiz.Orchestrator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.players[token]
	if !ok {
		return nil, false
	}
	e.lastSeen.Store(r.clock.Now().UnixNano())
	return e.quiz, true
}

// GetOrCreate returns the orchestrator for token. An empty or unknown token
// gets a fresh player with a newly minted token.
func (r *Registry) GetOrCreate(token string) (string, *quiz.Orchestrator) {
	if token != "" {
		if o, ok := r.Get(token); ok {
			return token, o
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if e, ok := r.players[token]; ok {
		e.lastSeen.Store(r.clock.Now().UnixNano())
		return token, e.quiz
	}

	token = uuid.NewString()
	log := r.logger.With("player", token)
	opts := append(r.opts[:len(r.opts):len(r.opts)], quiz.WithNotifier(func(e quiz.Event) {
		r.broker.Publish(token, e)
	}))
	e := &entry{quiz: quiz.New(r.bank, r.cfg, log, opts...)}
	e.lastSeen.Store(r.clock.Now().UnixNano())
	r.players[token] = e

	log.Debug("player registered", "players", len(r.players))
	return token, e.quiz
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Sweep closes and forgets every player idle for longer than the idle
// timeout, and ends their event streams. It returns the number evicted.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.idle).UnixNano()

	r.mu.Lock()
	var evicted []string
	for token, e := range r.players {
		if e.lastSeen.Load() < cutoff {
			e.quiz.Close()
			delete(r.players, token)
			evicted = append(evicted, token)
		}
	}
	remaining := len(r.players)
	r.mu.Unlock()

	for _, token := range evicted {
		r.broker.Drop(token)
	}
	if len(evicted) > 0 {
		r.logger.Info("evicted idle players", "evicted", len(evicted), "players", remaining)
	}
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	if r.idle <= 0 {
		return nil
	}
	t := r.clock.Ticker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}

// Close stops every countdown and forgets all players.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, e := range r.players {
		e.quiz.Close()
		delete(r.players, token)
	}
	return nil
}
