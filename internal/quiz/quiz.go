// Package quiz is the session lifecycle facade used by presentation layers.
//
// An Orchestrator wraps a session.Machine, serializes every mutation behind
// one mutex and drives the per-question countdown from a clock ticker.
package quiz

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/playperu/geoquest/internal/geoquest"
	"github.com/playperu/geoquest/internal/session"
)

type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventTick             EventType = "tick"
	EventTimeExpired      EventType = "time_expired"
	EventAnswerRecorded   EventType = "answer_recorded"
	EventQuestionAdvanced EventType = "question_advanced"
	EventSessionCompleted EventType = "session_completed"
	EventSessionReset     EventType = "session_reset"
)

// Event is published on every state change. Notifiers must not block.
type Event struct {
	Type          EventType `json:"type"`
	SessionID     string    `json:"sessionId,omitempty"`
	QuestionIndex int       `json:"questionIndex"`
	TimeRemaining int       `json:"timeRemaining"`
	Score         int       `json:"score"`
	IsCorrect     bool      `json:"isCorrect,omitempty"`
}

// View is what a presentation layer renders.
type View struct {
	State         session.State
	SessionID     string
	Difficulty    geoquest.Difficulty
	Index         int
	Total         int
	Score         int
	Answered      int
	CurrentDone   bool
	TimeRemaining int
	StartedAt     time.Time
	Question      *geoquest.Question
}

type Orchestrator struct {
	mu      sync.Mutex
	m       *session.Machine
	bank    []geoquest.Question
	clock   clock.Clock
	logger  *slog.Logger
	notify  func(Event)
	timer   chan struct{} // closed to stop the running countdown
	timerID uint64
	closed  bool
}

type Option func(*options)

type options struct {
	clock  clock.Clock
	rng    *rand.Rand
	notify func(Event)
}

// WithClock sets the clock for both session timestamps and the countdown.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithNotifier registers a callback for session events. It is called with
// the orchestrator's lock held.
func WithNotifier(f func(Event)) Option {
	return func(o *options) { o.notify = f }
}

// New returns an orchestrator over bank. The bank is shared, never modified.
func New(bank []geoquest.Question, cfg session.Config, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	machineOpts := []session.Option{session.WithClock(o.clock)}
	if o.rng != nil {
		machineOpts = append(machineOpts, session.WithRand(o.rng))
	}

	return &Orchestrator{
		m:      session.New(cfg, machineOpts...),
		bank:   bank,
		clock:  o.clock,
		logger: logger,
		notify: o.notify,
	}
}

// Start begins a new session of difficulty d, replacing any current one.
func (o *Orchestrator) Start(d geoquest.Difficulty) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.m.Start(o.bank, d); err != nil {
		o.logger.Warn("cannot start session", "difficulty", d, "bank_size", len(o.bank), "error", err)
		return o.view(), err
	}

	v := o.view()
	o.logger.Info("session started", "session_id", v.SessionID, "difficulty", d, "questions", v.Total)
	o.publish(EventSessionStarted, nil)
	o.rebindTimer()
	return v, nil
}

// Submit answers the current question. It returns the recorded answer and
// the question it was judged against.
func (o *Orchestrator) Submit(v geoquest.Value) (geoquest.Answer, geoquest.Question, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	q, _ := o.m.CurrentQuestion()
	a, err := o.m.Submit(v)
	if err != nil {
		o.logger.Debug("submit ignored", "error", err)
		return geoquest.Answer{}, geoquest.Question{}, err
	}
	o.publish(EventAnswerRecorded, &a)
	return a, q, nil
}

// Advance moves to the next question, or completes the session after the
// last one.
func (o *Orchestrator) Advance() (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.m.Advance(); err != nil {
		o.logger.Debug("advance ignored", "error", err)
		return o.view(), err
	}

	if o.m.State() == session.StateCompleted {
		o.complete()
	} else {
		o.publish(EventQuestionAdvanced, nil)
		o.rebindTimer()
	}
	return o.view(), nil
}

// Finish ends the session early and returns its results, if any.
func (o *Orchestrator) Finish() (geoquest.Results, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch err := o.m.Finish(); {
	case err == nil:
		o.complete()
	case o.m.State() == session.StateUninitialized:
		o.logger.Debug("finish ignored", "error", err)
		return geoquest.Results{}, false, err
	}

	res, ok := o.m.Results()
	return res, ok, nil
}

// Reset discards the session.
func (o *Orchestrator) Reset() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopTimer()
	o.m.Reset()
	o.publish(EventSessionReset, nil)
	return o.view()
}

func (o *Orchestrator) Results() (geoquest.Results, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.m.Results()
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view()
}

// Close stops the countdown for good. Later calls still work on the
// session but never start another countdown.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.stopTimer()
}

func (o *Orchestrator) complete() {
	o.stopTimer()
	sum, _ := o.m.Summary()
	o.logger.Info("session completed", "session_id", sum.SessionID, "score", sum.Score, "answered", len(sum.Answers), "total", sum.Total)
	o.publish(EventSessionCompleted, nil)
}

func (o *Orchestrator) view() View {
	v := View{
		State:         o.m.State(),
		TimeRemaining: o.m.TimeRemaining(),
	}
	if sum, ok := o.m.Summary(); ok {
		v.SessionID = sum.SessionID
		v.Difficulty = sum.Difficulty
		v.Index = sum.Index
		v.Total = sum.Total
		v.Score = sum.Score
		v.Answered = len(sum.Answers)
		v.StartedAt = sum.StartedAt
	}
	if q, ok := o.m.CurrentQuestion(); ok {
		v.Question = &q
		v.CurrentDone = o.m.Answered()
	}
	return v
}

func (o *Orchestrator) publish(t EventType, a *geoquest.Answer) {
	if o.notify == nil {
		return
	}
	ev := Event{
		Type:          t,
		TimeRemaining: o.m.TimeRemaining(),
	}
	if sum, ok := o.m.Summary(); ok {
		ev.SessionID = sum.SessionID
		ev.QuestionIndex = sum.Index
		ev.Score = sum.Score
	}
	if a != nil {
		ev.IsCorrect = a.Correct
	}
	o.notify(ev)
}
