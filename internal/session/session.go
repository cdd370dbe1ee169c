// Package session implements the quiz session state machine.
//
// A Machine owns at most one session at a time and moves it through
// uninitialized -> active -> completed. Reset discards the session and
// returns to uninitialized. Machine is not safe for concurrent use; callers
// serialize access (see package quiz).
package session

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/playperu/geoquest/internal/geo"
	"github.com/playperu/geoquest/internal/geoquest"
	"github.com/playperu/geoquest/internal/scoring"
	"github.com/playperu/geoquest/internal/selector"
)

const (
	DefaultQuestionCount = 10
	DefaultTimeLimit     = 20 // seconds per question
)

var (
	ErrEmptyBank       = errors.New("question bank is empty")
	ErrNoQuestions     = errors.New("no questions for difficulty")
	ErrNoActiveSession = errors.New("no active session")
	ErrAlreadyAnswered = errors.New("question already answered")
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StateCompleted     State = "completed"
)

type Config struct {
	QuestionCount int
	TimeLimit     int // seconds
}

func (c Config) withDefaults() Config {
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	return c
}

type session struct {
	id         string
	difficulty geoquest.Difficulty
	questions  []geoquest.Question
	index      int
	answers    []geoquest.Answer
	// answeredAt is the index of the last answered question, -1 before any.
	answeredAt int
	startedAt  time.Time
	score      int
	active     bool
}

type Machine struct {
	cfg   Config
	clock clock.Clock
	rng   *rand.Rand
	newID func() string

	sess      *session
	remaining int
}

type Option func(*Machine)

// WithClock sets the clock used for session start timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithRand sets the random source used to draw questions.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) { m.rng = r }
}

func WithIDGenerator(f func() string) Option {
	return func(m *Machine) { m.newID = f }
}

func New(cfg Config, opts ...Option) *Machine {
	m := &Machine{
		cfg:   cfg.withDefaults(),
		clock: clock.New(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.remaining = m.cfg.TimeLimit
	return m
}

func (m *Machine) Config() Config { return m.cfg }

func (m *Machine) State() State {
	switch {
	case m.sess == nil:
		return StateUninitialized
	case m.sess.active:
		return StateActive
	default:
		return StateCompleted
	}
}

// Start draws questions of difficulty d from bank and begins a new session,
// replacing any previous one. No session is created when bank is empty or has
// no questions of that difficulty.
func (m *Machine) Start(bank []geoquest.Question, d geoquest.Difficulty) error {
	if len(bank) == 0 {
		return ErrEmptyBank
	}

	questions := selector.Select(bank, d, m.cfg.QuestionCount, m.rng)
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	m.sess = &session{
		id:         m.newID(),
		difficulty: d,
		questions:  questions,
		answers:    make([]geoquest.Answer, 0, len(questions)),
		answeredAt: -1,
		startedAt:  m.clock.Now(),
		active:     true,
	}
	m.remaining = m.cfg.TimeLimit
	return nil
}

// Submit records an answer for the current question. The question's declared
// type decides how v is judged; a value of the wrong kind, or nil, is simply
// incorrect. A question accepts one answer.
func (m *Machine) Submit(v geoquest.Value) (geoquest.Answer, error) {
	if m.State() != StateActive {
		return geoquest.Answer{}, ErrNoActiveSession
	}
	if m.answered() {
		return geoquest.Answer{}, ErrAlreadyAnswered
	}

	q := m.sess.questions[m.sess.index]
	a := geoquest.Answer{
		QuestionID: q.ID,
		Value:      v,
		Correct:    judge(q, v),
		TimeSpent:  min(max(m.cfg.TimeLimit-m.remaining, 0), m.cfg.TimeLimit),
	}

	m.sess.answers = append(m.sess.answers, a)
	m.sess.answeredAt = m.sess.index
	m.sess.score += scoring.Points(a)
	return a, nil
}

// Advance moves to the next question and restarts the countdown. On the last
// question it completes the session instead.
func (m *Machine) Advance() error {
	if m.State() != StateActive {
		return ErrNoActiveSession
	}

	if m.sess.index < len(m.sess.questions)-1 {
		m.sess.index++
		m.remaining = m.cfg.TimeLimit
		return nil
	}

	m.sess.active = false
	return nil
}

// Finish completes an active session early. Recorded answers are kept.
func (m *Machine) Finish() error {
	if m.State() != StateActive {
		return ErrNoActiveSession
	}
	m.sess.active = false
	return nil
}

// Reset discards the session and restores the countdown.
func (m *Machine) Reset() {
	m.sess = nil
	m.remaining = m.cfg.TimeLimit
}

// TickResult describes one countdown step.
type TickResult struct {
	Remaining int
	Expired   bool
	// Answer is the answer recorded on expiry. It is nil when the question
	// had already been answered.
	Answer *geoquest.Answer
}

// Tick advances the countdown by one second. When it reaches zero the
// current question is auto-submitted with no value and the countdown
// restarts at the limit.
func (m *Machine) Tick() (TickResult, error) {
	if m.State() != StateActive {
		return TickResult{}, ErrNoActiveSession
	}

	m.remaining--
	if m.remaining > 0 {
		return TickResult{Remaining: m.remaining}, nil
	}

	m.remaining = 0
	res := TickResult{Expired: true}
	if a, err := m.Submit(nil); err == nil {
		res.Answer = &a
	}
	m.remaining = m.cfg.TimeLimit
	res.Remaining = m.remaining
	return res, nil
}

// Results reports false until at least one answer has been recorded.
func (m *Machine) Results() (geoquest.Results, bool) {
	if m.sess == nil {
		return geoquest.Results{}, false
	}
	return scoring.Compute(len(m.sess.questions), m.sess.score, m.sess.answers)
}

func (m *Machine) CurrentQuestion() (geoquest.Question, bool) {
	if m.State() != StateActive {
		return geoquest.Question{}, false
	}
	return m.sess.questions[m.sess.index], true
}

func (m *Machine) TimeRemaining() int { return m.remaining }

// Answered reports whether the current question already has an answer.
func (m *Machine) Answered() bool {
	return m.State() == StateActive && m.answered()
}

func (m *Machine) Summary() (geoquest.Summary, bool) {
	if m.sess == nil {
		return geoquest.Summary{}, false
	}
	return geoquest.Summary{
		SessionID:  m.sess.id,
		Difficulty: m.sess.difficulty,
		Index:      m.sess.index,
		Total:      len(m.sess.questions),
		Answers:    append([]geoquest.Answer(nil), m.sess.answers...),
		Score:      m.sess.score,
		Active:     m.sess.active,
		StartedAt:  m.sess.startedAt,
	}, true
}

func (m *Machine) answered() bool {
	return m.sess.answeredAt == m.sess.index
}

func judge(q geoquest.Question, v geoquest.Value) bool {
	switch q.Type {
	case geoquest.TypeClick:
		click, ok := v.(geoquest.Point)
		target, ok2 := q.Correct.(geoquest.Point)
		return ok && ok2 && geo.WithinRadius(geoquest.Coordinates(click), geoquest.Coordinates(target))
	default:
		got, ok := v.(geoquest.Text)
		want, ok2 := q.Correct.(geoquest.Text)
		return ok && ok2 && got == want
	}
}
