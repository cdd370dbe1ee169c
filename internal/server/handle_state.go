package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/playperu/geoquest/internal/geoquest"
	"github.com/playperu/geoquest/internal/quiz"
	"github.com/playperu/geoquest/internal/session"
)

// QuestionInfo is a question as shown to the player, without its answer.
type QuestionInfo struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category"`
	Question   string   `json:"question"`
	Options    []string `json:"options,omitempty"`
}

type StateResponse struct {
	State           string        `json:"state"`
	SessionID       string        `json:"sessionId,omitempty"`
	Difficulty      string        `json:"difficulty,omitempty"`
	QuestionIndex   int           `json:"questionIndex"`
	TotalQuestions  int           `json:"totalQuestions"`
	Score           int           `json:"score"`
	AnsweredCount   int           `json:"answeredCount"`
	CurrentAnswered bool          `json:"currentAnswered"`
	TimeRemaining   int           `json:"timeRemaining"`
	StartedAt       *time.Time    `json:"startedAt,omitempty"`
	Question        *QuestionInfo `json:"question,omitempty"`
}

func stateResponse(v quiz.View) StateResponse {
	resp := StateResponse{
		State:           string(v.State),
		SessionID:       v.SessionID,
		Difficulty:      string(v.Difficulty),
		QuestionIndex:   v.Index,
		TotalQuestions:  v.Total,
		Score:           v.Score,
		AnsweredCount:   v.Answered,
		CurrentAnswered: v.CurrentDone,
		TimeRemaining:   v.TimeRemaining,
	}
	if !v.StartedAt.IsZero() {
		t := v.StartedAt
		resp.StartedAt = &t
	}
	if v.Question != nil {
		resp.Question = questionInfo(*v.Question)
	}
	return resp
}

func questionInfo(q geoquest.Question) *QuestionInfo {
	return &QuestionInfo{
		ID:         q.ID,
		Type:       string(q.Type),
		Difficulty: string(q.Difficulty),
		Category:   string(q.Category),
		Question:   q.Prompt,
		Options:    q.Options,
	}
}

// writeQuizError maps session precondition errors to HTTP statuses.
func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, session.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrEmptyBank), errors.Is(err, session.ErrNoQuestions):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stateResponse(playerFrom(r).quiz.View()))
	}
}

func handleNext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := playerFrom(r).quiz.Advance()
		if err != nil {
			writeQuizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stateResponse(v))
	}
}

func handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stateResponse(playerFrom(r).quiz.Reset()))
	}
}
