package server

import (
	"net/http"

	"github.com/playperu/geoquest/internal/geoquest"
)

type ClickRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// AnswerRequest carries either a text answer or a map click.
type AnswerRequest struct {
	Answer *string       `json:"answer,omitempty"`
	Click  *ClickRequest `json:"click,omitempty"`
}

type AnswerResponse struct {
	QuestionID     string                `json:"questionId"`
	IsCorrect      bool                  `json:"isCorrect"`
	CorrectAnswer  any                   `json:"correctAnswer"`
	Explanation    string                `json:"explanation,omitempty"`
	TargetLocation *geoquest.Coordinates `json:"targetLocation,omitempty"`
	TimeSpent      int                   `json:"timeSpent"`
	Score          int                   `json:"score"`
	IsLast         bool                  `json:"isLast"`
}

// valueJSON renders an answer value as a string, coordinates or null.
func valueJSON(v geoquest.Value) any {
	switch v := v.(type) {
	case geoquest.Text:
		return string(v)
	case geoquest.Point:
		return geoquest.Coordinates(v)
	}
	return nil
}

func handleAnswer(v *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if !v.decode(w, r, &req) {
			return
		}
		if (req.Answer == nil) == (req.Click == nil) {
			writeError(w, http.StatusBadRequest, "exactly one of answer or click is required")
			return
		}

		var value geoquest.Value
		if req.Click != nil {
			value = geoquest.Point{Lat: req.Click.Lat, Lon: req.Click.Lon}
		} else {
			value = geoquest.Text(*req.Answer)
		}

		p := playerFrom(r)
		a, q, err := p.quiz.Submit(value)
		if err != nil {
			writeQuizError(w, err)
			return
		}
		view := p.quiz.View()

		writeJSON(w, http.StatusOK, AnswerResponse{
			QuestionID:     a.QuestionID,
			IsCorrect:      a.Correct,
			CorrectAnswer:  valueJSON(q.Correct),
			Explanation:    q.Explanation,
			TargetLocation: q.TargetLocation,
			TimeSpent:      a.TimeSpent,
			Score:          view.Score,
			IsLast:         view.Index == view.Total-1,
		})
	}
}
