package server

import (
	"net/http"

	"github.com/playperu/geoquest/internal/geoquest"
	"github.com/playperu/geoquest/internal/scoring"
)

type ResultAnswer struct {
	QuestionID string `json:"questionId"`
	UserAnswer any    `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeSpent  int    `json:"timeSpent"`
}

type ResultsResponse struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Accuracy       float64        `json:"accuracy"`
	AverageTime    float64        `json:"averageTime"`
	AverageTimeFmt string         `json:"averageTimeFormatted"`
	Badge          string         `json:"badge"`
	BadgeLabel     string         `json:"badgeLabel"`
	Answers        []ResultAnswer `json:"answers"`
}

func resultsResponse(res geoquest.Results) ResultsResponse {
	answers := make([]ResultAnswer, len(res.Answers))
	for i, a := range res.Answers {
		answers[i] = ResultAnswer{
			QuestionID: a.QuestionID,
			UserAnswer: valueJSON(a.Value),
			IsCorrect:  a.Correct,
			TimeSpent:  a.TimeSpent,
		}
	}
	return ResultsResponse{
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		CorrectAnswers: res.CorrectCount,
		Accuracy:       res.Accuracy,
		AverageTime:    res.AverageTime,
		AverageTimeFmt: scoring.FormatTime(res.AverageTime),
		Badge:          string(res.Badge),
		BadgeLabel:     scoring.BadgeLabel(res.Badge),
		Answers:        answers,
	}
}

func handleFinish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok, err := playerFrom(r).quiz.Finish()
		if err != nil {
			writeQuizError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no results available")
			return
		}
		writeJSON(w, http.StatusOK, resultsResponse(res))
	}
}

func handleResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := playerFrom(r).quiz.Results()
		if !ok {
			writeError(w, http.StatusNotFound, "no results available")
			return
		}
		writeJSON(w, http.StatusOK, resultsResponse(res))
	}
}
