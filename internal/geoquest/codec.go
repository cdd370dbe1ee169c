package geoquest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type questionJSON struct {
	ID             string          `json:"id"`
	Type           QuestionType    `json:"type"`
	Difficulty     Difficulty      `json:"difficulty"`
	Category       Category        `json:"category"`
	Question       string          `json:"question"`
	Options        []string        `json:"options,omitempty"`
	CorrectAnswer  json.RawMessage `json:"correctAnswer"`
	Explanation    string          `json:"explanation,omitempty"`
	TargetLocation *Coordinates    `json:"targetLocation,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	correct, err := encodeValue(q.Correct)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:             q.ID,
		Type:           q.Type,
		Difficulty:     q.Difficulty,
		Category:       q.Category,
		Question:       q.Prompt,
		Options:        q.Options,
		CorrectAnswer:  correct,
		Explanation:    q.Explanation,
		TargetLocation: q.TargetLocation,
	})
}

// UnmarshalJSON decodes correctAnswer according to the declared question
// type: coordinates for click-to-answer, a string for everything else.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var correct Value
	if !isNull(raw.CorrectAnswer) {
		switch raw.Type {
		case TypeClick:
			var c Coordinates
			if err := json.Unmarshal(raw.CorrectAnswer, &c); err != nil {
				return fmt.Errorf("question %q: decoding coordinates: %w", raw.ID, err)
			}
			correct = Point(c)
		default:
			var s string
			if err := json.Unmarshal(raw.CorrectAnswer, &s); err != nil {
				return fmt.Errorf("question %q: decoding text answer: %w", raw.ID, err)
			}
			correct = Text(s)
		}
	}

	*q = Question{
		ID:             raw.ID,
		Type:           raw.Type,
		Difficulty:     raw.Difficulty,
		Category:       raw.Category,
		Prompt:         raw.Question,
		Options:        raw.Options,
		Correct:        correct,
		Explanation:    raw.Explanation,
		TargetLocation: raw.TargetLocation,
	}
	return nil
}

type answerJSON struct {
	QuestionID string          `json:"questionId"`
	UserAnswer json.RawMessage `json:"userAnswer"`
	IsCorrect  bool            `json:"isCorrect"`
	TimeSpent  int             `json:"timeSpent"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	v, err := encodeValue(a.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{
		QuestionID: a.QuestionID,
		UserAnswer: v,
		IsCorrect:  a.Correct,
		TimeSpent:  a.TimeSpent,
	})
}

// UnmarshalJSON has no question type to go by, so the stored value is
// decoded by shape: a string is Text, an object is a Point.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var v Value
	trimmed := bytes.TrimSpace(raw.UserAnswer)
	switch {
	case isNull(trimmed):
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		v = Text(s)
	default:
		var c Coordinates
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return err
		}
		v = Point(c)
	}

	*a = Answer{
		QuestionID: raw.QuestionID,
		Value:      v,
		Correct:    raw.IsCorrect,
		TimeSpent:  raw.TimeSpent,
	}
	return nil
}

func encodeValue(v Value) (json.RawMessage, error) {
	switch v := v.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case Text:
		return json.Marshal(string(v))
	case Point:
		return json.Marshal(Coordinates(v))
	default:
		return nil, fmt.Errorf("unsupported answer value %T", v)
	}
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}
