package geoquest_test

import (
	"encoding/json"
	"testing"

	"github.com/playperu/geoquest/internal/geoquest"
)

const sampleBank = `{
  "version": "1.0.0",
  "lastUpdated": "2025-01-15",
  "questions": [
    {
      "id": "cap-001",
      "type": "multiple-choice",
      "difficulty": "easy",
      "category": "capitals",
      "question": "What is the capital of France?",
      "options": ["Berlin", "Paris", "Madrid", "Rome"],
      "correctAnswer": "Paris"
    },
    {
      "id": "mtn-001",
      "type": "click-to-answer",
      "difficulty": "hard",
      "category": "mountains",
      "question": "Click on Mount Everest",
      "correctAnswer": {"lat": 27.9881, "lon": 86.925, "radius": 150},
      "explanation": "Everest sits on the Nepal-China border."
    }
  ]
}`

func TestDecodeQuestionBank(t *testing.T) {
	var doc geoquest.QuestionBank
	if err := json.Unmarshal([]byte(sampleBank), &doc); err != nil {
		t.Fatalf("decoding bank: %v", err)
	}

	if doc.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", doc.Version)
	}
	if len(doc.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(doc.Questions))
	}

	mc := doc.Questions[0]
	if got, ok := mc.Correct.(geoquest.Text); !ok || got != "Paris" {
		t.Errorf("multiple-choice correct = %#v, want Text(Paris)", mc.Correct)
	}
	if mc.Prompt != "What is the capital of France?" {
		t.Errorf("prompt = %q", mc.Prompt)
	}
	if len(mc.Options) != 4 {
		t.Errorf("options = %v, want 4 entries", mc.Options)
	}

	click := doc.Questions[1]
	p, ok := click.Correct.(geoquest.Point)
	if !ok {
		t.Fatalf("click correct = %#v, want Point", click.Correct)
	}
	if p.Lat != 27.9881 || p.Lon != 86.925 || p.RadiusKm != 150 {
		t.Errorf("click correct = %+v", p)
	}
}

func TestDecodeQuestionWrongShape(t *testing.T) {
	raw := `{"id":"x","type":"click-to-answer","correctAnswer":"Paris"}`

	var q geoquest.Question
	if err := json.Unmarshal([]byte(raw), &q); err == nil {
		t.Fatal("expected error for string answer on click question")
	}
}

func TestQuestionRoundTripKeepsVariant(t *testing.T) {
	in := geoquest.Question{
		ID:      "riv-001",
		Type:    geoquest.TypeClick,
		Prompt:  "Click the mouth of the Amazon",
		Correct: geoquest.Point{Lat: -0.5, Lon: -50},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out geoquest.Question
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Correct != in.Correct {
		t.Errorf("correct = %#v, want %#v", out.Correct, in.Correct)
	}
}

func TestAnswerJSON(t *testing.T) {
	tests := []struct {
		name   string
		answer geoquest.Answer
		want   string
	}{
		{
			name:   "text",
			answer: geoquest.Answer{QuestionID: "q1", Value: geoquest.Text("Paris"), Correct: true, TimeSpent: 4},
			want:   `{"questionId":"q1","userAnswer":"Paris","isCorrect":true,"timeSpent":4}`,
		},
		{
			name:   "point",
			answer: geoquest.Answer{QuestionID: "q2", Value: geoquest.Point{Lat: 1, Lon: 2}, TimeSpent: 7},
			want:   `{"questionId":"q2","userAnswer":{"lat":1,"lon":2},"isCorrect":false,"timeSpent":7}`,
		},
		{
			name:   "timed out",
			answer: geoquest.Answer{QuestionID: "q3", TimeSpent: 20},
			want:   `{"questionId":"q3","userAnswer":null,"isCorrect":false,"timeSpent":20}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.answer)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}

			var back geoquest.Answer
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back != tt.answer {
				t.Errorf("round trip = %+v, want %+v", back, tt.answer)
			}
		})
	}
}

func TestAcceptanceRadius(t *testing.T) {
	if got := (geoquest.Coordinates{}).AcceptanceRadius(); got != geoquest.DefaultRadiusKm {
		t.Errorf("default radius = %v, want %v", got, geoquest.DefaultRadiusKm)
	}
	if got := (geoquest.Coordinates{RadiusKm: 250}).AcceptanceRadius(); got != 250 {
		t.Errorf("radius = %v, want 250", got)
	}
}
