// Package geoquest defines the core domain types of the quiz.
// It has zero external dependencies.
package geoquest

import "time"

// DefaultRadiusKm is the acceptance radius used when a location has none.
const DefaultRadiusKm = 100.0

type Coordinates struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius,omitempty"`
}

// AcceptanceRadius returns RadiusKm, or DefaultRadiusKm when it is unset.
func (c Coordinates) AcceptanceRadius() float64 {
	if c.RadiusKm > 0 {
		return c.RadiusKm
	}
	return DefaultRadiusKm
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Category string

const (
	CategoryCapitals  Category = "capitals"
	CategoryCities    Category = "cities"
	CategoryMountains Category = "mountains"
	CategoryRivers    Category = "rivers"
	CategoryRegions   Category = "geographic-regions"
	CategoryFunFacts  Category = "fun-facts"
)

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeClick          QuestionType = "click-to-answer"
)

// Question is immutable once loaded from a bank.
type Question struct {
	ID             string
	Type           QuestionType
	Difficulty     Difficulty
	Category       Category
	Prompt         string
	Options        []string
	Correct        Value
	Explanation    string
	TargetLocation *Coordinates
}

// ValueKind discriminates answer values.
type ValueKind string

const (
	KindNone  ValueKind = ""
	KindText  ValueKind = "text"
	KindPoint ValueKind = "point"
)

// Value is an answer value, either Text or Point. A nil Value means the
// question went unanswered.
type Value interface {
	Kind() ValueKind
}

// Text answers multiple-choice and true-false questions.
type Text string

func (Text) Kind() ValueKind { return KindText }

// Point answers click-to-answer questions.
type Point Coordinates

func (Point) Kind() ValueKind { return KindPoint }

// KindOf is Kind that tolerates a nil Value.
func KindOf(v Value) ValueKind {
	if v == nil {
		return KindNone
	}
	return v.Kind()
}

type Answer struct {
	QuestionID string
	Value      Value
	Correct    bool
	TimeSpent  int // seconds
}

type Badge string

const (
	BadgeBronze   Badge = "bronze"
	BadgeSilver   Badge = "silver"
	BadgeGold     Badge = "gold"
	BadgePlatinum Badge = "platinum"
)

// Results summarize a session. They are derived on demand and never stored.
type Results struct {
	Score          int      `json:"score"`
	TotalQuestions int      `json:"totalQuestions"`
	CorrectCount   int      `json:"correctAnswers"`
	Accuracy       float64  `json:"accuracy"`
	AverageTime    float64  `json:"averageTime"`
	Badge          Badge    `json:"badge"`
	Answers        []Answer `json:"answers"`
}

// QuestionBank is the document questions are loaded from.
type QuestionBank struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Questions   []Question `json:"questions"`
}

// Summary is a read-only snapshot of a session.
type Summary struct {
	SessionID  string
	Difficulty Difficulty
	Index      int
	Total      int
	Answers    []Answer
	Score      int
	Active     bool
	StartedAt  time.Time
}
