// Package scoring turns recorded answers into points, results and badges.
package scoring

import (
	"fmt"

	"github.com/playperu/geoquest/internal/geoquest"
)

// PointsPerCorrect is awarded for every correct answer. There is no partial
// credit and no time bonus.
const PointsPerCorrect = 10

func Points(a geoquest.Answer) int {
	if a.Correct {
		return PointsPerCorrect
	}
	return 0
}

// Compute derives results for a session with total questions. Accuracy is
// measured against total, not against the number of answers, so an abandoned
// session scores lower. It reports false when answers is empty.
func Compute(total, score int, answers []geoquest.Answer) (geoquest.Results, bool) {
	if len(answers) == 0 || total <= 0 {
		return geoquest.Results{}, false
	}

	correct, spent := 0, 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
		spent += a.TimeSpent
	}

	accuracy := 100 * float64(correct) / float64(total)
	return geoquest.Results{
		Score:          score,
		TotalQuestions: total,
		CorrectCount:   correct,
		Accuracy:       accuracy,
		AverageTime:    float64(spent) / float64(len(answers)),
		Badge:          BadgeFor(accuracy),
		Answers:        append([]geoquest.Answer(nil), answers...),
	}, true
}

// BadgeFor maps an accuracy percentage to a badge. Thresholds are inclusive.
func BadgeFor(accuracy float64) geoquest.Badge {
	switch {
	case accuracy >= 90:
		return geoquest.BadgePlatinum
	case accuracy >= 75:
		return geoquest.BadgeGold
	case accuracy >= 60:
		return geoquest.BadgeSilver
	default:
		return geoquest.BadgeBronze
	}
}

var badgeLabels = map[geoquest.Badge]string{
	geoquest.BadgePlatinum: "PLATINUM EXPLORER",
	geoquest.BadgeGold:     "GOLD EXPLORER",
	geoquest.BadgeSilver:   "SILVER EXPLORER",
	geoquest.BadgeBronze:   "BRONZE EXPLORER",
}

// BadgeLabel is the display title for a badge.
func BadgeLabel(b geoquest.Badge) string {
	return badgeLabels[b]
}

// FormatTime renders whole seconds as M:SS.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
