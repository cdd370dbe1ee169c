// Package selector draws the questions for a session from a bank.
package selector

import (
	"math/rand/v2"

	"github.com/playperu/geoquest/internal/geoquest"
)

// Select returns up to count distinct questions of the given difficulty in
// random order. When fewer match, all matches are returned. bank is not
// modified. A nil rng uses the global source.
func Select(bank []geoquest.Question, d geoquest.Difficulty, count int, rng *rand.Rand) []geoquest.Question {
	if count <= 0 {
		return []geoquest.Question{}
	}

	out := make([]geoquest.Question, 0, len(bank))
	for _, q := range bank {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng != nil {
		rng.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}

	if count > len(out) {
		count = len(out)
	}
	return out[:count:count]
}
