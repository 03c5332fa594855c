package search

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Scorer rates how well query matches text: 0 is a perfect match, 1 is no
// match at all.
type Scorer interface {
	Score(query, text string) float64
}

// maxSubstringScore caps the score of a verbatim substring hit so that it
// always ranks above an approximate one of the same length.
const maxSubstringScore = 0.25

// LevenshteinScorer is the default Scorer. Both inputs are compared
// case-insensitively.
type LevenshteinScorer struct{}

func (LevenshteinScorer) Score(query, text string) float64 {
	q := []rune(strings.ToLower(strings.TrimSpace(query)))
	t := []rune(strings.ToLower(strings.TrimSpace(text)))
	if len(q) == 0 || len(t) == 0 {
		return 1
	}

	qs, ts := string(q), string(t)
	if qs == ts {
		return 0
	}
	if strings.Contains(ts, qs) {
		uncovered := float64(len(t)-len(q)) / float64(len(t))
		return maxSubstringScore * uncovered
	}

	best := 1.0
	for size := len(q) - 1; size <= len(q)+1; size++ {
		if size < 1 {
			continue
		}
		if size >= len(t) {
			best = min(best, normalized(levenshtein.ComputeDistance(qs, ts), len(q), len(t)))
			break
		}
		for start := 0; start+size <= len(t); start++ {
			d := levenshtein.ComputeDistance(qs, string(t[start:start+size]))
			best = min(best, normalized(d, len(q), size))
			if best == 0 {
				return 0
			}
		}
	}
	return best
}

// normalized scales an edit distance by the longer of the two lengths so the
// result stays within [0, 1].
func normalized(distance, a, b int) float64 {
	return min(1, float64(distance)/float64(max(a, b)))
}
