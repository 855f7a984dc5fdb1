// file: internal/matcher/titles.go
// version: 1.1.0
// guid: 2e3f4a5b-6c7d-8e9f-0a1b-2c3d4e5f6a7b

package matcher

import "github.com/lithammer/fuzzysearch/fuzzy"

// Scores contributed by a track title toward an album candidate.
const (
	exactTitleScore = 1.0
	fuzzyTitleScore = 0.7

	// fuzzyRankCeiling bounds the RankMatch edit distance accepted as a
	// fuzzy hit. Larger distances are treated as no match.
	fuzzyRankCeiling = 5
)

// TitleSimilarity compares a track title against a candidate title and
// returns 1.0 for a normalized exact match, 0.7 for a fuzzy match within
// the rank ceiling, 0 otherwise.
func TitleSimilarity(title, candidate string) float64 {
	a := Normalize(title)
	b := Normalize(candidate)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return exactTitleScore
	}
	if rank := fuzzy.RankMatchNormalizedFold(a, b); rank >= 0 && rank <= fuzzyRankCeiling {
		return fuzzyTitleScore
	}
	if rank := fuzzy.RankMatchNormalizedFold(b, a); rank >= 0 && rank <= fuzzyRankCeiling {
		return fuzzyTitleScore
	}
	return 0
}

// BestTitle returns the index and score of the candidate whose title
// best matches title, or (-1, 0) when nothing scores above zero.
func BestTitle(title string, candidates []string) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if s := TitleSimilarity(title, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
