// file: internal/matcher/fuzzy.go
// version: 1.2.0
// guid: 87249967-090a-45fc-bbb2-dfb6b91c4d05

package matcher

import "strings"

// FuzzyResult holds a scored search result.
type FuzzyResult struct {
	Index int // index into the original slice
	Score int // 0-100, higher is better
}

// LevenshteinDistance computes the edit distance between two strings.
func LevenshteinDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Single-row DP
	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

// ScoreMatch scores how well query matches target. Returns 0-100.
func ScoreMatch(query, target string) int {
	q := Normalize(query)
	t := Normalize(target)
	if q == "" || t == "" {
		return 0
	}

	if q == t {
		return 100
	}

	score := 0

	if strings.HasPrefix(t, q) {
		score = max(score, 90)
	}

	if strings.Contains(t, q) {
		// Shorter targets are more specific matches.
		ratio := float64(len(q)) / float64(len(t))
		score = max(score, 60+int(ratio*25))
	}

	words := strings.Fields(t)
	for _, w := range words {
		if strings.HasPrefix(w, q) {
			score = max(score, 80)
			break
		}
	}

	// Whole-string edit distance.
	dist := LevenshteinDistance(q, t)
	maxLen := max(len(q), len(t))
	if maxLen > 0 {
		similarity := 1.0 - float64(dist)/float64(maxLen)
		score = max(score, max(0, int(similarity*50)))
	}

	// Best matching individual word.
	for _, w := range words {
		dist := LevenshteinDistance(q, w)
		wLen := max(len(q), len(w))
		if wLen > 0 {
			similarity := 1.0 - float64(dist)/float64(wLen)
			score = max(score, max(0, int(similarity*70)))
		}
	}

	return score
}

// RankResults scores each candidate against the query and returns results
// sorted by score descending. Only results with score >= minScore are returned.
func RankResults(query string, candidates []string, minScore int) []FuzzyResult {
	var results []FuzzyResult
	for i, c := range candidates {
		s := ScoreMatch(query, c)
		if s >= minScore {
			results = append(results, FuzzyResult{Index: i, Score: s})
		}
	}
	// Stable insertion sort keeps provider ordering on ties.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	return results
}
