// Package similarity provides edit-distance based string comparison used by
// merchant normalization and grouping. All functions are pure; pairwise
// comparison is O(len(a)*len(b)), so callers must bound candidate sets.
package similarity

import "strings"

// DefaultThreshold is the similarity score at or above which two strings
// are considered a match.
const DefaultThreshold = 0.7

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-character insertions, deletions, and
// substitutions needed to transform one into the other. Comparison is
// case-sensitive at this layer.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row dynamic programming; prev holds the previous row.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			curr[j] = min(deletion, min(insertion, substitution))
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Score returns a similarity score in [0, 1]: 1 for identical strings
// (ignoring case), 0 for completely different ones. Two empty strings
// score 1.
func Score(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}

	dist := Distance(strings.ToLower(a), strings.ToLower(b))
	return 1 - float64(dist)/float64(maxLen)
}

// IsMatch reports whether a and b score at or above threshold.
func IsMatch(a, b string, threshold float64) bool {
	return Score(a, b) >= threshold
}

// Match holds the winning candidate from BestMatch.
type Match struct {
	Value string
	Score float64
}

// BestMatch returns the candidate with the strictly highest score meeting
// threshold. Ties keep the first-seen candidate. The second return value is
// false when no candidate meets the threshold.
func BestMatch(target string, candidates []string, threshold float64) (Match, bool) {
	var best Match
	found := false

	for _, candidate := range candidates {
		score := Score(target, candidate)
		if score > best.Score && score >= threshold {
			best = Match{Value: candidate, Score: score}
			found = true
		}
	}

	return best, found
}
