package ui

import (
	"sort"
	"strings"
)

// DefaultMaxDistance is the largest edit distance FindSimilar accepts
const DefaultMaxDistance = 2

// FindSimilar returns the candidates within maxDistance edits of target,
// closest first. A maxDistance of zero uses DefaultMaxDistance. Matching
// ignores case.
//
// Example:
//
//	FindSimilar("pnmp", []string{"npm", "yarn", "pnpm", "bun"}, 0)
//	// Returns: ["pnpm"]
func FindSimilar(target string, candidates []string, maxDistance int) []string {
	if maxDistance == 0 {
		maxDistance = DefaultMaxDistance
	}

	type match struct {
		value    string
		distance int
	}
	var matches []match
	for _, c := range candidates {
		if d := LevenshteinDistance(strings.ToLower(target), strings.ToLower(c)); d <= maxDistance {
			matches = append(matches, match{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.value
	}
	return result
}

// LevenshteinDistance counts the single-character insertions, deletions and
// substitutions that turn a into b
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
