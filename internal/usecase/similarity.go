package usecase

import (
	"strings"
	"unicode/utf8"
)

// Similarity scores two normalized strings in [0,1]. It is the larger of
// the normalized edit-distance score and a containment score, so "豆腐" vs
// "絹ごし豆腐" still ranks well. Symmetric; identical strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return max(editSimilarity(a, b), containmentSimilarity(a, b))
}

// editSimilarity is 1 - levenshtein/max(len) over runes.
func editSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshteinDistance(a, b))/float64(longest)
}

// containmentSimilarity is 0.5 + 0.5*short/long when one string contains the other, else 0.
func containmentSimilarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	short, long := a, b
	ls, ll := la, lb
	if la > lb {
		short, long = b, a
		ls, ll = lb, la
	}
	if !strings.Contains(long, short) {
		return 0
	}
	return 0.5 + 0.5*float64(ls)/float64(ll)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
