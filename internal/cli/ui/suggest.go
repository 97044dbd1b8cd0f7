package ui

import (
	"sort"
	"strings"
)

const (
	// maxSuggestionDistance is the largest edit distance still considered
	// a plausible typo.
	maxSuggestionDistance = 3
	// maxSuggestions bounds how many alternatives are offered.
	maxSuggestions = 3
)

// Suggest returns registered names close to the given one, nearest first.
// It is used to turn "unknown document type" failures into actionable
// messages.
func Suggest(name string, known []string) []string {
	type scored struct {
		value    string
		distance int
	}

	var close []scored
	for _, candidate := range known {
		dist := editDistance(strings.ToLower(name), strings.ToLower(candidate))
		if dist <= maxSuggestionDistance {
			close = append(close, scored{value: candidate, distance: dist})
		}
	}

	sort.Slice(close, func(i, j int) bool {
		if close[i].distance != close[j].distance {
			return close[i].distance < close[j].distance
		}
		return close[i].value < close[j].value
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(close) && i < maxSuggestions; i++ {
		result = append(result, close[i].value)
	}
	return result
}

// editDistance is the Levenshtein distance computed with a rolling pair of
// rows instead of the full matrix.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			best := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < best {
				best = ins
			}
			if sub := prev[j-1] + cost; sub < best {
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
