package cli

import (
	"fmt"
	"strings"
)

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 2

// Suggest returns the choice closest to value (case-insensitive Damerau-Levenshtein
// distance), if it is within maxSuggestDistance edits.
func Suggest(value string, choices []string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	v := strings.ToLower(strings.TrimSpace(value))
	for _, c := range choices {
		if d := editDistance(v, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// InvalidChoice formats the error for a flag value outside choices.
func InvalidChoice(name, value string, choices []string) error {
	if s, ok := Suggest(value, choices); ok {
		return fmt.Errorf("unknown %s %q, did you mean %q?", name, value, s)
	}
	return fmt.Errorf("unknown %s %q (use one of %s)", name, value, strings.Join(choices, ", "))
}

// editDistance is the Damerau-Levenshtein distance between a and b: insertions,
// deletions, substitutions and adjacent transpositions each cost one edit.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return len(ra) + len(rb)
	}
	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[len(ra)][len(rb)]
}
