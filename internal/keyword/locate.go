// Package keyword picks the salient word of a phrase used as the gap-fill target.
package keyword

import (
	"sort"
	"strings"

	"github.com/verte-zerg/tuicards/internal/lang"
)

const minKeywordLen = 3

// IsStopWord reports whether word (any case) is in the stop-word table.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// Candidates returns the cleaned, non-stop-word tokens of phrase in phrase
// order.
func Candidates(phrase string) []string {
	var out []string
	for _, tok := range strings.Fields(phrase) {
		clean := lang.CleanToken(tok)
		if lang.Len(clean) < minKeywordLen {
			continue
		}
		if IsStopWord(clean) {
			continue
		}
		out = append(out, clean)
	}
	return out
}

// Locate returns the longest candidate keyword of phrase. Ties go to the word
// that occurs first.
func Locate(phrase string) (string, bool) {
	candidates := Candidates(phrase)
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return lang.Len(candidates[i]) > lang.Len(candidates[j])
	})
	return candidates[0], true
}
