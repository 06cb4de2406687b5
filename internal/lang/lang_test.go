package lang

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSuffixTableOrderedLongestFirst(t *testing.T) {
	prev := utf8.RuneCountInString(suffixes[0])
	seen := map[string]bool{}
	for _, s := range suffixes {
		n := utf8.RuneCountInString(s)
		assert.LessOrEqual(t, n, prev, "suffix %q breaks longest-first order", s)
		assert.False(t, seen[s], "duplicate suffix %q", s)
		seen[s] = true
		prev = n
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"ab", "ab"},
		{"AB", "ab"},
		{"Casa", "casa"},
		{"casas", "casa"},
		{"pommes", "pomm"},
		{"pomme", "pomm"},
		{"Häuser", "häuser"},
		{"bewegungen", "bewegung"},
		{"красивая", "красив"},
	}
	for _, tc := range tests {
		t.Run(tc.word, func(t *testing.T) {
			assert.Equal(t, tc.want, Stem(tc.word))
		})
	}
}

func TestStemIdempotent(t *testing.T) {
	words := []string{
		"pommes", "nationalities", "mangeons", "rapidement", "hablando", "comiendo",
		"Entwicklungen", "Freiheiten", "красивая", "возможностью", "mieszkanie",
		"naturalmente", "informazioni", "organizations", "happiness", "running",
	}
	for _, w := range words {
		once := Stem(w)
		assert.Equal(t, once, Stem(once), "stem not idempotent for %q", w)
	}
}

func TestStemKeepsShortStems(t *testing.T) {
	// "es" would leave a two-rune stem.
	assert.Equal(t, "ases", Stem("ases"))
}

func TestDistanceAndSimilarity(t *testing.T) {
	assert.Equal(t, 0, Distance("casa", "casa"))
	assert.Equal(t, 3, Distance("kitten", "sitting"))
	assert.Equal(t, 3, Distance("", "abc"))
	assert.Equal(t, 1, Distance("straße", "strase"))

	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("xyz", "abc"), 1e-9)
}

func TestCleanToken(t *testing.T) {
	assert.Equal(t, "pomme", CleanToken("Pomme,"))
	assert.Equal(t, "lhomme", CleanToken("l'homme"))
	assert.Equal(t, "straße", CleanToken("«Straße!»"))
	assert.Equal(t, "", CleanToken("123"))
}
