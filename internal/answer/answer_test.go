package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTiers(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		correct string
		tier    Tier
	}{
		{"exact ignores case", "Casa", "casa", TierExact},
		{"exact trims", "  pomme ", "pomme", TierExact},
		{"stem", "casas", "casa", TierStem},
		{"contains", "the library", "library", TierContains},
		{"similar", "bibliotheque", "bibliothèque", TierSimilar},
		{"stem similar", "wahrscheinlichkeiten", "warscheinlich", TierStemSimilar},
		{"clean contains", "rendezvous", "un rendez-vous!!!", TierCleanContains},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Evaluate(tc.user, tc.correct)
			assert.True(t, v.Accepted)
			assert.Equal(t, tc.tier, v.Tier)
		})
	}
}

func TestEvaluateRejects(t *testing.T) {
	tests := []struct {
		user    string
		correct string
	}{
		{"xyz", "casa"},
		{"tomate", "pomme"},
		{"", "casa"},
		{"   ", "casa"},
		{"casa", ""},
	}
	for _, tc := range tests {
		t.Run(tc.user+"/"+tc.correct, func(t *testing.T) {
			v := Evaluate(tc.user, tc.correct)
			assert.False(t, v.Accepted)
			assert.Equal(t, TierRejected, v.Tier)
		})
	}
}

func TestSimilarRequiresCloseLength(t *testing.T) {
	// Similarity is 1-5/21 but the answer is five runes shorter.
	assert.False(t, Accept("abcdefghijpqrstu", "abcdefghijklmnopqrstu"))
	assert.False(t, Accept("abcdefghij", "abcdefxyzwvu"))
}

func TestEvaluatorAccept(t *testing.T) {
	e := NewEvaluator()
	assert.True(t, e.Accept("pomme", "pomme"))
	assert.False(t, e.Accept("tomate", "pomme"))
}
