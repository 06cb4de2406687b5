// Package answer grades free-text answers with tiered, typo-tolerant matching.
package answer

import (
	"strings"

	"github.com/verte-zerg/tuicards/internal/lang"
)

const (
	similarThreshold     = 0.75
	maxSimilarLenDiff    = 3
	stemSimilarThreshold = 0.8
	minStemLen           = 3
	minCleanContainedLen = 4
	minCleanContainedPct = 0.6
)

// Tier identifies the rule that accepted an answer.
type Tier int

// Acceptance tiers, evaluated in order.
const (
	TierRejected Tier = iota
	TierExact
	TierStem
	TierContains
	TierSimilar
	TierStemSimilar
	TierCleanContains
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierStem:
		return "stem"
	case TierContains:
		return "contains"
	case TierSimilar:
		return "similar"
	case TierStemSimilar:
		return "stem-similar"
	case TierCleanContains:
		return "clean-contains"
	default:
		return "rejected"
	}
}

// Verdict is the result of grading one answer.
type Verdict struct {
	Accepted bool
	Tier     Tier
}

// Evaluator grades answers. The zero value is ready to use.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Accept reports whether userAnswer is close enough to correctAnswer.
func (e *Evaluator) Accept(userAnswer, correctAnswer string) bool {
	return Evaluate(userAnswer, correctAnswer).Accepted
}

// Accept is Evaluator.Accept without a receiver.
func Accept(userAnswer, correctAnswer string) bool {
	return Evaluate(userAnswer, correctAnswer).Accepted
}

// Evaluate runs the tiers in order and stops at the first that accepts.
func Evaluate(userAnswer, correctAnswer string) Verdict {
	user := strings.ToLower(strings.TrimSpace(userAnswer))
	correct := strings.ToLower(strings.TrimSpace(correctAnswer))
	if user == "" || correct == "" {
		return Verdict{Tier: TierRejected}
	}

	if user == correct {
		return accepted(TierExact)
	}

	userStem := lang.Stem(user)
	correctStem := lang.Stem(correct)
	stemsUsable := lang.Len(userStem) >= minStemLen && lang.Len(correctStem) >= minStemLen
	if stemsUsable && userStem == correctStem {
		return accepted(TierStem)
	}

	if strings.Contains(user, correct) || strings.Contains(correct, user) {
		return accepted(TierContains)
	}

	diff := lang.Len(user) - lang.Len(correct)
	if diff < 0 {
		diff = -diff
	}
	if diff <= maxSimilarLenDiff && lang.Similarity(user, correct) > similarThreshold {
		return accepted(TierSimilar)
	}

	if stemsUsable && lang.Similarity(userStem, correctStem) > stemSimilarThreshold {
		return accepted(TierStemSimilar)
	}

	if cleanContains(lang.CleanToken(user), lang.CleanToken(correct)) {
		return accepted(TierCleanContains)
	}
	return Verdict{Tier: TierRejected}
}

func cleanContains(a, b string) bool {
	shorter, longer := a, b
	if lang.Len(shorter) > lang.Len(longer) {
		shorter, longer = longer, shorter
	}
	ls, ll := lang.Len(shorter), lang.Len(longer)
	if ls < minCleanContainedLen || float64(ls) < minCleanContainedPct*float64(ll) {
		return false
	}
	return strings.Contains(longer, shorter)
}

func accepted(t Tier) Verdict {
	return Verdict{Accepted: true, Tier: t}
}
