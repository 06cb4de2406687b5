package stats

import (
	"sort"

	"github.com/verte-zerg/tuicards/internal/model"
)

// SelectWeakCards returns up to top card IDs that were rated again or
// answered wrong, weakest first. A non-positive top returns all of them.
func SelectWeakCards(aggs []model.CardAggregate, top int) []int64 {
	candidates := make([]model.CardAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Again > 0 || agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := cardAccuracy(candidates[i]), cardAccuracy(candidates[j])
		if ai != aj {
			return ai < aj
		}
		if candidates[i].Again != candidates[j].Again {
			return candidates[i].Again > candidates[j].Again
		}
		return candidates[i].CardID < candidates[j].CardID
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	ids := make([]int64, 0, top)
	for i := 0; i < top; i++ {
		ids = append(ids, candidates[i].CardID)
	}
	return ids
}

// PrioritizeCards moves cards listed in weak to the front, in weak order,
// keeping the rest in their original order.
func PrioritizeCards(cards []model.Card, weak []int64) []model.Card {
	if len(weak) == 0 {
		return cards
	}
	rank := make(map[int64]int, len(weak))
	for i, id := range weak {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	out := make([]model.Card, 0, len(cards))
	var rest []model.Card
	front := make([]*model.Card, len(weak))
	for i := range cards {
		if r, ok := rank[cards[i].ID]; ok && front[r] == nil {
			front[r] = &cards[i]
			continue
		}
		rest = append(rest, cards[i])
	}
	for _, c := range front {
		if c != nil {
			out = append(out, *c)
		}
	}
	return append(out, rest...)
}

func cardAccuracy(agg model.CardAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
