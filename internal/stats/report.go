package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/tuicards/internal/model"
	"github.com/verte-zerg/tuicards/internal/store"
)

const dateLayout = "2006-01-02"

// Report holds everything the stats command prints.
type Report struct {
	Sessions       []model.SessionAggregate
	KindsAll       []model.KindAggregate
	KindsWindow    []model.KindAggregate
	WeakCards      []int64
	WeakCardCounts map[int64]model.CardAggregate
}

// BuildReport loads sessions matching cfg, keeps the last cfg.Last of them
// and aggregates answers over all of them and over the curve window.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, weakTop int) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	window := sessions
	if cfg.CurveWindow > 0 && len(sessions) > cfg.CurveWindow {
		window = sessions[len(sessions)-cfg.CurveWindow:]
	}
	kindsAll, err := st.ListKindAggregatesForSessions(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	kindsWindow, err := st.ListKindAggregatesForSessions(ctx, sessionIDs(window))
	if err != nil {
		return Report{}, err
	}
	cards, err := st.GetWeakCards(ctx, len(window), cfg.DeckID)
	if err != nil {
		return Report{}, err
	}
	counts := make(map[int64]model.CardAggregate, len(cards))
	for _, c := range cards {
		counts[c.CardID] = c
	}

	return Report{
		Sessions:       sessions,
		KindsAll:       kindsAll,
		KindsWindow:    kindsWindow,
		WeakCards:      SelectWeakCards(cards, weakTop),
		WeakCardCounts: counts,
	}, nil
}

// DailyTotals sums cards studied per local calendar day over the last days
// days ending at now, oldest first, including days without sessions.
func DailyTotals(sessions []model.SessionAggregate, days int, now time.Time) []model.DailyStat {
	if days <= 0 {
		return nil
	}
	totals := map[string]int{}
	for _, s := range sessions {
		totals[s.EndedAt.In(now.Location()).Format(dateLayout)] += s.CardsStudied
	}
	out := make([]model.DailyStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dateLayout)
		out = append(out, model.DailyStat{Date: day, CardsStudied: totals[day]})
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
