package review

import (
	"context"
	"log/slog"
	"sync"

	"github.com/verte-zerg/tuicards/internal/model"
)

// Offline stands in for the review service when training from a local deck
// file. It keeps due cards in memory and only logs session summaries.
type Offline struct {
	logger *slog.Logger

	mu  sync.Mutex
	due map[int64]bool
}

// NewOffline returns an Offline service where every card in cards is due.
func NewOffline(cards []model.Card, logger *slog.Logger) *Offline {
	if logger == nil {
		logger = slog.Default()
	}
	due := make(map[int64]bool, len(cards))
	for _, c := range cards {
		due[c.ID] = true
	}
	return &Offline{logger: logger, due: due}
}

// UpdateStatus marks the card due again only for RatingAgain.
func (o *Offline) UpdateStatus(_ context.Context, cardID int64, rating model.Rating) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rating == model.RatingAgain {
		o.due[cardID] = true
	} else {
		delete(o.due, cardID)
	}
	return len(o.due), nil
}

// RecordSession logs the summary.
func (o *Offline) RecordSession(_ context.Context, cardsStudied, durationSeconds int) error {
	o.logger.Info("offline session", "studied", cardsStudied, "seconds", durationSeconds)
	return nil
}
