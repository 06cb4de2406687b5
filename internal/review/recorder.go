// Package review forwards ratings and session summaries to the review
// service without blocking the training flow.
package review

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/tuicards/internal/model"
)

// DefaultTimeout bounds each call to the service.
const DefaultTimeout = 10 * time.Second

// Service is the remote review API.
type Service interface {
	UpdateStatus(ctx context.Context, cardID int64, rating model.Rating) (int, error)
	RecordSession(ctx context.Context, cardsStudied, durationSeconds int) error
}

// Recorder calls the Service on background goroutines. Failures are logged
// and dropped; nothing is retried.
type Recorder struct {
	svc     Service
	logger  *slog.Logger
	timeout time.Duration

	wg       sync.WaitGroup
	seq      atomic.Int64
	failures atomic.Int64

	mu       sync.Mutex
	dueSeq   int64
	dueCount int
}

// NewRecorder returns a Recorder. A non-positive timeout uses DefaultTimeout.
func NewRecorder(svc Service, logger *slog.Logger, timeout time.Duration) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Recorder{svc: svc, logger: logger, timeout: timeout}
}

// UpdateStatus sends a card rating and returns immediately. The due count
// from a later rating is never overwritten by an earlier one.
func (r *Recorder) UpdateStatus(cardID int64, rating model.Rating) {
	n := r.seq.Add(1)
	r.run("update status", func(ctx context.Context) error {
		due, err := r.svc.UpdateStatus(ctx, cardID, rating)
		if err != nil {
			return err
		}
		r.storeDue(n, due)
		r.logger.Debug("card status updated", "card", cardID, "rating", string(rating), "due", due)
		return nil
	}, "card", cardID, "rating", string(rating))
}

// RecordSession sends the session summary and returns immediately.
func (r *Recorder) RecordSession(cardsStudied, durationSeconds int) {
	r.run("record session", func(ctx context.Context) error {
		if err := r.svc.RecordSession(ctx, cardsStudied, durationSeconds); err != nil {
			return err
		}
		r.logger.Debug("session recorded", "studied", cardsStudied, "seconds", durationSeconds)
		return nil
	}, "studied", cardsStudied, "seconds", durationSeconds)
}

// DueCount returns the deck due count from the most recently submitted
// update that succeeded.
func (r *Recorder) DueCount() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dueCount, r.dueSeq > 0
}

func (r *Recorder) storeDue(n int64, due int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.dueSeq {
		r.dueSeq = n
		r.dueCount = due
	}
}

// Failures returns the number of calls that failed.
func (r *Recorder) Failures() int {
	return int(r.failures.Load())
}

// Wait blocks until in-flight calls finish or ctx is done.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run(op string, call func(context.Context) error, attrs ...any) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			r.failures.Add(1)
			r.logger.Warn("failed to "+op, append(attrs, "err", err)...)
		}
	}()
}
