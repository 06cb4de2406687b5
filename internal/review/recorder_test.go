package review

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuicards/internal/model"
)

type fakeService struct {
	mu       sync.Mutex
	due      int
	err      error
	block    chan struct{}
	ratings  []model.Rating
	sessions [][2]int
}

func (f *fakeService) UpdateStatus(ctx context.Context, _ int64, rating model.Rating) (int, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.ratings = append(f.ratings, rating)
	return f.due, nil
}

func (f *fakeService) RecordSession(_ context.Context, studied, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, [2]int{studied, seconds})
	return nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitAll(t *testing.T, r *Recorder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}

func TestRecorderForwardsCalls(t *testing.T) {
	svc := &fakeService{due: 4}
	r := NewRecorder(svc, nil, time.Second)

	_, ok := r.DueCount()
	assert.False(t, ok)

	r.UpdateStatus(1, model.RatingGood)
	waitAll(t, r)
	r.RecordSession(3, 42)
	waitAll(t, r)

	due, ok := r.DueCount()
	assert.True(t, ok)
	assert.Equal(t, 4, due)
	assert.Equal(t, []model.Rating{model.RatingGood}, svc.ratings)
	assert.Equal(t, [][2]int{{3, 42}}, svc.sessions)
	assert.Zero(t, r.Failures())
}

func TestRecorderSwallowsErrors(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc := &fakeService{err: errors.New("connection refused")}
	r := NewRecorder(svc, logger, time.Second)

	r.UpdateStatus(9, model.RatingAgain)
	r.RecordSession(1, 5)
	waitAll(t, r)

	assert.Equal(t, 2, r.Failures())
	_, ok := r.DueCount()
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "failed to update status")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestRecorderReturnsWithoutWaiting(t *testing.T) {
	svc := &fakeService{block: make(chan struct{})}
	r := NewRecorder(svc, nil, time.Second)

	done := make(chan struct{})
	go func() {
		r.UpdateStatus(1, model.RatingEasy)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("UpdateStatus blocked on the service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(svc.block)
	waitAll(t, r)
	assert.Equal(t, []model.Rating{model.RatingEasy}, svc.ratings)
}

func TestRecorderTimesOutSlowCalls(t *testing.T) {
	svc := &fakeService{block: make(chan struct{})}
	r := NewRecorder(svc, nil, 20*time.Millisecond)
	r.UpdateStatus(1, model.RatingGood)
	waitAll(t, r)
	assert.Equal(t, 1, r.Failures())
}

type perCardService struct {
	due   map[int64]int
	gates map[int64]chan struct{}
}

func (p *perCardService) UpdateStatus(ctx context.Context, cardID int64, _ model.Rating) (int, error) {
	if gate, ok := p.gates[cardID]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return p.due[cardID], nil
}

func (p *perCardService) RecordSession(context.Context, int, int) error { return nil }

func TestRecorderKeepsDueCountOfLatestRating(t *testing.T) {
	gate := make(chan struct{})
	svc := &perCardService{
		due:   map[int64]int{1: 5, 2: 3},
		gates: map[int64]chan struct{}{1: gate},
	}
	r := NewRecorder(svc, nil, time.Second)

	r.UpdateStatus(1, model.RatingAgain)
	r.UpdateStatus(2, model.RatingGood)
	require.Eventually(t, func() bool {
		due, ok := r.DueCount()
		return ok && due == 3
	}, time.Second, 5*time.Millisecond)

	// The first rating finishes last and must not replace the newer count.
	close(gate)
	waitAll(t, r)
	due, ok := r.DueCount()
	assert.True(t, ok)
	assert.Equal(t, 3, due)
	assert.Zero(t, r.Failures())
}

func TestOfflineTracksDueCards(t *testing.T) {
	cards := []model.Card{{ID: 1}, {ID: 2}, {ID: 3}}
	o := NewOffline(cards, nil)
	ctx := context.Background()

	due, err := o.UpdateStatus(ctx, 1, model.RatingGood)
	require.NoError(t, err)
	assert.Equal(t, 2, due)

	due, err = o.UpdateStatus(ctx, 2, model.RatingAgain)
	require.NoError(t, err)
	assert.Equal(t, 2, due)

	require.NoError(t, o.RecordSession(ctx, 2, 30))
}
