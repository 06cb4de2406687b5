package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/tuicards/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	cpm, acc := SessionMetrics(10, 8, 2, 120000)
	if math.Abs(cpm-5) > 1e-9 {
		t.Fatalf("expected 5 cards/min, got %f", cpm)
	}
	if math.Abs(acc-0.8) > 1e-9 {
		t.Fatalf("expected accuracy 0.8, got %f", acc)
	}
	cpm, acc = SessionMetrics(0, 0, 0, 0)
	if cpm != 0 || acc != 0 {
		t.Fatalf("expected zero metrics, got %f %f", cpm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestSelectWeakCards(t *testing.T) {
	aggs := []model.CardAggregate{
		{CardID: 1, Correct: 3, Incorrect: 0},
		{CardID: 2, Correct: 1, Incorrect: 1, Again: 1},
		{CardID: 3, Correct: 0, Incorrect: 2, Again: 2},
		{CardID: 4, Correct: 2, Incorrect: 0, Again: 1},
	}
	got := SelectWeakCards(aggs, 0)
	want := []int64{3, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if top := SelectWeakCards(aggs, 1); len(top) != 1 || top[0] != 3 {
		t.Fatalf("unexpected top 1: %v", top)
	}
}

func TestPrioritizeCards(t *testing.T) {
	cards := []model.Card{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	got := PrioritizeCards(cards, []int64{3, 9, 1})
	order := []int64{3, 1, 2, 4}
	for i, id := range order {
		if got[i].ID != id {
			t.Fatalf("unexpected order %+v", got)
		}
	}
	if same := PrioritizeCards(cards, nil); len(same) != 4 || same[0].ID != 1 {
		t.Fatalf("expected unchanged cards")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}

	buf.Reset()
	sessions := []model.SessionAggregate{
		{CardsStudied: 4, Correct: 3, Incorrect: 1, DurationMs: 60000},
		{CardsStudied: 2, Correct: 2, Incorrect: 0, DurationMs: 60000, Aborted: true},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2 (1 aborted)", "Cards studied: 6", "Avg cards/min: 3.00", "Avg Accuracy: 87.50%", "Best Accuracy: 100.00%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestRenderKindTable(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.KindAggregate{{Kind: model.GapFill, Correct: 3, Incorrect: 1}}
	if err := RenderKindTable(&buf, "By exercise", aggs); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "gapfill") || !strings.Contains(buf.String(), "75.00%") {
		t.Fatalf("unexpected table %q", buf.String())
	}
}

func TestRenderCurvesWithWidthKeepsRecent(t *testing.T) {
	var sessions []model.SessionAggregate
	for i := 0; i < 50; i++ {
		sessions = append(sessions, model.SessionAggregate{CardsStudied: i + 1, Correct: i, Incorrect: 1, DurationMs: 60000})
	}
	var buf bytes.Buffer
	if err := RenderCurvesWithWidth(&buf, sessions, 1, 30); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	var accLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "Accuracy %") {
			accLine = l
		}
	}
	if accLine == "" {
		t.Fatalf("missing accuracy line in %q", buf.String())
	}
	spark := accLine[curveLabelWidth:strings.Index(accLine, "  [")]
	if len(spark) != 30-curveLabelWidth {
		t.Fatalf("expected %d points, got %d", 30-curveLabelWidth, len(spark))
	}
}

func TestRenderDaily(t *testing.T) {
	var buf bytes.Buffer
	days := []model.DailyStat{{Date: "2024-06-01", CardsStudied: 0}, {Date: "2024-06-02", CardsStudied: 10}}
	if err := RenderDaily(&buf, days); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2024-06-02    10 "+strings.Repeat("#", 40)) {
		t.Fatalf("unexpected daily output %q", out)
	}
}
