package stats

import (
	"testing"

	"github.com/verte-zerg/tuicards/internal/model"
)

func TestRenderTableKindRows(t *testing.T) {
	rows := [][]string{
		kindRow(model.KindAggregate{Kind: model.GapFill, Correct: 39, Incorrect: 1}),
		kindRow(model.KindAggregate{Kind: model.ReverseTranslate, Correct: 2, Incorrect: 23}),
	}
	lines := renderTable(kindColumns, rows)
	want := []string{
		"Exercise Accuracy Correct Incorrect",
		"gapfill    97.50%      39         1",
		"reverse     8.00%       2        23",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRenderTableWideRunes(t *testing.T) {
	cols := []column{{title: "Deck"}, {title: "N", right: true}}
	lines := renderTable(cols, [][]string{{"日本語", "1"}, {"abc", "22"}})
	if lines[1] != "日本語  1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "abc    22" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestRenderTableTrimsUntitledColumn(t *testing.T) {
	lines := renderTable(dailyColumns, [][]string{{"2024-06-01", "0", ""}, {"2024-06-02", "10", "##"}, {"2024-06-03", "3", "#", "extra"}})
	want := []string{
		"Date       Cards",
		"2024-06-01     0",
		"2024-06-02    10 ##",
		"2024-06-03     3 #",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}
