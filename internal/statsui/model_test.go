package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuicards/internal/model"
	"github.com/verte-zerg/tuicards/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuicards.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	rec := model.SessionRecord{
		UUID:         "a",
		DeckID:       1,
		DeckName:     "french",
		StartedAt:    start,
		EndedAt:      start.Add(2 * time.Minute),
		CardsTotal:   2,
		CardsStudied: 2,
		Again:        1,
		Good:         1,
		DurationMs:   120000,
	}
	answers := []model.AnswerRecord{
		{CardID: 7, Kind: model.GapFill, Correct: false, Rating: model.RatingAgain},
		{CardID: 8, Kind: model.Translate, Correct: true, Rating: model.RatingGood},
	}
	if _, err := st.InsertSession(context.Background(), rec, answers); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return st
}

func TestOverviewAndTabs(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 5}, 5)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Learning Curves", "window=5"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q", want)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabExercises {
		t.Fatalf("expected exercises tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "gapfill") {
		t.Fatalf("expected exercise kind row in %q", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "#7") {
		t.Fatalf("expected weak card row in %q", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview")
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 7}, 5)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestFilterForm(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{CurveWindow: 5}, 5)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("2")
	m.filterInputs[2].SetValue("x")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected validation error")
	}

	m.filterInputs[2].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to apply")
	}
	if m.cfg.DeckID != 2 || m.cfg.Last != 3 || m.cfg.CurveWindow != 5 {
		t.Fatalf("unexpected config %+v", m.cfg)
	}
	if len(m.report.Sessions) != 0 {
		t.Fatalf("expected no sessions for deck 2")
	}
}
