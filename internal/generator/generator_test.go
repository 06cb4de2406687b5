package generator

import (
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/tuicards/internal/gapfill"
	"github.com/verte-zerg/tuicards/internal/model"
)

func TestSelectDistribution(t *testing.T) {
	gen := NewWithSource(gapfill.New(""), 42)
	const draws = 3000
	counts := map[model.ExerciseKind]int{}
	for i := 0; i < draws; i++ {
		card := model.Card{FrontText: "Je mange une pomme", BackText: "I eat an apple", Keyword: "pomme"}
		counts[gen.Select(&card)]++
	}
	want := map[model.ExerciseKind]float64{
		model.GapFill:          0.4,
		model.Translate:        0.3,
		model.ReverseTranslate: 0.3,
	}
	for kind, share := range want {
		got := float64(counts[kind]) / draws
		if math.Abs(got-share) > 0.05 {
			t.Fatalf("%s share = %.3f, want %.2f±0.05", kind, got, share)
		}
	}
}

func TestSelectWithoutKeywordNeverGapFills(t *testing.T) {
	gen := NewWithSource(gapfill.New(""), 7)
	const draws = 2000
	counts := map[model.ExerciseKind]int{}
	for i := 0; i < draws; i++ {
		// Only stop words and short tokens: no keyword can be derived.
		card := model.Card{FrontText: "et le la", BackText: "and the"}
		counts[gen.Select(&card)]++
	}
	if counts[model.GapFill] != 0 {
		t.Fatalf("expected no gap fills, got %d", counts[model.GapFill])
	}
	got := float64(counts[model.Translate]) / draws
	if math.Abs(got-0.5) > 0.05 {
		t.Fatalf("translate share = %.3f, want 0.5±0.05", got)
	}
}

func TestSelectSetsExpectedAnswer(t *testing.T) {
	gen := NewWithSource(gapfill.New(""), 1)
	for i := 0; i < 200; i++ {
		card := model.Card{FrontText: "Je mange une pomme", BackText: "I eat an apple", Keyword: "pomme"}
		kind := gen.Select(&card)
		if card.ExerciseType != kind {
			t.Fatalf("card kind %s, returned %s", card.ExerciseType, kind)
		}
		var want string
		switch kind {
		case model.Translate:
			want = card.BackText
		case model.ReverseTranslate:
			want = card.FrontText
		case model.GapFill:
			want = card.Keyword
		}
		if card.ExpectedAnswer != want {
			t.Fatalf("%s: expected answer %q, want %q", kind, card.ExpectedAnswer, want)
		}
	}
}

func TestSelectDerivesKeyword(t *testing.T) {
	gen := NewWithSource(gapfill.New(""), 3)
	card := model.Card{FrontText: "Je mange une pomme délicieuse", BackText: "I eat a delicious apple"}
	gen.Select(&card)
	if card.Keyword != "délicieuse" {
		t.Fatalf("keyword = %q, want délicieuse", card.Keyword)
	}
}

func TestDrawPrompts(t *testing.T) {
	gen := NewWithSource(gapfill.New("___"), 11)
	deck := model.DeckInfo{SourceLanguage: "fr", TargetLanguage: "en"}
	seen := map[model.ExerciseKind]bool{}
	for i := 0; i < 300; i++ {
		card := model.Card{FrontText: "Je mange une pomme", BackText: "I eat an apple", Keyword: "pomme"}
		ex := gen.Draw(&card, deck)
		seen[ex.Kind] = true
		if ex.Expected != card.ExpectedAnswer {
			t.Fatalf("exercise expected %q, card expected %q", ex.Expected, card.ExpectedAnswer)
		}
		switch ex.Kind {
		case model.GapFill:
			if ex.Prompt != "Je mange une ___" || ex.Expected != "pomme" || ex.Context != card.BackText {
				t.Fatalf("unexpected gap fill %+v", ex)
			}
		case model.Translate:
			if ex.Prompt != card.FrontText || !strings.Contains(ex.Hint, "en") {
				t.Fatalf("unexpected translate %+v", ex)
			}
		case model.ReverseTranslate:
			if ex.Prompt != card.BackText || !strings.Contains(ex.Hint, "fr") {
				t.Fatalf("unexpected reverse %+v", ex)
			}
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected all three kinds, saw %v", seen)
	}
}

func TestDrawDowngradesUnmatchedGap(t *testing.T) {
	gen := NewWithSource(gapfill.New(""), 5)
	for i := 0; i < 300; i++ {
		card := model.Card{FrontText: "Bonjour tout le monde", BackText: "Hello everyone", Keyword: "voiture"}
		ex := gen.Draw(&card, model.DeckInfo{})
		if ex.Kind == model.GapFill {
			t.Fatalf("gap fill drawn for keyword absent from phrase")
		}
		if card.ExerciseType != ex.Kind {
			t.Fatalf("card kind %s, exercise kind %s", card.ExerciseType, ex.Kind)
		}
	}
}

func TestShuffleKeepsCards(t *testing.T) {
	gen := NewWithSource(nil, 9)
	cards := []model.Card{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	gen.Shuffle(cards)
	sum := int64(0)
	for _, c := range cards {
		sum += c.ID
	}
	if len(cards) != 4 || sum != 10 {
		t.Fatalf("shuffle lost cards: %+v", cards)
	}
}
