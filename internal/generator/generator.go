// Package generator draws the exercise shown for each card.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/tuicards/internal/gapfill"
	"github.com/verte-zerg/tuicards/internal/keyword"
	"github.com/verte-zerg/tuicards/internal/model"
)

const (
	gapFillShare   = 0.4
	translateShare = 0.3
)

// Exercise is one rendered card draw.
type Exercise struct {
	Kind     model.ExerciseKind
	Prompt   string
	Expected string
	Hint     string
	// Context is extra text shown with the prompt (the translation for gap fills).
	Context string
}

// Generator selects exercise kinds. It is not safe for concurrent use.
type Generator struct {
	rnd   *rand.Rand
	synth *gapfill.Synthesizer
}

// New returns a Generator seeded with the current time.
func New(synth *gapfill.Synthesizer) *Generator {
	return NewWithSource(synth, time.Now().UnixNano())
}

// NewWithSource returns a Generator with a fixed seed.
func NewWithSource(synth *gapfill.Synthesizer, seed int64) *Generator {
	if synth == nil {
		synth = gapfill.New("")
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), synth: synth}
}

// Select picks the exercise kind for card and records it together with the
// expected answer on the card. A missing keyword is derived from the front
// text and stored on the card.
func (g *Generator) Select(card *model.Card) model.ExerciseKind {
	kind := g.pickKind(card)
	g.assign(card, kind)
	return kind
}

// Draw selects a kind for card and builds the prompt. A gap fill whose keyword
// cannot be found in the phrase is downgraded to Translate.
func (g *Generator) Draw(card *model.Card, deck model.DeckInfo) Exercise {
	kind := g.pickKind(card)
	ex := Exercise{Kind: kind}
	if kind == model.GapFill {
		res := g.synth.Synthesize(card.FrontText, card.Keyword)
		if res.OK {
			ex.Prompt = res.Text
			ex.Context = card.BackText
		} else {
			kind = model.Translate
			ex.Kind = kind
		}
	}
	g.assign(card, kind)
	ex.Expected = card.ExpectedAnswer
	switch kind {
	case model.Translate:
		ex.Prompt = card.FrontText
	case model.ReverseTranslate:
		ex.Prompt = card.BackText
	}
	ex.Hint = hint(kind, deck)
	return ex
}

// Shuffle reorders cards in place.
func (g *Generator) Shuffle(cards []model.Card) {
	g.rnd.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func (g *Generator) pickKind(card *model.Card) model.ExerciseKind {
	if strings.TrimSpace(card.Keyword) == "" {
		if kw, ok := keyword.Locate(card.FrontText); ok {
			card.Keyword = kw
		}
	}
	if strings.TrimSpace(card.Keyword) == "" {
		if g.rnd.Float64() < 0.5 {
			return model.Translate
		}
		return model.ReverseTranslate
	}
	r := g.rnd.Float64()
	switch {
	case r < gapFillShare:
		return model.GapFill
	case r < gapFillShare+translateShare:
		return model.Translate
	default:
		return model.ReverseTranslate
	}
}

func (g *Generator) assign(card *model.Card, kind model.ExerciseKind) {
	card.ExerciseType = kind
	card.LastAnswerCorrect = nil
	switch kind {
	case model.Translate:
		card.ExpectedAnswer = card.BackText
	case model.ReverseTranslate:
		card.ExpectedAnswer = card.FrontText
	case model.GapFill:
		card.ExpectedAnswer = card.Keyword
	}
}

func hint(kind model.ExerciseKind, deck model.DeckInfo) string {
	switch kind {
	case model.GapFill:
		return "missing word"
	case model.ReverseTranslate:
		return withLang("original phrase", deck.SourceLanguage)
	default:
		return withLang("translation", deck.TargetLanguage)
	}
}

func withLang(label, code string) string {
	if code == "" {
		return "type the " + label
	}
	return fmt.Sprintf("type the %s (%s)", label, code)
}
