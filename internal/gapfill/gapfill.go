// Package gapfill turns a phrase into a gap-fill exercise by blanking the
// token that best matches a keyword.
package gapfill

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/tuicards/internal/lang"
)

// DefaultPlaceholder replaces the blanked word.
const DefaultPlaceholder = "_____"

const (
	similarityThreshold = 0.7
	minContainedLen     = 3 // articles and other short tokens never count as contained
)

// Tier identifies which matching strategy found the blanked token.
type Tier int

// Matching tiers, tried in order.
const (
	TierNone Tier = iota
	TierExact
	TierStem
	TierContains
	TierSimilar
	TierLiteral
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierStem:
		return "stem"
	case TierContains:
		return "contains"
	case TierSimilar:
		return "similar"
	case TierLiteral:
		return "literal"
	default:
		return "none"
	}
}

// Result is the outcome of Synthesize. When OK is false Text is the
// unmodified phrase.
type Result struct {
	Text string
	Tier Tier
	OK   bool
}

// Synthesizer blanks one keyword occurrence per phrase.
type Synthesizer struct {
	placeholder string
}

// New returns a Synthesizer using placeholder, or DefaultPlaceholder when empty.
func New(placeholder string) *Synthesizer {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Synthesizer{placeholder: placeholder}
}

// Placeholder returns the gap marker.
func (s *Synthesizer) Placeholder() string {
	return s.placeholder
}

var tokenRe = regexp.MustCompile(`\S+`)

type token struct {
	start, end int
	clean      string
}

type matcher func(clean, keyword, keywordStem string) bool

// Synthesize replaces the first token of phrase that matches keyword. Tiers are
// tried in order and the first tier with a match wins.
func (s *Synthesizer) Synthesize(phrase, keyword string) Result {
	kw := lang.CleanToken(keyword)
	if strings.TrimSpace(keyword) == "" {
		return Result{Text: phrase}
	}

	var tokens []token
	for _, loc := range tokenRe.FindAllStringIndex(phrase, -1) {
		clean := lang.CleanToken(phrase[loc[0]:loc[1]])
		if clean == "" {
			continue
		}
		tokens = append(tokens, token{start: loc[0], end: loc[1], clean: clean})
	}

	// A multi-word keyword can never equal a single token.
	multiWord := len(strings.Fields(keyword)) > 1
	if kw != "" && !multiWord {
		kwStem := lang.Stem(kw)
		tiers := []struct {
			tier  Tier
			match matcher
		}{
			{TierExact, matchExact},
			{TierStem, matchStem},
			{TierContains, matchContains},
			{TierSimilar, matchSimilar},
		}
		for _, tr := range tiers {
			for _, tok := range tokens {
				if tr.match(tok.clean, kw, kwStem) {
					return Result{Text: s.blankToken(phrase, tok), Tier: tr.tier, OK: true}
				}
			}
		}
	}

	if text, ok := s.replaceLiteral(phrase, strings.TrimSpace(keyword)); ok {
		return Result{Text: text, Tier: TierLiteral, OK: true}
	}
	return Result{Text: phrase}
}

func matchExact(clean, kw, _ string) bool {
	return clean == kw
}

func matchStem(clean, _, kwStem string) bool {
	if utf8.RuneCountInString(kwStem) <= 2 {
		return false
	}
	return lang.Stem(clean) == kwStem
}

func matchContains(clean, kw, _ string) bool {
	shorter, longer := clean, kw
	if lang.Len(shorter) > lang.Len(longer) {
		shorter, longer = longer, shorter
	}
	if lang.Len(longer) <= lang.Len(shorter) || lang.Len(shorter) < minContainedLen {
		return false
	}
	return strings.Contains(longer, shorter)
}

func matchSimilar(clean, kw, _ string) bool {
	return lang.Similarity(clean, kw) > similarityThreshold
}

// blankToken replaces the word part of tok, keeping leading and trailing
// punctuation.
func (s *Synthesizer) blankToken(phrase string, tok token) string {
	raw := phrase[tok.start:tok.end]
	lead := strings.IndexFunc(raw, lang.IsWordRune)
	trail := strings.LastIndexFunc(raw, lang.IsWordRune)
	if lead < 0 {
		return phrase[:tok.start] + s.placeholder + phrase[tok.end:]
	}
	_, size := utf8.DecodeRuneInString(raw[trail:])
	core := raw[:lead] + s.placeholder + raw[trail+size:]
	return phrase[:tok.start] + core + phrase[tok.end:]
}

// replaceLiteral blanks the first case-insensitive occurrence of keyword that
// is not glued to other letters or digits.
func (s *Synthesizer) replaceLiteral(phrase, keyword string) (string, bool) {
	if keyword == "" {
		return phrase, false
	}
	re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{M}\p{N}_])(` + regexp.QuoteMeta(keyword) + `)(?:[^\p{L}\p{M}\p{N}_]|$)`)
	if err != nil {
		return phrase, false
	}
	loc := re.FindStringSubmatchIndex(phrase)
	if loc == nil {
		return phrase, false
	}
	return phrase[:loc[2]] + s.placeholder + phrase[loc[3]:], true
}
