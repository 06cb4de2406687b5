// Package lang provides the text primitives shared by the exercise engine:
// heuristic stemming, edit-distance similarity and token cleaning.
package lang

import (
	"strings"
	"unicode/utf8"
)

// suffixes is ordered longest first. Within one length the order decides which
// suffix wins, so entries must not be re-sorted.
var suffixes = []string{
	// 8
	"issement",
	// 7
	"aciones", "amiento", "imiento",
	// 6
	"ements", "amente", "imento", "azione", "azioni", "ations", "ierung", "heiten",
	"keiten", "ischen", "lichen", "owanie", "ностью", "ования",
	// 5
	"ement", "mente", "ation", "ación", "ición", "ições", "euses", "ables", "ibles",
	"istes", "ismes", "iendo", "ungen", "ность", "ество", "ością",
	// 4
	"ment", "euse", "able", "ible", "iste", "isme", "ando", "endo", "ados", "adas",
	"idos", "idas", "ness", "ings", "heit", "keit", "lich", "isch", "eren", "anie",
	"enie", "owie", "ości", "ость", "ение", "ания", "ание", "ться",
	// 3
	"ado", "ada", "ido", "ida", "ção", "eux", "ons", "ait", "ing", "ung", "ies",
	"ers", "est", "ern", "ach", "ami", "ego", "emu", "ych", "ymi", "owa", "ами",
	"ями", "ого", "его", "ому", "ему", "ыми", "ими", "ать", "ять", "ить",
	// 2
	"ed", "ly", "er", "en", "es", "as", "os", "ez", "ir", "ar", "ów", "ym", "ie",
	"ий", "ый", "ой", "ая", "яя", "ое", "ее", "ов", "ев", "ах", "ях", "ом", "ем",
	"ам", "ям", "ть",
	// 1
	"s", "e", "a", "o", "i", "ą", "ę", "а", "я", "ы", "и", "у", "ю", "о", "е",
}

// Stem lower-cases word and strips known inflectional suffixes. The first
// suffix in table order that leaves a stem longer than len(suffix)+2 runes is
// removed; stripping repeats on the result until nothing matches, so Stem is
// idempotent.
func Stem(word string) string {
	w := strings.ToLower(word)
	if utf8.RuneCountInString(w) < 3 {
		return w
	}
	for {
		next, ok := stripSuffix(w)
		if !ok {
			return w
		}
		w = next
	}
}

func stripSuffix(w string) (string, bool) {
	n := utf8.RuneCountInString(w)
	for _, suffix := range suffixes {
		if !strings.HasSuffix(w, suffix) {
			continue
		}
		sl := utf8.RuneCountInString(suffix)
		if n-sl > sl+2 {
			return w[:len(w)-len(suffix)], true
		}
	}
	return w, false
}
