package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanToken lower-cases s and drops everything that is not a letter or a
// combining mark.
func CleanToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IsWordRune reports whether r can be part of a word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}

// Len returns the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
