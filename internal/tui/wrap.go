package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// styleText styles every rune of text with base, except occurrences of
// highlight which use hl.
func styleText(text string, base lipgloss.Style, highlight string, hl lipgloss.Style) []styledRune {
	runes := []rune(text)
	hlRunes := []rune(highlight)
	out := make([]styledRune, 0, len(runes))
	for i := 0; i < len(runes); {
		if len(hlRunes) > 0 && hasPrefixAt(runes, hlRunes, i) {
			for _, r := range hlRunes {
				out = append(out, newStyledRune(r, hl))
			}
			i += len(hlRunes)
			continue
		}
		out = append(out, newStyledRune(runes[i], base))
		i++
	}
	return out
}

// diffRunes styles the learner's answer rune by rune against expected,
// ignoring case. Extra runes are marked wrong.
func diffRunes(answer, expected string) []styledRune {
	got := []rune(answer)
	want := []rune(expected)
	out := make([]styledRune, 0, len(got))
	for i, r := range got {
		style := incorrectStyle
		if i < len(want) && unicode.ToLower(r) == unicode.ToLower(want[i]) {
			style = correctStyle
		}
		out = append(out, newStyledRune(r, style))
	}
	return out
}

func newStyledRune(r rune, style lipgloss.Style) styledRune {
	return styledRune{
		s:       style.Render(string(r)),
		width:   runewidth.RuneWidth(r),
		isSpace: r == ' ',
	}
}

func hasPrefixAt(runes, prefix []rune, at int) bool {
	if at+len(prefix) > len(runes) {
		return false
	}
	for j, r := range prefix {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits in width; words
// longer than width are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
