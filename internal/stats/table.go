package stats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuicards/internal/model"
)

// column is one table column. Numeric columns are right-aligned.
type column struct {
	title string
	right bool
}

var (
	kindColumns = []column{
		{title: "Exercise"},
		{title: "Accuracy", right: true},
		{title: "Correct", right: true},
		{title: "Incorrect", right: true},
	}
	dailyColumns = []column{
		{title: "Date"},
		{title: "Cards", right: true},
		{},
	}
)

func kindRow(agg model.KindAggregate) []string {
	return []string{
		agg.Kind.String(),
		fmt.Sprintf("%.2f%%", kindAccuracy(agg)*100),
		fmt.Sprintf("%d", agg.Correct),
		fmt.Sprintf("%d", agg.Incorrect),
	}
}

// renderTable lays rows out under cols, measuring cells in terminal columns.
// Cells past the last column are dropped and trailing padding is trimmed.
func renderTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := 0; i < len(cols) && i < len(row); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, layoutRow(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, layoutRow(cols, widths, row))
	}
	return lines
}

func layoutRow(cols []column, widths []int, cells []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if c.right {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
