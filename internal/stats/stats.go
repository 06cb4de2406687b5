// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/tuicards/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	curveLabelWidth     = 14
	minCurveWidth       = 10
	terminalWidthBackup = 80
)

var headingStyle = lipgloss.NewStyle().Bold(true)

// SessionMetrics computes cards per minute and answer accuracy for a session.
func SessionMetrics(cardsStudied, correct, incorrect int, durationMs int64) (cpm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	cpm = float64(cardsStudied) / minutes
	return cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalCPM, totalAcc float64
	studied, aborted := 0, 0
	bestAcc := 0.0
	for _, s := range sessions {
		cpm, acc := SessionMetrics(s.CardsStudied, s.Correct, s.Incorrect, s.DurationMs)
		totalCPM += cpm
		totalAcc += acc
		studied += s.CardsStudied
		if s.Aborted {
			aborted++
		}
		if acc > bestAcc {
			bestAcc = acc
		}
	}
	count := float64(len(sessions))
	lines := []string{
		headingStyle.Render("Summary"),
		fmt.Sprintf("Sessions: %d (%d aborted)", len(sessions), aborted),
		fmt.Sprintf("Cards studied: %d", studied),
		fmt.Sprintf("Avg cards/min: %.2f", totalCPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		"",
	}
	return writeLines(w, lines)
}

// RenderKindTable prints answer accuracy per exercise kind.
func RenderKindTable(w io.Writer, title string, aggs []model.KindAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No answers found.")
		return err
	}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, kindRow(agg))
	}
	lines := []string{headingStyle.Render(title)}
	lines = append(lines, renderTable(kindColumns, rows)...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

func kindAccuracy(agg model.KindAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 0
	}
	return float64(agg.Correct) / float64(total)
}

// RenderCurves prints accuracy and pace sparklines sized to the terminal.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithWidth(w, sessions, window, terminalWidth())
}

// RenderCurvesWithWidth prints learning curves within totalWidth columns.
// Only the most recent sessions are drawn when they do not fit.
func RenderCurvesWithWidth(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	cpms := make([]float64, len(sessions))
	for i, s := range sessions {
		cpm, acc := SessionMetrics(s.CardsStudied, s.Correct, s.Incorrect, s.DurationMs)
		accs[i] = acc * 100
		cpms[i] = cpm
	}
	accs = MovingAverage(accs, window)
	cpms = MovingAverage(cpms, window)

	width := totalWidth - curveLabelWidth
	if width < minCurveWidth {
		width = minCurveWidth
	}
	if len(accs) > width {
		accs = accs[len(accs)-width:]
		cpms = cpms[len(cpms)-width:]
	}
	lines := []string{
		headingStyle.Render("Learning Curves"),
		curveLine("Accuracy %", accs),
		curveLine("Cards/min", cpms),
		"",
	}
	return writeLines(w, lines)
}

func curveLine(label string, values []float64) string {
	lo, hi := minMax(values)
	return fmt.Sprintf("%-*s%s  [%.1f..%.1f]", curveLabelWidth, label, Sparkline(values), lo, hi)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderDaily prints per-day study totals as a bar chart.
func RenderDaily(w io.Writer, days []model.DailyStat) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "No daily stats found.")
		return err
	}
	maxCards := 0
	for _, d := range days {
		if d.CardsStudied > maxCards {
			maxCards = d.CardsStudied
		}
	}
	const barWidth = 40
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		n := 0
		if maxCards > 0 {
			n = int(math.Round(float64(d.CardsStudied) / float64(maxCards) * barWidth))
		}
		rows = append(rows, []string{d.Date, fmt.Sprintf("%d", d.CardsStudied), strings.Repeat("#", n)})
	}
	lines := []string{headingStyle.Render("Daily Training")}
	lines = append(lines, renderTable(dailyColumns, rows)...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
