package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/sprout/internal/model"
)

const (
	defaultChartDays = 14
	minBarWidth      = 10
	barGlyph         = "█"
	colorGreen       = "\x1b[32m"
	colorReset       = "\x1b[0m"
	terminalFallback = 80
)

// RenderChart prints horizontal bars of focus time for the most recent days.
// A width of zero uses the terminal width.
func RenderChart(w io.Writer, days []model.DayAggregate, width int) error {
	return renderChart(w, days, width, shouldUseColor(w))
}

// ChartLines renders the chart without color for embedding in other views.
func ChartLines(days []model.DayAggregate, width int) []string {
	return chartLines(days, width, false)
}

func renderChart(w io.Writer, days []model.DayAggregate, width int, useColor bool) error {
	lines := chartLines(days, width, useColor)
	if len(lines) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Focus Time"); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func chartLines(days []model.DayAggregate, width int, useColor bool) []string {
	if len(days) == 0 {
		return nil
	}
	if len(days) > defaultChartDays {
		days = days[len(days)-defaultChartDays:]
	}
	if width <= 0 {
		width = terminalWidth()
	}

	labels := make([]string, len(days))
	values := make([]string, len(days))
	labelWidth, valueWidth, maxSeconds := 0, 0, 0
	for i, d := range days {
		labels[i] = d.Day.Format("Mon 01-02")
		values[i] = FormatMinutes(d.FocusSeconds)
		labelWidth = max(labelWidth, runewidth.StringWidth(labels[i]))
		valueWidth = max(valueWidth, runewidth.StringWidth(values[i]))
		maxSeconds = max(maxSeconds, d.FocusSeconds)
	}

	barWidth := width - labelWidth - valueWidth - 4
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lines := make([]string, 0, len(days))
	for i, d := range days {
		n := 0
		if maxSeconds > 0 {
			n = d.FocusSeconds * barWidth / maxSeconds
		}
		if n == 0 && d.FocusSeconds > 0 {
			n = 1
		}
		bar := strings.Repeat(barGlyph, n)
		if useColor && bar != "" {
			bar = colorGreen + bar + colorReset
		}
		lines = append(lines, fmt.Sprintf("%s │ %s%s %s",
			padCell(labels[i], labelWidth, false),
			bar,
			strings.Repeat(" ", barWidth-n),
			padCell(values[i], valueWidth, true),
		))
	}
	return lines
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalFallback
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
