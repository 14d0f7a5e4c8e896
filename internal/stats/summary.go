package stats

import (
	"fmt"
	"io"
)

// FormatMinutes renders seconds as a compact hours/minutes string.
func FormatMinutes(seconds int) string {
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// RenderSummary prints the report totals and streaks.
func RenderSummary(w io.Writer, report Report) error {
	if len(report.Completions) == 0 {
		_, err := fmt.Fprintln(w, "No completed sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Focus sessions: %d (%s)", report.FocusCount, FormatMinutes(report.FocusSeconds)),
		fmt.Sprintf("Breaks: %d (%s)", report.BreakCount, FormatMinutes(report.BreakSeconds)),
		fmt.Sprintf("Active days: %d", len(report.Days)),
		fmt.Sprintf("Current streak: %s", pluralDays(report.CurrentStreak)),
		fmt.Sprintf("Longest streak: %s", pluralDays(report.LongestStreak)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
