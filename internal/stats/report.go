// Package stats contains history aggregation and reporting.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/sprout/internal/model"
)

// Lister loads completion history.
type Lister interface {
	ListCompletions(ctx context.Context, cfg model.StatsConfig) ([]model.Completion, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Completions   []model.Completion
	Days          []model.DayAggregate
	FocusCount    int
	FocusSeconds  int
	BreakCount    int
	BreakSeconds  int
	CurrentStreak int
	LongestStreak int
}

// BuildReport loads completions and aggregates them relative to now.
func BuildReport(ctx context.Context, st Lister, cfg model.StatsConfig, now time.Time) (Report, error) {
	completions, err := st.ListCompletions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Summarize(completions, now), nil
}

// Summarize aggregates completions by calendar day in now's location.
func Summarize(completions []model.Completion, now time.Time) Report {
	loc := now.Location()
	report := Report{Completions: completions}
	index := map[time.Time]int{}
	for _, c := range completions {
		day := dayOf(c.CompletedAt.In(loc))
		i, ok := index[day]
		if !ok {
			i = len(report.Days)
			index[day] = i
			report.Days = append(report.Days, model.DayAggregate{Day: day})
		}
		agg := &report.Days[i]
		switch c.Mode {
		case model.ModeFocus:
			agg.FocusCount++
			agg.FocusSeconds += c.Seconds
			report.FocusCount++
			report.FocusSeconds += c.Seconds
		case model.ModeBreak:
			agg.BreakCount++
			agg.BreakSeconds += c.Seconds
			report.BreakCount++
			report.BreakSeconds += c.Seconds
		}
	}
	report.CurrentStreak, report.LongestStreak = streaks(report.Days, dayOf(now))
	return report
}

// streaks counts consecutive days with at least one focus completion. The
// current streak may end today or yesterday; an unfinished today does not
// break it. days must be in ascending order.
func streaks(days []model.DayAggregate, today time.Time) (current, longest int) {
	run := 0
	var prev time.Time
	for _, d := range days {
		if d.FocusCount == 0 {
			continue
		}
		if run > 0 && d.Day.Equal(nextDay(prev)) {
			run++
		} else {
			run = 1
		}
		prev = d.Day
		if run > longest {
			longest = run
		}
	}
	if run > 0 && (prev.Equal(today) || nextDay(prev).Equal(today)) {
		current = run
	}
	return current, longest
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func nextDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}
