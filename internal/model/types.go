// Package model defines shared data structures.
package model

import (
	"math"
	"time"
)

// Mode is the phase of the current session.
type Mode string

const (
	ModeIdle  Mode = "idle"
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

// Duration bounds in minutes.
const (
	FocusMinMinutes = 5
	FocusMaxMinutes = 60
	BreakMinMinutes = 5
	BreakMaxMinutes = 30
	StepMinutes     = 5

	DefaultFocusMinutes = 20
	DefaultBreakMinutes = 5
)

// Settings holds the configured interval lengths.
type Settings struct {
	FocusMinutes int `json:"focusDuration" yaml:"focus_minutes"`
	BreakMinutes int `json:"breakDuration" yaml:"break_minutes"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		FocusMinutes: DefaultFocusMinutes,
		BreakMinutes: DefaultBreakMinutes,
	}
}

// Normalize rounds both durations to the nearest step and clamps them to bounds.
func (s Settings) Normalize() Settings {
	return Settings{
		FocusMinutes: ClampMinutes(s.FocusMinutes, FocusMinMinutes, FocusMaxMinutes),
		BreakMinutes: ClampMinutes(s.BreakMinutes, BreakMinMinutes, BreakMaxMinutes),
	}
}

// DurationSeconds returns the full interval length for mode.
func (s Settings) DurationSeconds(mode Mode) int {
	switch mode {
	case ModeFocus:
		return s.FocusMinutes * 60
	case ModeBreak:
		return s.BreakMinutes * 60
	default:
		return 0
	}
}

// ClampMinutes rounds value to the nearest StepMinutes and clamps it to [lo, hi].
func ClampMinutes(value, lo, hi int) int {
	rounded := int(math.Round(float64(value)/StepMinutes)) * StepMinutes
	if rounded < lo {
		return lo
	}
	if rounded > hi {
		return hi
	}
	return rounded
}

// SettingsUpdate is a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	FocusMinutes *int
	BreakMinutes *int
}

// Session is the persisted run state of the timer.
type Session struct {
	Mode             Mode       `json:"mode" yaml:"mode"`
	RemainingSeconds int        `json:"timeRemaining" yaml:"remaining_seconds"`
	Running          bool       `json:"isRunning" yaml:"running"`
	Paused           bool       `json:"isPaused" yaml:"paused"`
	StartedAt        *time.Time `json:"startTime,omitempty" yaml:"started_at,omitempty"`
	// SegmentSeconds is the countdown length measured from StartedAt.
	SegmentSeconds int `json:"segmentSeconds,omitempty" yaml:"segment_seconds,omitempty"`
}

// IdleSession returns the zero state every session starts from and returns to.
func IdleSession() Session {
	return Session{Mode: ModeIdle}
}

// Active reports whether a focus or break interval is in progress.
func (s Session) Active() bool {
	return s.Running || s.Paused
}

// Valid reports whether the session satisfies the run-state invariants.
func (s Session) Valid() bool {
	switch s.Mode {
	case ModeIdle:
		return !s.Running && !s.Paused && s.RemainingSeconds == 0 && s.StartedAt == nil
	case ModeFocus, ModeBreak:
		if s.Running == s.Paused {
			return false
		}
		if s.Running && s.StartedAt == nil {
			return false
		}
		if s.Paused && s.StartedAt != nil {
			return false
		}
		return s.RemainingSeconds >= 0
	default:
		return false
	}
}

// Completion records one naturally elapsed interval.
type Completion struct {
	ID          int64     `yaml:"id"`
	Mode        Mode      `yaml:"mode"`
	Seconds     int       `yaml:"seconds"`
	CompletedAt time.Time `yaml:"completed_at"`
}

// StatsConfig defines filters for history reports.
type StatsConfig struct {
	Since *time.Time
	Last  int
}

// DayAggregate summarizes completions for one calendar day.
type DayAggregate struct {
	Day          time.Time
	FocusCount   int
	FocusSeconds int
	BreakCount   int
	BreakSeconds int
}
