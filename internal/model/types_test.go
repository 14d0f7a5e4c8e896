package model

import (
	"testing"
	"time"
)

func TestSettingsNormalizeClamps(t *testing.T) {
	cases := []struct {
		name string
		in   Settings
		want Settings
	}{
		{name: "below focus min", in: Settings{FocusMinutes: 3, BreakMinutes: 5}, want: Settings{FocusMinutes: 5, BreakMinutes: 5}},
		{name: "above focus max", in: Settings{FocusMinutes: 63, BreakMinutes: 5}, want: Settings{FocusMinutes: 60, BreakMinutes: 5}},
		{name: "below break min", in: Settings{FocusMinutes: 20, BreakMinutes: 2}, want: Settings{FocusMinutes: 20, BreakMinutes: 5}},
		{name: "above break max", in: Settings{FocusMinutes: 20, BreakMinutes: 45}, want: Settings{FocusMinutes: 20, BreakMinutes: 30}},
		{name: "rounds to step", in: Settings{FocusMinutes: 23, BreakMinutes: 8}, want: Settings{FocusMinutes: 25, BreakMinutes: 10}},
		{name: "negative", in: Settings{FocusMinutes: -10, BreakMinutes: 0}, want: Settings{FocusMinutes: 5, BreakMinutes: 5}},
		{name: "in bounds", in: Settings{FocusMinutes: 45, BreakMinutes: 15}, want: Settings{FocusMinutes: 45, BreakMinutes: 15}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestSettingsDurationSeconds(t *testing.T) {
	s := Settings{FocusMinutes: 25, BreakMinutes: 10}
	if got := s.DurationSeconds(ModeFocus); got != 1500 {
		t.Fatalf("expected 1500 focus seconds, got %d", got)
	}
	if got := s.DurationSeconds(ModeBreak); got != 600 {
		t.Fatalf("expected 600 break seconds, got %d", got)
	}
	if got := s.DurationSeconds(ModeIdle); got != 0 {
		t.Fatalf("expected 0 idle seconds, got %d", got)
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cases := []struct {
		name string
		s    Session
		want bool
	}{
		{name: "idle", s: IdleSession(), want: true},
		{name: "idle with remaining", s: Session{Mode: ModeIdle, RemainingSeconds: 3}, want: false},
		{name: "running", s: Session{Mode: ModeFocus, RemainingSeconds: 60, Running: true, StartedAt: &now}, want: true},
		{name: "running without start", s: Session{Mode: ModeFocus, RemainingSeconds: 60, Running: true}, want: false},
		{name: "paused", s: Session{Mode: ModeBreak, RemainingSeconds: 60, Paused: true}, want: true},
		{name: "paused with start", s: Session{Mode: ModeBreak, RemainingSeconds: 60, Paused: true, StartedAt: &now}, want: false},
		{name: "running and paused", s: Session{Mode: ModeFocus, Running: true, Paused: true, StartedAt: &now}, want: false},
		{name: "unknown mode", s: Session{Mode: "nap"}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Valid(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
