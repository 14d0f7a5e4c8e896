package tui

import (
	"strconv"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestGardenLinesWrapByDisplayWidth(t *testing.T) {
	lines := gardenLines(7, 6)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Fatalf("line %q is %d cells wide", line, w)
		}
	}
	total := 0
	for _, line := range lines {
		total += strings.Count(line, sproutGlyph)
	}
	if total != 7 {
		t.Fatalf("expected 7 sprouts, got %d", total)
	}
}

func TestGardenLinesOverflow(t *testing.T) {
	lines := gardenLines(100, 10)
	if len(lines) != maxGardenLines {
		t.Fatalf("expected %d lines, got %d", maxGardenLines, len(lines))
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "+") {
		t.Fatalf("expected overflow marker in %q", last)
	}
	if w := runewidth.StringWidth(last); w > 10 {
		t.Fatalf("last line %q is %d cells wide", last, w)
	}
	shown := 0
	for _, line := range lines {
		shown += strings.Count(line, sproutGlyph)
	}
	if !strings.HasSuffix(last, "+"+strconv.Itoa(100-shown)) {
		t.Fatalf("expected marker for %d hidden sprouts in %q", 100-shown, last)
	}
}

func TestGardenLinesEmpty(t *testing.T) {
	lines := gardenLines(0, 40)
	if len(lines) != 1 || !strings.Contains(lines[0], "first sprout") {
		t.Fatalf("unexpected empty garden: %q", lines)
	}
}

func TestGardenCaption(t *testing.T) {
	tests := map[int]string{
		0:  "",
		1:  "Great start! Keep growing your garden.",
		4:  "Your garden is taking shape!",
		9:  "Looking lush! Keep it up.",
		19: "Impressive growth! You're on fire.",
		20: "Amazing dedication! Your garden is thriving.",
	}
	for count, want := range tests {
		if got := gardenCaption(count); got != want {
			t.Fatalf("gardenCaption(%d) = %q, want %q", count, got, want)
		}
	}
}
