package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	sproutGlyph    = "🌱"
	maxGardenLines = 4
)

// gardenLines lays out one glyph per sprout, wrapped to width display cells.
// Sprouts that do not fit in maxGardenLines are summarized as "+N".
func gardenLines(count, width int) []string {
	if count <= 0 {
		return []string{"Complete a focus session to grow your first sprout!"}
	}
	glyphWidth := runewidth.StringWidth(sproutGlyph)
	perLine := width / glyphWidth
	if perLine < 1 {
		perLine = 1
	}
	capacity := perLine * maxGardenLines
	shown := count
	free := perLine
	if count > capacity {
		// Size the marker for the largest overflow the last line can produce.
		marker := fmt.Sprintf(" +%d", count-capacity+perLine)
		free = max(0, (width-runewidth.StringWidth(marker))/glyphWidth)
		shown = capacity - perLine + free
	}

	var lines []string
	for rest := shown; rest > 0; {
		n := min(perLine, rest)
		lines = append(lines, strings.Repeat(sproutGlyph, n))
		rest -= n
	}
	if overflow := count - shown; overflow > 0 {
		marker := fmt.Sprintf(" +%d", overflow)
		if free == 0 || len(lines) == 0 {
			lines = append(lines, strings.TrimSpace(marker))
		} else {
			lines[len(lines)-1] += marker
		}
	}
	return lines
}

// gardenCaption is the encouragement shown under the garden.
func gardenCaption(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "Great start! Keep growing your garden."
	case count < 5:
		return "Your garden is taking shape!"
	case count < 10:
		return "Looking lush! Keep it up."
	case count < 20:
		return "Impressive growth! You're on fire."
	default:
		return "Amazing dedication! Your garden is thriving."
	}
}
