package timer

import "time"

// Recompute returns the whole seconds left in a countdown of expectedSeconds
// that began at startedAt, as observed at now. It never returns a negative
// value, and a clock that moved backwards counts as zero elapsed time.
func Recompute(now, startedAt time.Time, expectedSeconds int) int {
	elapsed := int(now.Sub(startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := expectedSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
