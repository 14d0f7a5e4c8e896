// Package clock provides the wall clock and periodic scheduling used by the timer.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant and schedules periodic callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn once per period until the returned stop func is called.
	Every(period time.Duration, fn func()) (stop func())
}

// System is the real wall clock.
type System struct{}

// Now returns the wall-clock time without a monotonic reading, so durations
// computed from it include time the machine spent asleep.
func (System) Now() time.Time {
	return time.Now().Round(0)
}

// Every runs fn on a ticker goroutine.
func (System) Every(period time.Duration, fn func()) func() {
	if period <= 0 {
		period = time.Second
	}
	ticker := time.NewTicker(period)
	stopCh := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
	}
}
