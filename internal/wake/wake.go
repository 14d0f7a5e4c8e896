// Package wake reports when the process may have missed wall-clock time:
// after a system suspend, a SIGSTOP/SIGCONT pause, or a clock change.
package wake

import (
	"context"
	"os"
	"os/signal"
	"time"

	hclog "github.com/hashicorp/go-hclog"
)

// Reason explains why a wake was reported.
type Reason string

const (
	// ReasonResumed means the process received SIGCONT.
	ReasonResumed Reason = "resumed"
	// ReasonClockJump means wall time and monotonic time diverged.
	ReasonClockJump Reason = "clock_jump"
	// ReasonStalled means the process did not run for longer than expected.
	ReasonStalled Reason = "stalled"
)

const (
	defaultInterval  = 5 * time.Second
	defaultThreshold = 3 * time.Second
)

// Watcher samples the clocks periodically and listens for resume signals.
type Watcher struct {
	Interval  time.Duration
	Threshold time.Duration
	Logger    hclog.Logger
}

// Run blocks until ctx is done, calling fn for every detected wake.
func (w *Watcher) Run(ctx context.Context, fn func(Reason)) {
	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	threshold := w.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	logger := w.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	signals := make(chan os.Signal, 1)
	if sigs := resumeSignals(); len(sigs) > 0 {
		signal.Notify(signals, sigs...)
		defer signal.Stop(signals)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			logger.Debug("resume signal", "signal", sig.String())
			prev = time.Now()
			fn(ReasonResumed)
		case <-ticker.C:
			now := time.Now()
			wall := now.Round(0).Sub(prev.Round(0))
			mono := now.Sub(prev)
			prev = now
			if reason, ok := classify(wall, mono, interval, threshold); ok {
				logger.Debug("wake detected", "reason", reason, "wall", wall, "monotonic", mono)
				fn(reason)
			}
		}
	}
}

// classify compares the wall and monotonic time elapsed between two samples.
func classify(wall, mono, interval, threshold time.Duration) (Reason, bool) {
	drift := wall - mono
	if drift < 0 {
		drift = -drift
	}
	if drift > threshold {
		return ReasonClockJump, true
	}
	if mono > interval+threshold {
		return ReasonStalled, true
	}
	return "", false
}
