// Package notify delivers interval completions to the outside world: the
// sprout garden, the history log, the terminal bell, and desktop notifications.
package notify

import (
	"context"
	"io"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/sprout/internal/clock"
	"github.com/verte-zerg/sprout/internal/model"
	"github.com/verte-zerg/sprout/internal/timer"
)

//go:generate mockgen -source=notify.go -destination=mock_notify_test.go -package=notify

// Garden is the engine state the dispatcher grows.
type Garden interface {
	AddSprout()
	Snapshot() timer.State
}

// Recorder appends completions to the history.
type Recorder interface {
	InsertCompletion(ctx context.Context, c model.Completion) (int64, error)
}

// Alerter plays an audible alert.
type Alerter interface {
	Alert() error
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string) error
}

// Message is the notification text for a completed mode.
type Message struct {
	Title string
	Body  string
}

// MessageFor returns the notification shown when mode completes.
func MessageFor(mode model.Mode) Message {
	if mode == model.ModeBreak {
		return Message{
			Title: "Break Complete!",
			Body:  "Feeling refreshed? Start another focus session!",
		}
	}
	return Message{
		Title: "Focus Session Complete!",
		Body:  "Great work! You earned a sprout 🌱. Take a break?",
	}
}

// Dispatcher implements timer.Sink. Any collaborator may be nil. Failures are
// logged and never reach the engine.
type Dispatcher struct {
	Garden   Garden
	Recorder Recorder
	Alerter  Alerter
	Notifier Notifier
	Clock    clock.Clock
	Logger   hclog.Logger
}

var _ timer.Sink = (*Dispatcher)(nil)

// Complete handles one elapsed interval.
func (d *Dispatcher) Complete(mode model.Mode) {
	logger := d.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.System{}
	}

	seconds := 0
	if d.Garden != nil {
		if mode == model.ModeFocus {
			d.Garden.AddSprout()
		}
		seconds = d.Garden.Snapshot().Settings.DurationSeconds(mode)
	}

	if d.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := d.Recorder.InsertCompletion(ctx, model.Completion{
			Mode:        mode,
			Seconds:     seconds,
			CompletedAt: clk.Now(),
		})
		cancel()
		if err != nil {
			logger.Error("failed to record completion", "mode", mode, "error", err)
		}
	}

	if d.Alerter != nil {
		if err := d.Alerter.Alert(); err != nil {
			logger.Warn("failed to play completion alert", "error", err)
		}
	}

	if d.Notifier != nil {
		msg := MessageFor(mode)
		if err := d.Notifier.Notify(msg.Title, msg.Body); err != nil {
			logger.Warn("failed to show notification", "title", msg.Title, "error", err)
		}
	}
}

// Bell rings the terminal bell.
type Bell struct {
	Out io.Writer
}

// Alert writes a BEL byte.
func (b Bell) Alert() error {
	_, err := io.WriteString(b.Out, "\a")
	return err
}
