package timer

import (
	"time"

	"github.com/verte-zerg/sprout/internal/model"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventComplete    EventType = "complete"
	EventSettings    EventType = "settings"
	EventSprout      EventType = "sprout"
)

// Event is an engine update for observers.
type Event struct {
	Type  EventType
	State State
	// Completed names the mode that just elapsed for EventComplete.
	Completed model.Mode
	At        time.Time
}

// State is a point-in-time copy of everything the engine owns.
type State struct {
	Settings model.Settings `yaml:"settings"`
	Session  model.Session  `yaml:"session"`
	Sprouts  int            `yaml:"sprouts"`
}

// Sink receives one call per naturally elapsed interval.
type Sink interface {
	Complete(mode model.Mode)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(mode model.Mode)

// Complete calls f(mode).
func (f SinkFunc) Complete(mode model.Mode) {
	f(mode)
}
