// Package timer implements the focus/break session engine.
//
// The engine keeps the countdown anchored to wall-clock timestamps rather than
// counting ticks, so throttled or suspended hosts lose no accuracy. Remaining
// time is always derived from the instant the current run segment began.
package timer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/sprout/internal/clock"
	"github.com/verte-zerg/sprout/internal/model"
)

// DefaultTickInterval is the nominal reconciliation period.
const DefaultTickInterval = time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTickInterval overrides the reconciliation period.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

// WithSink sets the completion sink.
func WithSink(sink Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// Engine is the session state machine. All methods are safe for concurrent use.
type Engine struct {
	mu           sync.Mutex
	store        Store
	clock        clock.Clock
	logger       hclog.Logger
	sink         Sink
	tickInterval time.Duration

	settings model.Settings
	session  model.Session
	sprouts  int

	// tracking is true once the in-memory countdown for the current running
	// segment is initialized; recovery initializes it from persisted state.
	tracking       bool
	segmentStart   time.Time
	segmentSeconds int

	stopTick func()
	events   []chan Event
	closed   bool

	// delivering counts completions handed to the sink but not yet returned.
	delivering sync.WaitGroup
}

// New creates an engine over the persisted state in st. Unreadable state is
// logged and replaced by defaults. Call Recover before presenting state.
func New(st Store, clk clock.Clock, opts ...Option) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	e := &Engine{
		store:        st,
		clock:        clk,
		logger:       hclog.NewNullLogger(),
		tickInterval: DefaultTickInterval,
		settings:     model.DefaultSettings(),
		session:      model.IdleSession(),
	}
	for _, opt := range opts {
		opt(e)
	}

	state, err := LoadState(context.Background(), st)
	if err != nil {
		e.logger.Warn("failed to load timer state, using defaults", "error", err)
	}
	e.settings = state.Settings
	e.session = state.Session
	e.sprouts = state.Sprouts
	return e
}

// SetCompletionSink replaces the completion sink.
func (e *Engine) SetCompletionSink(sink Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

// Subscribe registers a new observer channel. Events are dropped for
// observers whose buffer is full.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.events = append(e.events, ch)
	return ch
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Sprouts returns the number of completed focus intervals.
func (e *Engine) Sprouts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sprouts
}

// Start begins a focus interval from idle or resumes a paused interval.
// It does nothing while already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	switch {
	case e.session.Mode == model.ModeIdle:
		e.beginSegmentLocked(model.ModeFocus, e.settings.DurationSeconds(model.ModeFocus), now)
	case e.session.Paused:
		e.beginSegmentLocked(e.session.Mode, e.session.RemainingSeconds, now)
	}
}

// StartBreak begins a break interval. It only applies from idle.
func (e *Engine) StartBreak() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Mode != model.ModeIdle {
		return
	}
	e.beginSegmentLocked(model.ModeBreak, e.settings.DurationSeconds(model.ModeBreak), e.clock.Now())
}

// Pause freezes a running interval. Remaining time is taken from the clock at
// the moment of pausing; if the interval has already elapsed it completes.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.closed || !e.session.Running {
		e.mu.Unlock()
		return
	}
	e.adoptPersistedLocked()
	now := e.clock.Now()
	remaining := Recompute(now, e.segmentStart, e.segmentSeconds)
	if remaining <= 0 {
		finished, sink := e.completeLocked(now)
		e.mu.Unlock()
		e.deliver(sink, finished)
		return
	}
	e.session = model.Session{
		Mode:             e.session.Mode,
		RemainingSeconds: remaining,
		Paused:           true,
	}
	e.clearSegmentLocked()
	e.persistSessionLocked()
	e.emitLocked(Event{Type: EventStateChange, State: e.stateLocked(), At: now})
	e.mu.Unlock()
}

// Reset abandons any interval and returns to idle without completing it.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = model.IdleSession()
	e.clearSegmentLocked()
	e.persistSessionLocked()
	e.emitLocked(Event{Type: EventStateChange, State: e.stateLocked(), At: e.clock.Now()})
}

// Tick reconciles a running countdown with the clock.
func (e *Engine) Tick() {
	e.reconcile(false)
}

// Recover reconciles persisted running state after the host could not observe
// the engine (restart, suspension, sleep). An elapsed interval completes here.
func (e *Engine) Recover() {
	e.reconcile(true)
}

// UpdateSettings applies a partial settings change, rounding and clamping each
// value. It is refused while an interval is running or paused.
func (e *Engine) UpdateSettings(update model.SettingsUpdate) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Active() {
		e.logger.Debug("settings change refused while session active", "mode", e.session.Mode)
		return false
	}
	next := e.settings
	if update.FocusMinutes != nil {
		next.FocusMinutes = *update.FocusMinutes
	}
	if update.BreakMinutes != nil {
		next.BreakMinutes = *update.BreakMinutes
	}
	e.settings = next.Normalize()
	if err := saveJSON(context.Background(), e.store, KeySettings, e.settings); err != nil {
		e.logger.Error("failed to persist settings", "error", err)
	}
	e.emitLocked(Event{Type: EventSettings, State: e.stateLocked(), At: e.clock.Now()})
	return true
}

// AddSprout increments the completed focus counter.
func (e *Engine) AddSprout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sprouts++
	if err := e.store.Set(context.Background(), KeySprouts, strconv.Itoa(e.sprouts)); err != nil {
		e.logger.Error("failed to persist sprouts", "error", fmt.Errorf("set %s: %w", KeySprouts, err))
	}
	e.emitLocked(Event{Type: EventSprout, State: e.stateLocked(), At: e.clock.Now()})
}

// Close stops ticking, waits for completions already handed to the sink, and
// closes observer channels. Persisted state is left as last written. Close
// must not be called from the sink.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.disarmLocked()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	e.delivering.Wait()
	for _, ch := range events {
		close(ch)
	}
}

func (e *Engine) reconcile(arm bool) {
	e.mu.Lock()
	if e.closed || !e.session.Running {
		e.mu.Unlock()
		return
	}
	e.adoptPersistedLocked()
	now := e.clock.Now()
	remaining := Recompute(now, e.segmentStart, e.segmentSeconds)
	if remaining <= 0 {
		finished, sink := e.completeLocked(now)
		e.mu.Unlock()
		e.deliver(sink, finished)
		return
	}
	if arm {
		e.armLocked()
	}
	if remaining != e.session.RemainingSeconds {
		e.session.RemainingSeconds = remaining
		e.persistSessionLocked()
	}
	e.emitLocked(Event{Type: EventProgress, State: e.stateLocked(), At: now})
	e.mu.Unlock()
}

// adoptPersistedLocked initializes the in-memory countdown from the persisted
// session when nothing is tracked yet. Sessions written without a segment
// length fall back to the full interval for their mode.
func (e *Engine) adoptPersistedLocked() {
	if e.tracking || !e.session.Running || e.session.StartedAt == nil {
		return
	}
	e.segmentStart = *e.session.StartedAt
	e.segmentSeconds = e.session.SegmentSeconds
	if e.segmentSeconds <= 0 {
		e.segmentSeconds = e.settings.DurationSeconds(e.session.Mode)
	}
	e.tracking = true
}

func (e *Engine) beginSegmentLocked(mode model.Mode, seconds int, now time.Time) {
	startedAt := now
	e.session = model.Session{
		Mode:             mode,
		RemainingSeconds: seconds,
		Running:          true,
		StartedAt:        &startedAt,
		SegmentSeconds:   seconds,
	}
	e.segmentStart = now
	e.segmentSeconds = seconds
	e.tracking = true
	e.persistSessionLocked()
	e.armLocked()
	e.emitLocked(Event{Type: EventStateChange, State: e.stateLocked(), At: now})
}

// completeLocked moves a running session to idle and returns the mode that
// finished. Only the caller that performs this transition delivers the
// completion, which keeps delivery to exactly once per interval.
func (e *Engine) completeLocked(now time.Time) (model.Mode, Sink) {
	finished := e.session.Mode
	e.session = model.IdleSession()
	e.clearSegmentLocked()
	e.persistSessionLocked()
	e.emitLocked(Event{Type: EventComplete, State: e.stateLocked(), Completed: finished, At: now})
	e.logger.Debug("interval complete", "mode", finished)
	e.delivering.Add(1)
	return finished, e.sink
}

func (e *Engine) deliver(sink Sink, mode model.Mode) {
	defer e.delivering.Done()
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("completion sink panicked", "mode", mode, "panic", r)
		}
	}()
	sink.Complete(mode)
}

func (e *Engine) clearSegmentLocked() {
	e.tracking = false
	e.segmentStart = time.Time{}
	e.segmentSeconds = 0
	e.disarmLocked()
}

func (e *Engine) armLocked() {
	if e.stopTick != nil || e.closed {
		return
	}
	e.stopTick = e.clock.Every(e.tickInterval, e.Tick)
}

func (e *Engine) disarmLocked() {
	if e.stopTick == nil {
		return
	}
	e.stopTick()
	e.stopTick = nil
}

func (e *Engine) persistSessionLocked() {
	if err := saveJSON(context.Background(), e.store, KeySession, e.session); err != nil {
		e.logger.Error("failed to persist session", "error", err)
	}
}

func (e *Engine) stateLocked() State {
	session := e.session
	if session.StartedAt != nil {
		startedAt := *session.StartedAt
		session.StartedAt = &startedAt
	}
	return State{
		Settings: e.settings,
		Session:  session,
		Sprouts:  e.sprouts,
	}
}

func (e *Engine) emitLocked(event Event) {
	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
		}
	}
}
