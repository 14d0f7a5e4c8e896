// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/verte-zerg/sprout/internal/model"
	"github.com/verte-zerg/sprout/internal/notify"
	"github.com/verte-zerg/sprout/internal/timer"
)

// KeySettingsVisible stores whether the settings panel was left open.
const KeySettingsVisible = "sprout-timer-settings-visible"

const (
	eventBuffer  = 32
	contentWidth = 44
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC67B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A040"))
	panelStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

type modeLook struct {
	label string
	icon  string
	color string
}

var modeLooks = map[model.Mode]modeLook{
	model.ModeFocus: {label: "Focus", icon: "🌱", color: "#059669"},
	model.ModeBreak: {label: "Break", icon: "☕", color: "#0EA5E9"},
	model.ModeIdle:  {label: "Ready", icon: "🌿", color: "#94A3B8"},
}

// Engine is the timer surface the UI drives.
type Engine interface {
	Subscribe(buffer int) <-chan timer.Event
	Snapshot() timer.State
	Start()
	StartBreak()
	Pause()
	Reset()
	Recover()
	UpdateSettings(update model.SettingsUpdate) bool
}

// Options configures the UI.
type Options struct {
	// Prefs persists UI preferences. Optional.
	Prefs timer.Store
	// NotifyBlocked shows a hint that desktop notifications cannot be shown.
	NotifyBlocked bool
	Logger        hclog.Logger
}

type eventMsg timer.Event

type engineClosedMsg struct{}

// Model implements the Bubble Tea timer UI.
type Model struct {
	engine Engine
	events <-chan timer.Event
	prefs  timer.Store
	logger hclog.Logger

	state         timer.State
	showSettings  bool
	notifyBlocked bool
	notice        string
	warning       string

	keys     keyMap
	help     help.Model
	progress progress.Model

	width  int
	height int
}

// NewModel constructs a timer TUI model.
func NewModel(engine Engine, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	m := &Model{
		engine:        engine,
		events:        engine.Subscribe(eventBuffer),
		prefs:         opts.Prefs,
		logger:        logger,
		state:         engine.Snapshot(),
		notifyBlocked: opts.NotifyBlocked,
		keys:          newKeyMap(),
		help:          help.New(),
		progress:      progress.New(progress.WithoutPercentage(), progress.WithWidth(contentWidth)),
	}
	m.loadPrefs()
	m.applyState(m.state)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tea.SetWindowTitle("sprout"))
}

func waitForEvent(events <-chan timer.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.FocusMsg:
		// The terminal may have been hidden or the machine asleep.
		m.engine.Recover()
		m.applyState(m.engine.Snapshot())
		return m, nil
	case eventMsg:
		m.handleEvent(timer.Event(msg))
		return m, waitForEvent(m.events)
	case engineClosedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(ev timer.Event) {
	m.applyState(ev.State)
	if ev.Type == timer.EventComplete {
		msg := notify.MessageFor(ev.Completed)
		m.notice = msg.Title + " " + msg.Body
		m.warning = ""
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.showSettings = !m.showSettings
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Start):
		m.notice = ""
		m.engine.Start()
	case key.Matches(msg, m.keys.Pause):
		m.engine.Pause()
	case key.Matches(msg, m.keys.Reset):
		m.notice = ""
		m.engine.Reset()
	case key.Matches(msg, m.keys.Break):
		m.notice = ""
		m.engine.StartBreak()
	case key.Matches(msg, m.keys.FocusDown):
		m.adjust(-model.StepMinutes, 0)
	case key.Matches(msg, m.keys.FocusUp):
		m.adjust(model.StepMinutes, 0)
	case key.Matches(msg, m.keys.BreakDown):
		m.adjust(0, -model.StepMinutes)
	case key.Matches(msg, m.keys.BreakUp):
		m.adjust(0, model.StepMinutes)
	default:
		return m, nil
	}
	m.applyState(m.engine.Snapshot())
	return m, nil
}

func (m *Model) adjust(focusDelta, breakDelta int) {
	current := m.engine.Snapshot().Settings
	var update model.SettingsUpdate
	if focusDelta != 0 {
		next := current.FocusMinutes + focusDelta
		update.FocusMinutes = &next
	}
	if breakDelta != 0 {
		next := current.BreakMinutes + breakDelta
		update.BreakMinutes = &next
	}
	if !m.engine.UpdateSettings(update) {
		m.warning = "Settings are locked while a session is active."
		return
	}
	m.warning = ""
}

func (m *Model) applyState(state timer.State) {
	m.state = state
	m.keys.syncWith(state.Session)
	look := modeLooks[state.Session.Mode]
	m.progress.FullColor = look.color
}

func (m *Model) loadPrefs() {
	if m.prefs == nil {
		return
	}
	value, ok, err := m.prefs.Get(context.Background(), KeySettingsVisible)
	if err != nil {
		m.logger.Warn("failed to load ui preferences", "error", err)
		return
	}
	if ok {
		m.showSettings, _ = strconv.ParseBool(value)
	}
}

func (m *Model) savePrefs() {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Set(context.Background(), KeySettingsVisible, strconv.FormatBool(m.showSettings)); err != nil {
		m.logger.Warn("failed to save ui preferences", "error", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}
	if m.showSettings {
		sections = append(sections, m.renderSettings())
	}
	sections = append(sections, "", m.renderTimer(), "", m.renderGarden())
	if m.notice != "" {
		sections = append(sections, "", noticeStyle.Render(m.notice))
	}
	if m.warning != "" {
		sections = append(sections, "", warningStyle.Render(m.warning))
	}
	if m.notifyBlocked {
		sections = append(sections, "", mutedStyle.Render("Notifications are blocked. Install notify-send or enable them in [notify]."))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	footer := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("Sprout")
	badge := badgeStyle.Render(fmt.Sprintf("Your Garden: %d Sprouts 🌿", m.state.Sprouts))
	gap := contentWidth - lipgloss.Width(title) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + badge
}

func (m *Model) renderSettings() string {
	lines := []string{
		fmt.Sprintf("Focus  %2d min   [ / ]", m.state.Settings.FocusMinutes),
		fmt.Sprintf("Break  %2d min   { / }", m.state.Settings.BreakMinutes),
	}
	if m.state.Session.Active() {
		lines = append(lines, mutedStyle.Render("Locked while a session is active"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTimer() string {
	session := m.state.Session
	look := modeLooks[session.Mode]
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(look.color)).Render(look.icon + " " + look.label)

	remaining := session.RemainingSeconds
	if session.Mode == model.ModeIdle {
		remaining = m.state.Settings.DurationSeconds(model.ModeFocus)
	}
	lines := []string{
		label,
		clockStyle.Render(formatClock(remaining)),
		m.progress.ViewAs(progressFraction(m.state)),
		mutedStyle.Render(statusText(session)),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderGarden() string {
	lines := gardenLines(m.state.Sprouts, contentWidth)
	if caption := gardenCaption(m.state.Sprouts); caption != "" {
		lines = append(lines, mutedStyle.Render(caption))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// formatClock renders seconds as mm:ss; minutes are not wrapped into hours.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// progressFraction is the elapsed share of the current interval.
func progressFraction(state timer.State) float64 {
	total := state.Settings.DurationSeconds(state.Session.Mode)
	if state.Session.Mode == model.ModeIdle || total <= 0 {
		return 0
	}
	elapsed := total - state.Session.RemainingSeconds
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}
	return float64(elapsed) / float64(total)
}

func statusText(session model.Session) string {
	switch {
	case session.Running:
		return "Running"
	case session.Paused:
		return "Paused"
	default:
		return "Press space to start focusing"
	}
}
