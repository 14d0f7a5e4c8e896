package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/sprout/internal/model"
)

type keyMap struct {
	Start     key.Binding
	Pause     key.Binding
	Reset     key.Binding
	Break     key.Binding
	FocusDown key.Binding
	FocusUp   key.Binding
	BreakDown key.Binding
	BreakUp   key.Binding
	Settings  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:     key.NewBinding(key.WithKeys("s", " "), key.WithHelp("space/s", "start focus")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Break:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "start break")),
		FocusDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "focus -5")),
		FocusUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "focus +5")),
		BreakDown: key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "break -5")),
		BreakUp:   key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "break +5")),
		Settings:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "settings")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// syncWith enables only the bindings that do something in the given session.
// Settings keys stay enabled so a refused change can be reported.
func (k *keyMap) syncWith(session model.Session) {
	idle := session.Mode == model.ModeIdle
	if session.Paused {
		k.Start.SetHelp("space/s", "resume")
	} else {
		k.Start.SetHelp("space/s", "start focus")
	}
	k.Start.SetEnabled(!session.Running)
	k.Pause.SetEnabled(session.Running)
	k.Break.SetEnabled(idle)
	k.Reset.SetEnabled(session.Active())
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Reset, k.Break, k.Settings, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Reset, k.Break},
		{k.FocusDown, k.FocusUp, k.BreakDown, k.BreakUp},
		{k.Settings, k.Help, k.Quit},
	}
}
