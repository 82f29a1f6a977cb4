package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/ruleboard/internal/ir"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Undo    key.Binding
	Pause   key.Binding
	Restart key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/w", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/s", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "a", "h"), key.WithHelp("←/a", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "d", "l"), key.WithHelp("→/d", "right")),
		Undo:    key.NewBinding(key.WithKeys("z", "u"), key.WithHelp("z", "undo")),
		Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Undo, k.Pause, k.Restart, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Undo, k.Pause, k.Restart},
		{k.Help, k.Quit},
	}
}

// command maps a key press to a session command. The pause key resumes a
// paused session.
func (k keyMap) command(msg tea.KeyMsg, paused bool) (ir.Command, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return ir.Move(ir.Up), true
	case key.Matches(msg, k.Down):
		return ir.Move(ir.Down), true
	case key.Matches(msg, k.Left):
		return ir.Move(ir.Left), true
	case key.Matches(msg, k.Right):
		return ir.Move(ir.Right), true
	case key.Matches(msg, k.Undo):
		return ir.Meta(ir.CommandUndo), true
	case key.Matches(msg, k.Pause):
		if paused {
			return ir.Meta(ir.CommandResume), true
		}
		return ir.Meta(ir.CommandPause), true
	case key.Matches(msg, k.Restart):
		return ir.Meta(ir.CommandRestart), true
	}
	return ir.Command{}, false
}
