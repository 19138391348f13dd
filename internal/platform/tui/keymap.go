package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the viewer key bindings. It implements help.KeyMap.
type KeyMap struct {
	Quit       key.Binding
	Freeze     key.Binding
	Screenshot key.Binding
	Help       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Freeze: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "freeze view"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Freeze, k.Help}
}

// FullHelp returns every binding, one group per column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Freeze},
		{k.Screenshot, k.Help},
	}
}
