package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the chooser's bindings.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Keep  key.Binding
	Skip  key.Binding
	Abort key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Keep: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "keep selected"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip group"),
		),
		Abort: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp lists the bindings shown under the list.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Keep, k.Skip, k.Abort}
}
