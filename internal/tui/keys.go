package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Apply     key.Binding
	Randomize key.Binding
	Delete    key.Binding
	SwitchTab key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous theme"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next theme"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "previous user"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next user"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "apply theme"),
		),
		Randomize: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new random color"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete user"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("tab", "1", "2"),
			key.WithHelp("tab", "switch view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
