package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Enter key.Binding
	Clear key.Binding
	Quit  key.Binding
	// QuitEmpty only quits while the input is empty, so it can still be typed.
	QuitEmpty key.Binding
}

var keys = keyMap{
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "look up")),
	Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	QuitEmpty: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}
