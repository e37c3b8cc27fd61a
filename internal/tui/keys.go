package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings. Letter keys are only bound on the list
// steps; the contact step leaves them to the text inputs.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Toggle key.Binding
	Next   key.Binding
	Back   key.Binding
	Leave  key.Binding
	Jump   key.Binding
	Focus  key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
	Abort  key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
	Back:   key.NewBinding(key.WithKeys("esc", "left", "h"), key.WithHelp("esc", "back")),
	Leave:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Jump:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "jump")),
	Focus:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Abort:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}
