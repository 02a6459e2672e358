package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	submit  key.Binding
	back    key.Binding
	retry   key.Binding
	history key.Binding
	open    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create playlist")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		history: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.submit},
		{k.back, k.retry, k.history},
		{k.open, k.quit},
	}
}
