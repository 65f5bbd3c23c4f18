package termview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Next      key.Binding
	Prev      key.Binding
	Help      key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Toggle, k.ToggleAll},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Toggle:    key.NewBinding(key.WithKeys("g", "enter", " "), key.WithHelp("g", "graph view")),
	ToggleAll: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "all graphs")),
	Next:      key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next section")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "prev section")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
