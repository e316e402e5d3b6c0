package bar

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Refresh    key.Binding
	SaveLayout key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("→/l", "next tab"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("←/h", "previous tab"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		SaveLayout: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save layout"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
