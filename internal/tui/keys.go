package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up          key.Binding
	down        key.Binding
	toggle      key.Binding
	toggleCats  key.Binding
	toggleViews key.Binding
	toggleTasks key.Binding
	zoom        key.Binding
	fit         key.Binding
	help        key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "fold row"),
		),
		toggleCats: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "fold categories"),
		),
		toggleViews: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "fold viewpoints"),
		),
		toggleTasks: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "hide tasks"),
		),
		zoom: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom"),
		),
		fit: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fit width"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.down, k.toggle, k.zoom, k.fit, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.toggleCats, k.toggleViews, k.toggleTasks},
		{k.zoom, k.fit, k.help, k.quit},
	}
}
