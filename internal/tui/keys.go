package tui

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	search    key.Binding
	newChat   key.Binding
	newFolder key.Binding
	rename    key.Binding
	del       key.Binding
	favorite  key.Binding
	color     key.Binding
	move      key.Binding
	copy      key.Binding
	export    key.Binding
	refresh   key.Binding
	sidebar   key.Binding
	pageDown  key.Binding
	pageUp    key.Binding
	cancel    key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeymap() keymap {
	return keymap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/open")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		newChat:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new chat")),
		newFolder: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new folder")),
		rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		del:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		color:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "folder color")),
		move:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move to folder")),
		copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy markdown")),
		export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export zip")),
		refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		sidebar:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle sidebar")),
		pageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll chat")),
		pageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll chat")),
		cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.search, k.newChat, k.rename, k.del, k.move, k.help, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.search, k.cancel},
		{k.newChat, k.newFolder, k.rename, k.del, k.favorite},
		{k.color, k.move, k.copy, k.export, k.refresh},
		{k.sidebar, k.pageDown, k.pageUp, k.help, k.quit},
	}
}
