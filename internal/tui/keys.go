package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	All         key.Binding
	Uncompleted key.Binding
	Completed   key.Binding
	Search      key.Binding
	Add         key.Binding
	Toggle      key.Binding
	Inc         key.Binding
	Dec         key.Binding
	Delete      key.Binding
	Passphrase  key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		All:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Uncompleted: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "open")),
		Completed:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "done")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
		Inc:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "qty up")),
		Dec:         key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "qty down")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Passphrase:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "passphrase")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Inc, k.Dec, k.Delete, k.Search, k.All, k.Uncompleted, k.Completed, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Search, k.All, k.Uncompleted, k.Completed},
		{k.Add, k.Toggle, k.Inc, k.Dec, k.Delete},
		{k.Passphrase, k.Reload, k.Help, k.Quit},
	}
}
