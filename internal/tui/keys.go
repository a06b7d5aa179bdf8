package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Open, Back            key.Binding
	Users, Projects       key.Binding
	New, Rename, Delete   key.Binding
	Search, TagFilter     key.Binding
	AddTag, Assign        key.Binding
	MoveLeft, MoveRight   key.Binding
	MoveUp, MoveDown      key.Binding
	Reset, Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Users:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "team")),
		Projects:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "projects")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Rename:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		TagFilter: key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "tag filter")),
		AddTag:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add tag")),
		Assign:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assign")),
		MoveLeft:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H/L", "move card")),
		MoveRight: key.NewBinding(key.WithKeys("L", "shift+right")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("J/K", "reorder")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset demo")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpFor lists the bindings shown in the footer of each screen.
func (k keyMap) helpFor(screen string) []key.Binding {
	switch screen {
	case "board":
		return []key.Binding{k.Open, k.New, k.MoveLeft, k.MoveUp, k.Assign, k.AddTag, k.Search, k.TagFilter, k.Delete, k.Back, k.Quit}
	case "users":
		return []key.Binding{k.New, k.Delete, k.Projects, k.Back, k.Quit}
	default:
		return []key.Binding{k.Open, k.New, k.Rename, k.Delete, k.Users, k.Reset, k.Quit}
	}
}
