package tui

import (
	"complaint-desk/internal/model"
	"complaint-desk/internal/perm"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Edit    key.Binding
	New     key.Binding
	Reload  key.Binding
	Details key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap(u model.User) keyMap {
	k := keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "resolve/reopen")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new complaint")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Details: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	k.Toggle.SetEnabled(perm.CanToggleStatus(u))
	k.New.SetEnabled(perm.CanSubmit(u))
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Delete, k.Edit, k.New, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Details},
		{k.Toggle, k.Delete, k.Edit, k.New},
		{k.Reload, k.Help, k.Quit},
	}
}
