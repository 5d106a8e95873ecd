package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Back      key.Binding
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	NextMonth key.Binding
	PrevMonth key.Binding
	NextYear  key.Binding
	PrevYear  key.Binding
	Today     key.Binding
	Events    key.Binding
	Tasks     key.Binding
	Open      key.Binding
	Edit      key.Binding
	Create    key.Binding
	Delete    key.Binding
	Toggle    key.Binding
	Clear     key.Binding
	Refresh   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "back")),
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "day")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "day")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		NextMonth: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next month")),
		PrevMonth: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "prev month")),
		NextYear:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "next year")),
		PrevYear:  key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "prev year")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Events:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "events")),
		Tasks:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "tasks")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "notes")),
		Edit:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add/edit")),
		Create:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "new")),
		Delete:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		Clear:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "clear done")),
		Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	}
}

// helpFor returns the footer bindings for the given focus.
func (k keyMap) helpFor(f focus) []key.Binding {
	switch f.kind {
	case focusEvents:
		return []key.Binding{k.Up, k.Down, k.Edit, k.Create, k.Delete, k.Refresh, k.Back}
	case focusTasks:
		if f.notes {
			return []key.Binding{k.Up, k.Down, k.Edit, k.Toggle, k.Back}
		}
		return []key.Binding{k.Up, k.Down, k.Open, k.Edit, k.Create, k.Delete, k.Toggle, k.Clear, k.Back}
	default:
		return []key.Binding{k.Left, k.Right, k.PrevMonth, k.NextMonth, k.Today, k.Events, k.Tasks, k.Edit, k.Refresh, k.Back}
	}
}

type editKeyMap struct {
	Cancel      key.Binding
	Submit      key.Binding
	Left        key.Binding
	Right       key.Binding
	Home        key.Binding
	End         key.Binding
	Backspace   key.Binding
	Delete      key.Binding
	KillToStart key.Binding
	KillToEnd   key.Binding
}

func defaultEditKeyMap() editKeyMap {
	return editKeyMap{
		Cancel:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Left:        key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right:       key.NewBinding(key.WithKeys("right", "ctrl+f")),
		Home:        key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:         key.NewBinding(key.WithKeys("end", "ctrl+e")),
		Backspace:   key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		Delete:      key.NewBinding(key.WithKeys("delete", "ctrl+d")),
		KillToStart: key.NewBinding(key.WithKeys("ctrl+u")),
		KillToEnd:   key.NewBinding(key.WithKeys("ctrl+k")),
	}
}

func (k editKeyMap) help() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}
