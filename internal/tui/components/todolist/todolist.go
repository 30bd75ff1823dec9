package todolist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/deeply/internal/models"
)

type AddTodoMsg struct{}

type ToggleTodoMsg struct {
	Todo models.Todo
}

type DeleteTodoMsg struct {
	ID int64
}

// FocusTodoMsg asks the timer to track the selected todo
type FocusTodoMsg struct {
	Name string
}

type Item struct {
	Todo models.Todo
}

func (i Item) Title() string {
	if i.Todo.Completed {
		return "✓ " + i.Todo.Name
	}
	return i.Todo.Name
}

func (i Item) Description() string {
	desc := "no estimate"
	if i.Todo.EstimatedMinutes != nil {
		desc = fmt.Sprintf("%g min", *i.Todo.EstimatedMinutes)
	}
	if c := i.Todo.Category(); c != "" {
		desc += " | " + c
	}
	return desc
}

func (i Item) FilterValue() string { return i.Todo.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Focus  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Focus: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus on"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(todos []models.Todo, width, height int) Model {
	l := list.New(toItems(todos), list.NewDefaultDelegate(), width, height)
	l.Title = "Todos"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Focus}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Focus}
	}

	return Model{list: l, keys: keys}
}

func toItems(todos []models.Todo) []list.Item {
	items := make([]list.Item, len(todos))
	for i, t := range todos {
		items[i] = Item{Todo: t}
	}
	return items
}

func (m *Model) SetTodos(todos []models.Todo) {
	m.list.SetItems(toItems(todos))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTodoMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleTodoMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteTodoMsg{ID: i.Todo.ID} }
			}
		case key.Matches(msg, m.keys.Focus):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return FocusTodoMsg{Name: i.Todo.Name} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No todos yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
