package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/tui/components/pomodoro"
	"github.com/julianstephens/deeply/internal/tui/components/todolist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.todoList.SetSize(msg.Width-h, msg.Height-v-4)
		m.statsView.SetSize(msg.Width-h, msg.Height-v-4)
		m.timer.SetWidth(msg.Width - h)
		return m, nil

	case todosLoadedMsg:
		m.todoList.SetTodos(msg.todos)
		return m, nil

	case statsLoadedMsg:
		m.statsView.SetStats(msg.daily, msg.weekly)
		return m, nil

	case sessionLoggedMsg:
		m.status = fmt.Sprintf("Logged %g min %s session", msg.session.Minutes(), msg.session.Mode)
		return m, m.loadStats()

	case errMsg:
		m.err = msg.err
		return m, nil

	// Timer messages reach the clock whichever tab is showing
	case timer.TickMsg, timer.StartStopMsg, timer.TimeoutMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd

	case pomodoro.CompletedMsg:
		return m, m.logSession(msg)

	case todolist.AddTodoMsg:
		m.form = m.newTodoForm()
		m.state = StateAdding
		return m, m.form.Init()

	case todolist.ToggleTodoMsg:
		return m, m.toggleTodo(msg.Todo)

	case todolist.DeleteTodoMsg:
		m.todoToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case todolist.FocusTodoMsg:
		m.timer.SetTask(msg.Name)
		m.state = StateTimer
		return m, nil
	}

	switch m.state {
	case StateAdding:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, m.enterTab()
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, m.enterTab()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateTimer:
		m.timer, cmd = m.timer.Update(msg)
	case StateTodos:
		m.todoList, cmd = m.todoList.Update(msg)
	case StateStats:
		m.statsView, cmd = m.statsView.Update(msg)
	}
	return m, cmd
}

func (m Model) enterTab() tea.Cmd {
	if m.state == StateStats {
		return m.loadStats()
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		m.state = StateTodos
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		todo := *m.todoForm
		m.form = nil
		m.todoForm = nil
		m.state = StateTodos
		m.status = "Added " + todo.Name
		return m, m.createTodo(todo)
	case huh.StateAborted:
		m.form = nil
		m.state = StateTodos
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		id := m.todoToDeleteID
		m.state = StateTodos
		return m, m.deleteTodo(id)
	case key.Matches(k, m.keys.Cancel), key.Matches(k, m.keys.Quit):
		m.state = StateTodos
	}
	return m, nil
}

func taskLabel(name string) string {
	if name == "" {
		return constants.NoTaskSelected
	}
	return name
}
