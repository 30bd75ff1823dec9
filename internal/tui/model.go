package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/service"
	"github.com/julianstephens/deeply/internal/tui/components/pomodoro"
	"github.com/julianstephens/deeply/internal/tui/components/stats"
	"github.com/julianstephens/deeply/internal/tui/components/todolist"
)

type SessionState int

const (
	StateTimer SessionState = iota
	StateTodos
	StateStats
	StateAdding
	StateConfirmDelete
)

const tabCount = 3

type TodoFormModel struct {
	Name     string
	Minutes  string
	Category string
}

type todosLoadedMsg struct {
	todos []models.Todo
}

type statsLoadedMsg struct {
	daily  models.DailyStats
	weekly models.WeeklyInsights
}

type sessionLoggedMsg struct {
	session models.Session
}

type errMsg struct {
	err error
}

type Model struct {
	svc            *service.Service
	state          SessionState
	keys           KeyMap
	help           help.Model
	timer          pomodoro.Model
	todoList       todolist.Model
	statsView      stats.Model
	form           *huh.Form
	todoForm       *TodoFormModel
	todoToDeleteID int64
	status         string
	err            error
	quitting       bool
	width          int
	height         int
}

func NewModel(svc *service.Service) Model {
	return Model{
		svc:       svc,
		state:     StateTimer,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		timer:     pomodoro.New(svc.Modes()),
		todoList:  todolist.New(nil, 0, 0),
		statsView: stats.New(0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateTimer:
		tk := m.timer.Keys()
		keys = append(keys, tk.StartStop, tk.Reset, tk.Mode, tk.Skip)
	case StateTodos:
		keys = append(keys, m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Focus)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateTimer:
		tk := m.timer.Keys()
		actions = []key.Binding{tk.StartStop, tk.Reset, tk.Mode, tk.Skip}
	case StateTodos:
		actions = []key.Binding{m.keys.Add, m.keys.Toggle, m.keys.Delete, m.keys.Focus}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTodos(), m.loadStats())
}

func (m Model) loadTodos() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		todos, err := svc.ListTodos(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return todosLoadedMsg{todos}
	}
}

func (m Model) loadStats() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		daily, err := svc.TodayStats(context.Background())
		if err != nil {
			return errMsg{err}
		}
		weekly, err := svc.WeeklyInsights(context.Background(), 0)
		if err != nil {
			return errMsg{err}
		}
		return statsLoadedMsg{daily: daily, weekly: weekly}
	}
}

func (m Model) logSession(done pomodoro.CompletedMsg) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		fields := map[string]json.RawMessage{}
		set(fields, "mode", done.Mode)
		set(fields, "work_minutes", done.Minutes)
		if done.Task != "" {
			set(fields, "task", done.Task)
		}
		session, err := svc.LogSession(context.Background(), fields)
		if err != nil {
			return errMsg{err}
		}
		logger.Info("session logged", "mode", session.Mode, "task", session.Task)
		return sessionLoggedMsg{session}
	}
}

func (m Model) toggleTodo(t models.Todo) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if _, err := svc.SetCompleted(context.Background(), t.ID, !t.Completed); err != nil {
			return errMsg{err}
		}
		return m.loadTodos()()
	}
}

func (m Model) deleteTodo(id int64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTodo(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return m.loadTodos()()
	}
}

func (m Model) createTodo(form TodoFormModel) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		fields := map[string]json.RawMessage{}
		set(fields, "name", strings.TrimSpace(form.Name))
		if s := strings.TrimSpace(form.Minutes); s != "" {
			minutes, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return errMsg{fmt.Errorf("invalid estimate %q", s)}
			}
			set(fields, "estimated_minutes", minutes)
		}
		if form.Category != "" {
			set(fields, "category", form.Category)
		}
		if _, err := svc.CreateTodo(context.Background(), fields); err != nil {
			return errMsg{err}
		}
		return m.loadTodos()()
	}
}

func set(fields map[string]json.RawMessage, key string, v any) {
	// Strings and floats always marshal
	raw, _ := json.Marshal(v)
	fields[key] = raw
}

func (m *Model) newTodoForm() *huh.Form {
	m.todoForm = &TodoFormModel{}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.todoForm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Estimated minutes").
				Value(&m.todoForm.Minutes).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("University", "university"),
					huh.NewOption("Career", "career"),
					huh.NewOption("Other", "other"),
				).
				Value(&m.todoForm.Category),
		),
	)
}
