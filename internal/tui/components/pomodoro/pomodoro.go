package pomodoro

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/service"
)

var (
	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(1, 0)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Phase int

const (
	PhaseWork Phase = iota
	PhaseBreak
)

func (p Phase) String() string {
	if p == PhaseBreak {
		return "Break"
	}
	return "Focus"
}

// CompletedMsg is sent when a work phase runs out
type CompletedMsg struct {
	Mode    string
	Task    string
	Minutes float64
}

type KeyMap struct {
	StartStop key.Binding
	Reset     key.Binding
	Mode      key.Binding
	Skip      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		StartStop: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "switch mode"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "skip phase"),
		),
	}
}

type Model struct {
	modes    []service.ModeInfo
	mode     int
	phase    Phase
	task     string
	started  bool
	timer    timer.Model
	progress progress.Model
	keys     KeyMap
}

func New(modes []service.ModeInfo) Model {
	m := Model{
		modes:    modes,
		progress: progress.New(progress.WithDefaultGradient()),
		keys:     DefaultKeyMap(),
	}
	m.reset()
	return m
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Mode() service.ModeInfo {
	return m.modes[m.mode]
}

func (m Model) Phase() Phase {
	return m.phase
}

func (m Model) Task() string {
	return m.task
}

// Running reports whether the clock is ticking
func (m Model) Running() bool {
	return m.started && m.timer.Running()
}

// SetTask sets the todo name credited when the work phase completes
func (m *Model) SetTask(name string) {
	m.task = name
}

func (m *Model) SetWidth(width int) {
	m.progress.Width = max(10, min(width-4, 60))
}

func (m Model) length() time.Duration {
	mode := m.Mode()
	if m.phase == PhaseBreak {
		return time.Duration(mode.Break) * time.Minute
	}
	return time.Duration(mode.Work) * time.Minute
}

func (m *Model) reset() {
	m.started = false
	m.timer = timer.NewWithInterval(m.length(), time.Second)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd

	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() {
			return m, nil
		}
		return m.finishPhase()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.StartStop):
			if !m.started {
				m.started = true
				return m, m.timer.Init()
			}
			return m, m.timer.Toggle()
		case key.Matches(msg, m.keys.Reset):
			m.reset()
		case key.Matches(msg, m.keys.Mode):
			if !m.started && len(m.modes) > 0 {
				m.mode = (m.mode + 1) % len(m.modes)
				m.phase = PhaseWork
				m.reset()
			}
		case key.Matches(msg, m.keys.Skip):
			m.phase = m.nextPhase()
			m.reset()
		}
	}
	return m, nil
}

func (m Model) nextPhase() Phase {
	if m.phase == PhaseWork {
		return PhaseBreak
	}
	return PhaseWork
}

// finishPhase moves to the next phase. A finished work phase is reported and
// the break starts right away; a finished break waits for the user.
func (m Model) finishPhase() (Model, tea.Cmd) {
	if m.phase == PhaseBreak {
		m.phase = PhaseWork
		m.reset()
		return m, nil
	}

	done := CompletedMsg{
		Mode:    m.Mode().Name,
		Task:    m.task,
		Minutes: float64(m.Mode().Work),
	}
	m.phase = PhaseBreak
	m.reset()
	m.started = true
	return m, tea.Batch(func() tea.Msg { return done }, m.timer.Init())
}

func (m Model) percent() float64 {
	total := m.length()
	if total <= 0 {
		return 0
	}
	p := 1 - float64(m.timer.Timeout)/float64(total)
	return max(0, min(1, p))
}

func (m Model) View() string {
	mode := m.Mode()
	header := phaseStyle.Render(fmt.Sprintf("%s · %s mode (%d/%d)", m.phase, mode.Name, mode.Work, mode.Break))

	remaining := m.timer.Timeout.Round(time.Second)
	clock := clockStyle.Render(fmt.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60))

	task := m.task
	if task == "" {
		task = constants.NoTaskSelected
	}

	status := "paused"
	switch {
	case !m.started:
		status = "press s to start"
	case m.Running():
		status = "running"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		clock,
		m.progress.ViewAs(m.percent()),
		"",
		"Task: "+task,
		mutedStyle.Render(status),
	)
}
