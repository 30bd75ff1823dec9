package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(8)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	Daily    *models.DailyStats
	Weekly   *models.WeeklyInsights
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), width: width, height: height}
}

func (m *Model) SetStats(daily models.DailyStats, weekly models.WeeklyInsights) {
	m.Daily = &daily
	m.Weekly = &weekly
	m.viewport.SetContent(m.render())
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.render())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Daily == nil {
		return "\n  Loading stats..."
	}
	return m.viewport.View()
}

func (m Model) render() string {
	if m.Daily == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Today") + "\n")
	fmt.Fprintf(&b, "  Pomodoros: %d\n", m.Daily.TotalPomodoros)
	fmt.Fprintf(&b, "  Focus:     %g min\n\n", m.Daily.TotalMinutes)

	for _, s := range m.Daily.Sessions {
		when := s.CompletedAt
		if len(when) >= 16 {
			when = when[11:16]
		}
		task := s.Task
		if task == "" {
			task = constants.NoTaskSelected
		}
		fmt.Fprintf(&b, "  %s%s %s\n", timeStyle.Render(when), taskStyle.Render(task), modeStyle.Render(fmt.Sprintf("(%s, %g min)", s.Mode, s.Minutes())))
	}

	if w := m.Weekly; w != nil {
		b.WriteString("\n" + headingStyle.Render(fmt.Sprintf("This week (%s to %s)", w.WeekStart, w.WeekEnd)) + "\n")
		fmt.Fprintf(&b, "  Sessions:  %d\n", w.Sessions)
		fmt.Fprintf(&b, "  Focus:     %g min\n", w.FocusMinutes)
		fmt.Fprintf(&b, "  Completed: %d todos\n", w.TasksCompleted)
		if w.CompletionRate != nil {
			fmt.Fprintf(&b, "  Rate:      %d%%\n", *w.CompletionRate)
		}
		for _, k := range sortedKeys(w.Allocation) {
			fmt.Fprintf(&b, "  %-10s %g min\n", k+":", w.Allocation[k])
		}
	}
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
