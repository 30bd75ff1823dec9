package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateTimer:
		content = docStyle.Render(m.timer.View())
	case StateTodos:
		content = docStyle.Render(m.todoList.View())
	case StateStats:
		content = docStyle.Render(m.statsView.View())
	case StateAdding:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Timer", "Todos", "Stats"} {
		if m.state == SessionState(i) || (i == int(StateTodos) && m.state > StateStats) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, inactiveTabStyle.Render("· "+taskLabel(m.timer.Task())))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this todo?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
