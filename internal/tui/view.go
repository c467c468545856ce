package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/famtrack/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateNote, constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateComments:
		content = m.viewComments()
	default:
		content = docStyle.Render(m.habitsModel.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewToasts(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	group := "no group"
	if m.snapshot.Family != nil {
		group = m.snapshot.Family.Name
	}
	status := ""
	if m.snapshot.Loading {
		status = "loading…"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render(constants.AppName),
		subtleStyle.Render(group),
		subtleStyle.Render(dayLabel(m.snapshot.SelectedDate, m.today())),
		warningStyle.Render(status),
	)
}

func (m Model) viewToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		if t.kind == toastError {
			lines[i] = dangerStyle.Render("✗ " + t.text)
		} else {
			lines[i] = noticeStyle.Render("★ " + t.text)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewComments() string {
	var b strings.Builder
	b.WriteString(m.threadModel.View())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	for i, s := range m.suggestions {
		if i == 5 {
			break
		}
		line := fmt.Sprintf("  @%s", s.Username)
		if s.DisplayName != "" {
			line += " (" + s.DisplayName + ")"
		}
		b.WriteString("\n" + suggestionStyle.Render(line))
	}
	return docStyle.Render(b.String())
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete this habit and all of its logs?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
