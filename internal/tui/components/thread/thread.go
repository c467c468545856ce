package thread

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/models"
)

var (
	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	mentionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

type Model struct {
	viewport viewport.Model
	Log      *models.HabitLog
	Comments []models.Comment
	Members  []models.Member
	now      func() time.Time
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height), now: time.Now}
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
	if m.Log == nil {
		return "No log selected."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetThread(log models.HabitLog, cs []models.Comment, members []models.Member) {
	m.Log = &log
	m.Comments = cs
	m.Members = members
	m.Render()
	m.viewport.GotoBottom()
}

func (m *Model) Render() {
	if m.Log == nil {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder
	name := m.Log.User.DisplayName
	if name == "" {
		name = m.Log.User.Username
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · %s · %s", m.Log.Habit.Name, name, m.Log.LogDate)))
	b.WriteString("\n")
	if m.Log.Note != "" {
		b.WriteString(timeStyle.Render("“"+m.Log.Note+"”") + "\n")
	}
	b.WriteString("\n")
	if len(m.Comments) == 0 {
		b.WriteString(timeStyle.Render("No comments yet."))
	}
	for _, c := range m.Comments {
		author := c.UserDisplayName
		if author == "" {
			author = c.UserName
		}
		body := comments.RenderWith(c.Content, m.Members, func(s string) string { return mentionStyle.Render(s) })
		fmt.Fprintf(&b, "%s %s\n  %s\n",
			authorStyle.Render(author),
			timeStyle.Render(comments.Ago(c.CreatedAt, m.now())),
			body,
		)
	}
	m.viewport.SetContent(b.String())
}
