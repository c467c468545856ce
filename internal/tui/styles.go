package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/famtrack/internal/constants"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "161", Dark: "205"}).
			Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"}).
			Padding(0, 1).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "240"}).
			Padding(0, 1)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "166", Dark: "214"}).
			Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"})

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// ApplyTheme pins adaptive colors to the saved theme instead of the
// terminal's detected background.
func ApplyTheme(theme string) {
	switch theme {
	case constants.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	case constants.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}
