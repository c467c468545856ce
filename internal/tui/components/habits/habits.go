package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/utils"
)

type ToggleHabitMsg struct {
	ID int64
}

type MoveHabitMsg struct {
	ID    int64
	Delta int
}

type AddHabitMsg struct{}

type EditHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	ID int64
}

type OpenCommentsMsg struct {
	Log models.HabitLog
}

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type Item struct {
	Habit    models.Habit
	Log      *models.HabitLog
	Progress dashboard.Progress
	Mine     bool
}

func (i Item) Done() bool { return i.Log != nil && i.Log.Completed }

func (i Item) Title() string {
	mark := "○ "
	if i.Done() {
		mark = "✓ "
	}
	title := mark + i.Habit.Name
	if !i.Mine {
		owner := i.Habit.UserDisplayName
		if owner == "" {
			owner = i.Habit.UserName
		}
		title += " · " + owner
	}
	return title
}

func (i Item) Description() string {
	var parts []string
	switch i.Habit.Type() {
	case models.HabitWeekly:
		var days []string
		for _, d := range i.Habit.Days() {
			days = append(days, weekdayNames[d])
		}
		parts = append(parts, strings.Join(days, ", "))
	case models.HabitWeeklyCount:
		parts = append(parts, fmt.Sprintf("%d/%d this week (%d%%)", i.Progress.Done, i.Progress.Target, i.Progress.Percent))
	default:
		parts = append(parts, "daily")
	}
	if i.Habit.Streak > 0 {
		parts = append(parts, fmt.Sprintf("🔥 %d", i.Habit.Streak))
	}
	if i.Log != nil && i.Log.Note != "" {
		parts = append(parts, "“"+i.Log.Note+"”")
	}
	if i.Log != nil && len(i.Log.Comments) > 0 {
		parts = append(parts, fmt.Sprintf("%d comments", len(i.Log.Comments)))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Toggle   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Comments key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "check off"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("shift+↑", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("shift+↓", "move down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Comments: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comments"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.MoveUp, keys.MoveDown, keys.Comments}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.MoveUp, keys.MoveDown, keys.Add, keys.Edit, keys.Delete, keys.Comments}
	}
	return Model{list: l, keys: keys}
}

// Items builds the rows for the habits due on the snapshot's date.
func Items(visible []models.Habit, snap dashboard.Snapshot) []Item {
	day := snap.SelectedDate
	items := make([]Item, 0, len(visible))
	for _, h := range visible {
		it := Item{Habit: h, Mine: h.UserID == snap.UserID}
		for idx := range snap.Logs {
			l := snap.Logs[idx]
			if l.Habit.ID == h.ID && l.User.ID == h.UserID && l.LogDate == day {
				it.Log = &l
				break
			}
		}
		if h.Type() == models.HabitWeeklyCount {
			it.Progress = dashboard.WeeklyProgress(h, snap.WeekLogs, mustDay(day))
		}
		items = append(items, it)
	}
	return items
}

// SetItems replaces the rows, keeping the cursor on the same habit.
func (m *Model) SetItems(items []Item) {
	var selected int64
	if it, ok := m.Selected(); ok {
		selected = it.Habit.ID
	}
	listItems := make([]list.Item, len(items))
	cursor := 0
	for i, it := range items {
		listItems[i] = it
		if it.Habit.ID == selected {
			cursor = i
		}
	}
	m.list.SetItems(listItems)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
}

// Selected returns the highlighted row.
func (m Model) Selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		i, selected := m.Selected()
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case !selected:
		case key.Matches(msg, m.keys.Toggle):
			return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
		case key.Matches(msg, m.keys.MoveUp) && i.Mine:
			return m, func() tea.Msg { return MoveHabitMsg{ID: i.Habit.ID, Delta: -1} }
		case key.Matches(msg, m.keys.MoveDown) && i.Mine:
			return m, func() tea.Msg { return MoveHabitMsg{ID: i.Habit.ID, Delta: 1} }
		case key.Matches(msg, m.keys.Edit) && i.Mine:
			return m, func() tea.Msg { return EditHabitMsg{Habit: i.Habit} }
		case key.Matches(msg, m.keys.Delete) && i.Mine:
			return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
		case key.Matches(msg, m.keys.Comments) && i.Log != nil:
			log := *i.Log
			return m, func() tea.Msg { return OpenCommentsMsg{Log: log} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func mustDay(date string) time.Time {
	t, err := utils.ParseDate(date)
	if err != nil {
		return time.Now()
	}
	return t
}
