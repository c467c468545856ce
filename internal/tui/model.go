// Package tui is the interactive dashboard: the selected day's habits for
// the whole group, check-off with notes, reordering, and comment threads.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/tui/components/habits"
	"github.com/julianstephens/famtrack/internal/tui/components/thread"
	"github.com/julianstephens/famtrack/internal/utils"
)

var toastDuration = 4 * time.Second

type toastKind int

const (
	toastError toastKind = iota
	toastNotice
)

type toast struct {
	id   int
	kind toastKind
	text string
}

type toastExpiredMsg struct{ id int }

type pendingMsg struct {
	pending *dashboard.PendingCompletion
	name    string
}

type commentsMsg struct {
	log      models.HabitLog
	comments []models.Comment
}

// Deps are the services the dashboard drives.
type Deps struct {
	Engine *dashboard.Engine
	Thread *comments.Thread
	Bridge *Bridge
}

type Model struct {
	ctx    context.Context
	engine *dashboard.Engine
	thread *comments.Thread
	bridge *Bridge

	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model
	threadModel thread.Model
	input       textinput.Model
	suggestions []models.Member
	snapshot    dashboard.Snapshot

	form            *huh.Form
	noteForm        *NoteFormModel
	habitForm       *HabitFormModel
	pending         *dashboard.PendingCompletion
	editingHabitID  int64
	habitToDeleteID int64

	toasts      []toast
	nextToastID int
	quitting    bool
	width       int
	height      int
}

func NewModel(ctx context.Context, deps Deps) Model {
	in := textinput.New()
	in.Placeholder = "Add a comment, @ to mention"
	in.CharLimit = models.MaxCommentLength

	return Model{
		ctx:         ctx,
		engine:      deps.Engine,
		thread:      deps.Thread,
		bridge:      deps.Bridge,
		state:       constants.StateDashboard,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(0, 0),
		threadModel: thread.New(0, 0),
		input:       in,
		snapshot:    deps.Engine.Snapshot(),
	}
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateComments:
		return []key.Binding{m.keys.Send, m.keys.Complete, m.keys.Back}
	case constants.StateDashboard:
		return m.keys.ShortHelp()
	}
	return []key.Binding{m.keys.Back}
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	ctx, e := m.ctx, m.engine
	return tea.Batch(
		m.bridge.wait(),
		func() tea.Msg {
			if err := e.LoadData(ctx, false); err != nil {
				logger.Debug("initial load failed", "error", err)
			}
			e.Start(ctx)
			return nil
		},
	)
}

func (m *Model) addToast(kind toastKind, text string) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, kind: kind, text: text})
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m *Model) applySnapshot(s dashboard.Snapshot) {
	m.snapshot = s
	m.habitsModel.SetItems(habits.Items(s.Visible(), s))
}

func (m Model) members() []models.Member {
	if m.snapshot.Family == nil {
		return nil
	}
	return m.snapshot.Family.Members
}

// run executes an engine operation off the UI loop. Operation failures
// reach the UI through the engine's error callback.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			logger.Debug("dashboard operation failed", "op", op, "error", err)
		}
		return nil
	}
}

func (m Model) toggleCmd(id int64, name string) tea.Cmd {
	ctx, e := m.ctx, m.engine
	return func() tea.Msg {
		p, err := e.BeginToggle(ctx, id)
		switch {
		case errors.Is(err, dashboard.ErrNotOwner),
			errors.Is(err, dashboard.ErrUnknownHabit),
			errors.Is(err, dashboard.ErrNotLoggedIn):
			return localErrorMsg(err.Error())
		case err != nil, p == nil:
			return nil
		}
		return pendingMsg{pending: p, name: name}
	}
}

func (m Model) moveCmd(id int64, delta int) tea.Cmd {
	mine := m.snapshot.Mine()
	from := -1
	for i, h := range mine {
		if h.ID == id {
			from = i
		}
	}
	to := from + delta
	if from < 0 || to < 0 || to >= len(mine) {
		return nil
	}
	return m.run("reorder", func(ctx context.Context) error { return m.engine.Reorder(ctx, from, to) })
}

func (m Model) loadCommentsCmd(log models.HabitLog) tea.Cmd {
	ctx, th := m.ctx, m.thread
	return func() tea.Msg {
		cs, err := th.List(ctx, log.ID)
		if err != nil {
			return localErrorMsg("Failed to load comments: " + err.Error())
		}
		return commentsMsg{log: log, comments: cs}
	}
}

func (m Model) postCommentCmd(log models.HabitLog, text string) tea.Cmd {
	ctx, th := m.ctx, m.thread
	return func() tea.Msg {
		if _, err := th.Post(ctx, log.ID, text); err != nil {
			return localErrorMsg("Failed to post comment: " + err.Error())
		}
		cs, err := th.List(ctx, log.ID)
		if err != nil {
			return localErrorMsg("Failed to load comments: " + err.Error())
		}
		return commentsMsg{log: log, comments: cs}
	}
}

func (m *Model) updateSuggestions() {
	mention, ok := comments.DetectMention(m.input.Value(), m.input.Position())
	if !ok {
		m.suggestions = nil
		return
	}
	m.suggestions = comments.FilterMembers(m.members(), mention.Filter, m.snapshot.UserID)
}

func (m Model) today() string {
	return utils.Today()
}
