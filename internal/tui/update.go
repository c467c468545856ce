package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitsModel.SetSize(msg.Width-4, msg.Height-8)
		m.threadModel.SetSize(msg.Width-4, msg.Height-10)
		m.input.Width = msg.Width - 8
		return m, nil

	case snapshotMsg:
		m.applySnapshot(dashboard.Snapshot(msg))
		return m, m.bridge.wait()

	case errorMsg:
		return m, tea.Batch(m.bridge.wait(), m.addToast(toastError, string(msg)))

	case localErrorMsg:
		return m, m.addToast(toastError, string(msg))

	case noticeMsg:
		return m, tea.Batch(m.bridge.wait(), m.addToast(toastNotice, string(msg)))

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case pendingMsg:
		m.pending = msg.pending
		m.noteForm = &NoteFormModel{Note: msg.pending.Note}
		m.form = NewNoteForm(m.noteForm, msg.name)
		m.state = constants.StateNote
		return m, m.form.Init()

	case commentsMsg:
		m.threadModel.SetThread(msg.log, msg.comments, m.members())
		return m, nil
	}

	switch m.state {
	case constants.StateNote:
		return m.updateNote(msg)
	case constants.StateAddHabit:
		return m.updateHabitForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateComments:
		return m.updateComments(msg)
	}
	return m.updateDashboard(msg)
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.engine.Stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			return m, m.run("prev day", func(ctx context.Context) error { return m.engine.ShiftDate(ctx, -1) })
		case key.Matches(msg, m.keys.NextDay):
			return m, m.run("next day", func(ctx context.Context) error { return m.engine.ShiftDate(ctx, 1) })
		case key.Matches(msg, m.keys.Today):
			today := m.today()
			return m, m.run("today", func(ctx context.Context) error { return m.engine.SetSelectedDate(ctx, today) })
		case key.Matches(msg, m.keys.Reload):
			return m, m.run("reload", func(ctx context.Context) error { return m.engine.LoadData(ctx, false) })
		}
	}

	switch msg := msg.(type) {
	case habits.ToggleHabitMsg:
		name := ""
		if it, ok := m.habitsModel.Selected(); ok {
			name = it.Habit.Name
		}
		return m, m.toggleCmd(msg.ID, name)
	case habits.MoveHabitMsg:
		return m, m.moveCmd(msg.ID, msg.Delta)
	case habits.AddHabitMsg:
		m.editingHabitID = 0
		m.habitForm = NewHabitFormModel(nil, m.engine.LastHabitColor())
		m.form = NewHabitForm(m.habitForm)
		m.state = constants.StateAddHabit
		return m, m.form.Init()
	case habits.EditHabitMsg:
		h := msg.Habit
		m.editingHabitID = h.ID
		m.habitForm = NewHabitFormModel(&h, "")
		m.form = NewHabitForm(m.habitForm)
		m.state = constants.StateAddHabit
		return m, m.form.Init()
	case habits.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = constants.StateConfirmDelete
		return m, nil
	case habits.OpenCommentsMsg:
		m.state = constants.StateComments
		m.threadModel.SetThread(msg.Log, msg.Log.Comments, m.members())
		m.input.Reset()
		m.suggestions = nil
		return m, tea.Batch(m.input.Focus(), m.loadCommentsCmd(msg.Log))
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.pending.Cancel()
		m.pending = nil
		m.state = constants.StateDashboard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		p, note := m.pending, m.noteForm.Note
		m.pending = nil
		m.state = constants.StateDashboard
		cmds = append(cmds, m.run("complete", func(ctx context.Context) error { return p.Confirm(ctx, note) }))
	case huh.StateAborted:
		m.pending.Cancel()
		m.pending = nil
		m.state = constants.StateDashboard
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateDashboard
		hf, err := m.habitForm.HabitForm()
		if err != nil {
			cmds = append(cmds, m.addToast(toastError, err.Error()))
			break
		}
		id := m.editingHabitID
		cmds = append(cmds, m.run("save habit", func(ctx context.Context) error {
			var err error
			if id == 0 {
				_, err = m.engine.CreateHabit(ctx, hf)
			} else {
				_, err = m.engine.UpdateHabit(ctx, id, hf)
			}
			return err
		}))
	case huh.StateAborted:
		m.state = constants.StateDashboard
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch msgKey.String() {
	case "y", "Y":
		id := m.habitToDeleteID
		m.habitToDeleteID = 0
		m.state = constants.StateDashboard
		return m, m.run("delete habit", func(ctx context.Context) error { return m.engine.DeleteHabit(ctx, id) })
	case "n", "N", "esc", "q":
		m.habitToDeleteID = 0
		m.state = constants.StateDashboard
	}
	return m, nil
}

func (m Model) updateComments(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.input.Blur()
			m.state = constants.StateDashboard
			return m, nil
		case key.Matches(msg, m.keys.Complete) && len(m.suggestions) > 0:
			mention, ok := comments.DetectMention(m.input.Value(), m.input.Position())
			if ok {
				text, cursor := comments.ApplyMention(m.input.Value(), mention, m.suggestions[0].Username)
				m.input.SetValue(text)
				m.input.SetCursor(cursor)
			}
			m.suggestions = nil
			return m, nil
		case key.Matches(msg, m.keys.Send):
			if m.threadModel.Log == nil {
				return m, nil
			}
			text := m.input.Value()
			m.input.Reset()
			m.suggestions = nil
			return m, m.postCommentCmd(*m.threadModel.Log, text)
		case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			m.threadModel, cmd = m.threadModel.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateSuggestions()
	return m, cmd
}
