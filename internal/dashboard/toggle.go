package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/julianstephens/famtrack/internal/models"
)

var (
	// ErrNotOwner is returned when toggling another member's habit.
	ErrNotOwner = errors.New("only the owner can check off a habit")
	// ErrCompletionSettled is returned by Confirm after Confirm or Cancel.
	ErrCompletionSettled = errors.New("completion already confirmed or cancelled")
)

// PendingCompletion is the second phase of checking off a habit. Nothing
// is written until Confirm; Cancel abandons it.
type PendingCompletion struct {
	engine  *Engine
	HabitID int64
	Date    string
	Note    string // existing note, to prefill the prompt

	mu      sync.Mutex
	settled bool
}

// BeginToggle flips the signed-in user's log for habitID on the selected
// date. Unchecking is written immediately, keeping any existing note, and
// returns a nil PendingCompletion. Checking returns a PendingCompletion
// that must be confirmed with a note.
func (e *Engine) BeginToggle(ctx context.Context, habitID int64) (*PendingCompletion, error) {
	user, err := e.user()
	if err != nil {
		return nil, err
	}
	h, ok := e.habit(habitID)
	if !ok {
		return nil, ErrUnknownHabit
	}
	if h.UserID != user.ID {
		return nil, ErrNotOwner
	}

	date := e.SelectedDate()
	existing, _ := e.LogFor(habitID, user.ID)
	if existing.Completed {
		req := models.LogRequest{HabitID: habitID, LogDate: date, Completed: false, Note: existing.Note}
		if err := e.writeLog(ctx, req); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &PendingCompletion{engine: e, HabitID: habitID, Date: date, Note: existing.Note}, nil
}

// Confirm writes the completion with note and reloads.
func (p *PendingCompletion) Confirm(ctx context.Context, note string) error {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return ErrCompletionSettled
	}
	p.settled = true
	p.mu.Unlock()

	req := models.LogRequest{
		HabitID:   p.HabitID,
		LogDate:   p.Date,
		Completed: true,
		Note:      strings.TrimSpace(note),
	}
	return p.engine.writeLog(ctx, req)
}

// Cancel abandons the completion. It is safe to call more than once.
func (p *PendingCompletion) Cancel() {
	p.mu.Lock()
	p.settled = true
	p.mu.Unlock()
}

// UpdateNote rewrites the note on an existing log without changing its
// completion state.
func (e *Engine) UpdateNote(ctx context.Context, habitID int64, note string) error {
	user, err := e.user()
	if err != nil {
		return err
	}
	existing, ok := e.LogFor(habitID, user.ID)
	if !ok {
		return ErrUnknownHabit
	}
	req := models.LogRequest{
		HabitID:   habitID,
		LogDate:   existing.LogDate,
		Completed: existing.Completed,
		Note:      strings.TrimSpace(note),
	}
	return e.writeLog(ctx, req)
}

func (e *Engine) writeLog(ctx context.Context, req models.LogRequest) error {
	if _, err := e.api.Log(ctx, req); err != nil {
		return e.fail("update habit", err)
	}
	return e.LoadData(ctx, false)
}
