package dashboard

import (
	"context"
	"slices"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/storage"
)

// LastHabitColor returns the color used for the most recent habit, for
// prefilling the create form.
func (e *Engine) LastHabitColor() string {
	if e.prefs == nil {
		return constants.DefaultHabitColor
	}
	return storage.GetOr(e.prefs, constants.KeyLastHabitColor, constants.DefaultHabitColor)
}

func (e *Engine) rememberColor(color string) {
	if e.prefs == nil || color == "" {
		return
	}
	if err := e.prefs.Set(constants.KeyLastHabitColor, color); err != nil {
		logger.Warn("failed to remember habit color", "error", err)
	}
}

// CreateHabit validates the form, creates the habit and reloads.
func (e *Engine) CreateHabit(ctx context.Context, form models.HabitForm) (*models.Habit, error) {
	req, err := form.Request()
	if err != nil {
		return nil, e.fail("create habit", err)
	}
	h, err := e.api.CreateHabit(ctx, req)
	if err != nil {
		return nil, e.fail("create habit", err)
	}
	e.rememberColor(req.Color)
	return h, e.LoadData(ctx, false)
}

// UpdateHabit validates the form, updates habit id and reloads.
func (e *Engine) UpdateHabit(ctx context.Context, id int64, form models.HabitForm) (*models.Habit, error) {
	req, err := form.Request()
	if err != nil {
		return nil, e.fail("update habit", err)
	}
	h, err := e.api.UpdateHabit(ctx, id, req)
	if err != nil {
		return nil, e.fail("update habit", err)
	}
	e.rememberColor(req.Color)
	return h, e.LoadData(ctx, false)
}

// DeleteHabit deletes habit id and reloads.
func (e *Engine) DeleteHabit(ctx context.Context, id int64) error {
	if err := e.api.DeleteHabit(ctx, id); err != nil {
		return e.fail("delete habit", err)
	}
	return e.LoadData(ctx, false)
}

// Reorder moves the signed-in user's habit at index from to index to
// (indices into MyHabits). The new order is applied locally at once and
// then sent as one batch; if the batch fails the engine reloads to
// restore the server order.
func (e *Engine) Reorder(ctx context.Context, from, to int) error {
	if from == to {
		return nil
	}
	mine := e.MyHabits()
	moved, orders, err := Move(mine, from, to)
	if err != nil {
		return err
	}

	byID := make(map[int64]int, len(moved))
	for _, h := range moved {
		byID[h.ID] = h.DisplayOrder
	}
	e.mu.Lock()
	habits := slices.Clone(e.habits)
	for i := range habits {
		if order, ok := byID[habits[i].ID]; ok {
			habits[i].DisplayOrder = order
		}
	}
	SortByDisplayOrder(habits)
	e.habits = habits
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.onChange(snap)

	if err := e.api.ReorderHabits(ctx, orders); err != nil {
		e.fail("reorder habits", err)
		if rErr := e.LoadData(ctx, false); rErr != nil {
			logger.Warn("reload after failed reorder", "error", rErr)
		}
		return err
	}
	return nil
}
