package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/famtrack/internal/models"
)

// Habits returns every habit visible to the caller's group.
func (c *Client) Habits(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	if err := c.call(ctx, "habits.list", http.MethodGet, "/habits", nil, nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreateHabit creates a habit owned by the caller.
func (c *Client) CreateHabit(ctx context.Context, req models.HabitRequest) (*models.Habit, error) {
	var h models.Habit
	if err := c.call(ctx, "habits.create", http.MethodPost, "/habits", nil, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHabit replaces a habit's editable fields.
func (c *Client) UpdateHabit(ctx context.Context, id int64, req models.HabitRequest) (*models.Habit, error) {
	var h models.Habit
	if err := c.call(ctx, "habits.update", http.MethodPut, habitPath(id), nil, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DeleteHabit removes a habit.
func (c *Client) DeleteHabit(ctx context.Context, id int64) error {
	return c.call(ctx, "habits.delete", http.MethodDelete, habitPath(id), nil, nil, nil)
}

// MoveHabit shifts a habit one slot up or down.
func (c *Client) MoveHabit(ctx context.Context, id int64, dir models.MoveDirection) error {
	q := url.Values{"direction": {string(dir)}}
	return c.call(ctx, "habits.move", http.MethodPut, habitPath(id)+"/reorder", q, nil, nil)
}

// ReorderHabits persists a full batch of display orders in one request.
func (c *Client) ReorderHabits(ctx context.Context, orders []models.HabitOrder) error {
	return c.call(ctx, "habits.reorder_batch", http.MethodPut, "/habits/reorder-batch", nil, orders, nil)
}

func habitPath(id int64) string {
	return "/habits/" + strconv.FormatInt(id, 10)
}
