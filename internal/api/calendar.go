package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/famtrack/internal/models"
)

// Events returns the group's calendar events between start and end (YYYY-MM-DD).
func (c *Client) Events(ctx context.Context, start, end string) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	q := url.Values{"start": {start}, "end": {end}}
	if err := c.call(ctx, "calendar.list", http.MethodGet, "/calendar", q, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent adds an event to the group calendar.
func (c *Client) CreateEvent(ctx context.Context, req models.CalendarEventRequest) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := c.call(ctx, "calendar.create", http.MethodPost, "/calendar", nil, req, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEvent replaces an event.
func (c *Client) UpdateEvent(ctx context.Context, id int64, req models.CalendarEventRequest) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	if err := c.call(ctx, "calendar.update", http.MethodPut, eventPath(id), nil, req, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.call(ctx, "calendar.delete", http.MethodDelete, eventPath(id), nil, nil, nil)
}

func eventPath(id int64) string {
	return "/calendar/" + strconv.FormatInt(id, 10)
}
