package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/famtrack/internal/models"
)

// Log creates or updates the caller's log for (habit, date).
func (c *Client) Log(ctx context.Context, req models.LogRequest) (*models.HabitLog, error) {
	var l models.HabitLog
	if err := c.call(ctx, "logs.log", http.MethodPost, "/logs", nil, req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// FamilyLogs returns every group member's logs for date (YYYY-MM-DD).
func (c *Client) FamilyLogs(ctx context.Context, date string) ([]models.HabitLog, error) {
	var logs []models.HabitLog
	path := "/logs/family/" + url.PathEscape(date)
	if err := c.call(ctx, "logs.family", http.MethodGet, path, nil, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// FamilyLogsRange returns every group member's logs in [start, end].
func (c *Client) FamilyLogsRange(ctx context.Context, start, end string) ([]models.HabitLog, error) {
	var logs []models.HabitLog
	q := url.Values{"startDate": {start}, "endDate": {end}}
	if err := c.call(ctx, "logs.family_range", http.MethodGet, "/logs/family/range", q, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// MyLogs returns the caller's logs for date.
func (c *Client) MyLogs(ctx context.Context, date string) ([]models.HabitLog, error) {
	var logs []models.HabitLog
	path := "/logs/my/" + url.PathEscape(date)
	if err := c.call(ctx, "logs.my", http.MethodGet, path, nil, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// MonthlyStats returns the group's summary for a calendar month.
func (c *Client) MonthlyStats(ctx context.Context, year, month int) (*models.MonthlyStats, error) {
	var stats models.MonthlyStats
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}
	if err := c.call(ctx, "logs.monthly", http.MethodGet, "/logs/monthly", q, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
