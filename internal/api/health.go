package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/famtrack/internal/models"
)

// HealthQuery filters health record listings. Zero fields are omitted.
type HealthQuery struct {
	Type      models.RecordType
	StartDate string
	EndDate   string
}

func (q HealthQuery) values() url.Values {
	v := url.Values{}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	return v
}

// CreateHealthRecord stores a measurement for the caller.
func (c *Client) CreateHealthRecord(ctx context.Context, req models.HealthRecordRequest) (*models.HealthRecord, error) {
	var rec models.HealthRecord
	if err := c.call(ctx, "health.create", http.MethodPost, "/health", nil, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateHealthRecord replaces a measurement.
func (c *Client) UpdateHealthRecord(ctx context.Context, id int64, req models.HealthRecordRequest) (*models.HealthRecord, error) {
	var rec models.HealthRecord
	if err := c.call(ctx, "health.update", http.MethodPut, healthPath(id), nil, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteHealthRecord removes a measurement.
func (c *Client) DeleteHealthRecord(ctx context.Context, id int64) error {
	return c.call(ctx, "health.delete", http.MethodDelete, healthPath(id), nil, nil, nil)
}

// MyHealthRecords lists the caller's measurements.
func (c *Client) MyHealthRecords(ctx context.Context, q HealthQuery) ([]models.HealthRecord, error) {
	return c.healthList(ctx, "health.my", "/health/my", q.values())
}

// FamilyHealthRecords lists every group member's measurements.
func (c *Client) FamilyHealthRecords(ctx context.Context, q HealthQuery) ([]models.HealthRecord, error) {
	return c.healthList(ctx, "health.family", "/health/family", q.values())
}

// RecentHealthRecords lists the most recent measurements of one type.
func (c *Client) RecentHealthRecords(ctx context.Context, t models.RecordType) ([]models.HealthRecord, error) {
	return c.healthList(ctx, "health.recent", "/health/recent", HealthQuery{Type: t}.values())
}

// HealthChart lists the chart series for one type over a date range.
func (c *Client) HealthChart(ctx context.Context, q HealthQuery) ([]models.HealthRecord, error) {
	return c.healthList(ctx, "health.chart", "/health/chart", q.values())
}

func (c *Client) healthList(ctx context.Context, op, path string, q url.Values) ([]models.HealthRecord, error) {
	var recs []models.HealthRecord
	if err := c.call(ctx, op, http.MethodGet, path, q, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func healthPath(id int64) string {
	return "/health/" + strconv.FormatInt(id, 10)
}
