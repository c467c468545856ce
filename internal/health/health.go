// Package health builds validated health record requests and the date
// ranges used by the record and chart views.
package health

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/utils"
)

// Periods are the chart windows offered, in days.
var Periods = []int{7, 30, 90}

// DefaultPeriod is the chart window used when none is chosen.
const DefaultPeriod = 30

// Scope selects whose records are listed.
type Scope int

const (
	ScopeMine Scope = iota
	ScopeFamily
)

// API is the health subset of the backend client.
type API interface {
	CreateHealthRecord(ctx context.Context, req models.HealthRecordRequest) (*models.HealthRecord, error)
	UpdateHealthRecord(ctx context.Context, id int64, req models.HealthRecordRequest) (*models.HealthRecord, error)
	DeleteHealthRecord(ctx context.Context, id int64) error
	MyHealthRecords(ctx context.Context, q api.HealthQuery) ([]models.HealthRecord, error)
	FamilyHealthRecords(ctx context.Context, q api.HealthQuery) ([]models.HealthRecord, error)
	HealthChart(ctx context.Context, q api.HealthQuery) ([]models.HealthRecord, error)
}

// LastDays returns the query for records of type t over the n days
// ending at now.
func LastDays(now time.Time, n int, t models.RecordType) api.HealthQuery {
	if n <= 0 {
		n = DefaultPeriod
	}
	start, end := utils.LastNDays(now, n)
	return api.HealthQuery{Type: t, StartDate: utils.FormatDate(start), EndDate: utils.FormatDate(end)}
}

// Service validates forms before calling the backend.
type Service struct {
	API API
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Add validates form and stores it.
func (s *Service) Add(ctx context.Context, form models.HealthForm) (*models.HealthRecord, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}
	return s.API.CreateHealthRecord(ctx, req)
}

// Update validates form and replaces record id.
func (s *Service) Update(ctx context.Context, id int64, form models.HealthForm) (*models.HealthRecord, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}
	return s.API.UpdateHealthRecord(ctx, id, req)
}

// Delete removes record id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.API.DeleteHealthRecord(ctx, id)
}

// List returns records of type t for the last days days.
func (s *Service) List(ctx context.Context, scope Scope, t models.RecordType, days int) ([]models.HealthRecord, error) {
	q := LastDays(s.now(), days, t)
	if scope == ScopeFamily {
		return s.API.FamilyHealthRecords(ctx, q)
	}
	return s.API.MyHealthRecords(ctx, q)
}

// Chart returns the chart series of type t for the last days days.
func (s *Service) Chart(ctx context.Context, t models.RecordType, days int) ([]models.HealthRecord, error) {
	return s.API.HealthChart(ctx, LastDays(s.now(), days, t))
}

// ParseMeasurement parses a command-line value for record type t:
// "120/80" or "120/80/72" for blood pressure (with heart rate), a decimal
// for weight and an integer otherwise.
func ParseMeasurement(t models.RecordType, value string) (models.HealthMeasurement, error) {
	value = strings.TrimSpace(value)
	var m models.HealthMeasurement
	switch t {
	case models.RecordBloodPressure:
		parts := strings.Split(value, "/")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w: blood pressure must be SYS/DIA or SYS/DIA/HR", models.ErrInvalidRecord)
		}
		nums := make([]int, 3)
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", models.ErrInvalidRecord, p)
			}
			nums[i] = n
		}
		m = models.BloodPressure{Systolic: nums[0], Diastolic: nums[1], HeartRate: nums[2]}
	case models.RecordWeight:
		kg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", models.ErrInvalidRecord, value)
		}
		m = models.Weight{Kg: kg}
	case models.RecordBloodSugar, models.RecordHeartRate:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", models.ErrInvalidRecord, value)
		}
		if t == models.RecordBloodSugar {
			m = models.BloodSugar{MgDL: n}
		} else {
			m = models.HeartRate{BPM: n}
		}
	default:
		return nil, fmt.Errorf("%w: unknown record type %q", models.ErrInvalidRecord, t)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FormatValue renders the measured value of r.
func FormatValue(r models.HealthRecord) string {
	switch r.RecordType {
	case models.RecordBloodPressure:
		if r.Systolic == nil || r.Diastolic == nil {
			return "-"
		}
		s := fmt.Sprintf("%d/%d mmHg (%s)", *r.Systolic, *r.Diastolic, models.BloodPressureStatus(*r.Systolic, *r.Diastolic))
		if r.HeartRate != nil {
			s += fmt.Sprintf(", %d bpm", *r.HeartRate)
		}
		return s
	case models.RecordWeight:
		if r.Weight != nil {
			return strconv.FormatFloat(*r.Weight, 'f', 1, 64) + " kg"
		}
	case models.RecordBloodSugar:
		if r.BloodSugar != nil {
			return fmt.Sprintf("%d mg/dL", *r.BloodSugar)
		}
	case models.RecordHeartRate:
		if r.HeartRate != nil {
			return fmt.Sprintf("%d bpm", *r.HeartRate)
		}
	}
	return "-"
}
