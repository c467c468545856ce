package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HabitType represents how often a habit is expected to be done
type HabitType string

const (
	HabitDaily       HabitType = "DAILY"
	HabitWeekly      HabitType = "WEEKLY"
	HabitWeeklyCount HabitType = "WEEKLY_COUNT"

	MinWeeklyTarget = 1
	MaxWeeklyTarget = 7
)

// ErrInvalidHabit is returned for habit forms that fail client-side validation
var ErrInvalidHabit = errors.New("invalid habit")

// Habit represents a recurring practice owned by one group member
type Habit struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	Color           string    `json:"color"`
	FamilyID        *int64    `json:"familyId,omitempty"`
	UserID          int64     `json:"userId"`
	UserName        string    `json:"userName,omitempty"`
	UserDisplayName string    `json:"userDisplayName,omitempty"`
	DisplayOrder    int       `json:"displayOrder"`
	HabitType       HabitType `json:"habitType"`
	SelectedDays    string    `json:"selectedDays,omitempty"` // comma-separated, 1=Mon .. 7=Sun
	WeeklyTarget    *int      `json:"weeklyTarget,omitempty"`
	Streak          int       `json:"streak"`
}

// Type returns the habit type, treating an empty value as DAILY.
func (h Habit) Type() HabitType {
	if h.HabitType == "" {
		return HabitDaily
	}
	return h.HabitType
}

// Days returns the normalized selected weekdays. Only WEEKLY habits have any.
func (h Habit) Days() []int {
	if h.Type() != HabitWeekly {
		return nil
	}
	days, _ := ParseSelectedDays(h.SelectedDays)
	return days
}

// Target returns the clamped weekly target. Only WEEKLY_COUNT habits have one.
func (h Habit) Target() int {
	if h.Type() != HabitWeeklyCount {
		return 0
	}
	if h.WeeklyTarget == nil {
		return MinWeeklyTarget
	}
	return ClampWeeklyTarget(*h.WeeklyTarget)
}

// ClampWeeklyTarget restricts n to [MinWeeklyTarget, MaxWeeklyTarget].
func ClampWeeklyTarget(n int) int {
	if n < MinWeeklyTarget {
		return MinWeeklyTarget
	}
	if n > MaxWeeklyTarget {
		return MaxWeeklyTarget
	}
	return n
}

// NormalizeDays sorts and deduplicates days, dropping values outside 1..7.
func NormalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 7 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// ParseSelectedDays parses the wire form "1,3,5" into a normalized day set.
// Blank entries are skipped; non-numeric entries are an error.
func ParseSelectedDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q: %w", part, err)
		}
		days = append(days, n)
	}
	return NormalizeDays(days), nil
}

// FormatSelectedDays renders a day set in the wire form.
func FormatSelectedDays(days []int) string {
	days = NormalizeDays(days)
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// HabitSpec is the type-specific part of a habit form. Exactly one of
// DailySpec, WeeklySpec or WeeklyCountSpec.
type HabitSpec interface {
	Type() HabitType
	apply(req *HabitRequest) error
}

// DailySpec is a habit done every day.
type DailySpec struct{}

// WeeklySpec is a habit done on specific weekdays (1=Mon .. 7=Sun).
type WeeklySpec struct {
	Days []int
}

// WeeklyCountSpec is a habit done Target times per week on any days.
type WeeklyCountSpec struct {
	Target int
}

func (DailySpec) Type() HabitType       { return HabitDaily }
func (WeeklySpec) Type() HabitType      { return HabitWeekly }
func (WeeklyCountSpec) Type() HabitType { return HabitWeeklyCount }

func (DailySpec) apply(req *HabitRequest) error {
	req.HabitType = HabitDaily
	return nil
}

func (s WeeklySpec) apply(req *HabitRequest) error {
	days := NormalizeDays(s.Days)
	if len(days) == 0 {
		return fmt.Errorf("%w: weekly habit needs at least one day", ErrInvalidHabit)
	}
	req.HabitType = HabitWeekly
	req.SelectedDays = FormatSelectedDays(days)
	return nil
}

func (s WeeklyCountSpec) apply(req *HabitRequest) error {
	target := ClampWeeklyTarget(s.Target)
	req.HabitType = HabitWeeklyCount
	req.WeeklyTarget = &target
	return nil
}

// SpecOf returns the tagged spec of an existing habit.
func SpecOf(h Habit) HabitSpec {
	switch h.Type() {
	case HabitWeekly:
		return WeeklySpec{Days: h.Days()}
	case HabitWeeklyCount:
		return WeeklyCountSpec{Target: h.Target()}
	default:
		return DailySpec{}
	}
}

// HabitRequest is the create/update body for a habit
type HabitRequest struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	Color        string    `json:"color"`
	HabitType    HabitType `json:"habitType"`
	SelectedDays string    `json:"selectedDays,omitempty"`
	WeeklyTarget *int      `json:"weeklyTarget,omitempty"`
}

// HabitForm is the user-editable habit form.
type HabitForm struct {
	Name        string
	Description string
	Icon        string
	Color       string
	Spec        HabitSpec
}

// Request validates the form and builds the request body.
func (f HabitForm) Request() (HabitRequest, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return HabitRequest{}, fmt.Errorf("%w: name is required", ErrInvalidHabit)
	}
	if strings.TrimSpace(f.Color) == "" {
		return HabitRequest{}, fmt.Errorf("%w: color is required", ErrInvalidHabit)
	}
	spec := f.Spec
	if spec == nil {
		spec = DailySpec{}
	}
	req := HabitRequest{
		Name:        name,
		Description: f.Description,
		Icon:        f.Icon,
		Color:       f.Color,
	}
	if err := spec.apply(&req); err != nil {
		return HabitRequest{}, err
	}
	return req, nil
}

// FormOf returns the edit form for an existing habit.
func FormOf(h Habit) HabitForm {
	return HabitForm{
		Name:        h.Name,
		Description: h.Description,
		Icon:        h.Icon,
		Color:       h.Color,
		Spec:        SpecOf(h),
	}
}

// HabitOrder is one entry of a batch reorder request
type HabitOrder struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"displayOrder"`
}

// MoveDirection is the single-step reorder direction accepted by the backend
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)
