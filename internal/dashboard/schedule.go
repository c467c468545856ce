package dashboard

import (
	"slices"
	"sort"
	"time"

	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/utils"
)

// IsHabitForDate reports whether h is due on date. DAILY and WEEKLY_COUNT
// habits are always due; WEEKLY habits only on their selected weekdays.
func IsHabitForDate(h models.Habit, date time.Time) bool {
	if h.Type() != models.HabitWeekly {
		return true
	}
	return slices.Contains(h.Days(), utils.ISOWeekday(date))
}

// Progress is a WEEKLY_COUNT habit's completion count for one week.
type Progress struct {
	Done    int
	Target  int
	Percent int // clamped to 100
}

// WeeklyProgress counts h's completed logs by its owner within the
// Monday-Sunday week containing date.
func WeeklyProgress(h models.Habit, weekLogs []models.HabitLog, date time.Time) Progress {
	target := h.Target()
	if target == 0 {
		return Progress{}
	}
	monday, sunday := utils.WeekRange(date)
	start, end := utils.FormatDate(monday), utils.FormatDate(sunday)

	done := 0
	for _, l := range weekLogs {
		if l.Habit.ID != h.ID || l.User.ID != h.UserID || !l.Completed {
			continue
		}
		if l.LogDate < start || l.LogDate > end {
			continue
		}
		done++
	}
	pct := done * 100 / target
	if pct > 100 {
		pct = 100
	}
	return Progress{Done: done, Target: target, Percent: pct}
}

// SortByDisplayOrder orders habits by displayOrder, then id.
func SortByDisplayOrder(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].DisplayOrder != habits[j].DisplayOrder {
			return habits[i].DisplayOrder < habits[j].DisplayOrder
		}
		return habits[i].ID < habits[j].ID
	})
}

// parseDay parses a YYYY-MM-DD date, falling back to today.
func parseDay(date string) time.Time {
	t, err := utils.ParseDate(date)
	if err != nil {
		t, _ = utils.ParseDate(utils.Today())
	}
	return t
}
