// Package calendar converts event forms to requests and keeps the visible
// month of the shared calendar current with realtime change notices.
package calendar

import (
	"strings"
	"time"

	"github.com/julianstephens/famtrack/internal/constants"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/utils"
)

// Timing is either AllDay or Timed.
type Timing interface {
	datetimes() (start, end string, allDay bool, err error)
}

// AllDay spans whole days from StartDate to EndDate.
type AllDay struct {
	StartDate string
	EndDate   string
}

// Timed runs from StartDate StartTime to EndDate EndTime (HH:MM).
type Timed struct {
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

func (a AllDay) datetimes() (string, string, bool, error) {
	if err := checkDates(a.StartDate, a.EndDate); err != nil {
		return "", "", false, err
	}
	return a.StartDate + "T" + constants.AllDayStartTime, a.EndDate + "T" + constants.AllDayEndTime, true, nil
}

func (t Timed) datetimes() (string, string, bool, error) {
	if err := checkDates(t.StartDate, t.EndDate); err != nil {
		return "", "", false, err
	}
	if !utils.ValidateTimeFormat(t.StartTime) {
		return "", "", false, apperrors.Invalid("start time", "must be HH:MM")
	}
	if !utils.ValidateTimeFormat(t.EndTime) {
		return "", "", false, apperrors.Invalid("end time", "must be HH:MM")
	}
	start := t.StartDate + "T" + t.StartTime + ":00"
	end := t.EndDate + "T" + t.EndTime + ":00"
	if end < start {
		return "", "", false, apperrors.Invalid("end", "must not be before start")
	}
	return start, end, false, nil
}

func checkDates(start, end string) error {
	if _, err := utils.ParseDate(start); err != nil {
		return apperrors.Invalid("start date", "must be YYYY-MM-DD")
	}
	if _, err := utils.ParseDate(end); err != nil {
		return apperrors.Invalid("end date", "must be YYYY-MM-DD")
	}
	if end < start {
		return apperrors.Invalid("end date", "must not be before start date")
	}
	return nil
}

// EventForm is the user-editable event form.
type EventForm struct {
	Title           string
	Description     string
	Timing          Timing
	Color           string
	Repeat          models.RepeatType
	RepeatEndDate   string
	ReminderMinutes *int
}

// Request validates the form and builds the request body.
func (f EventForm) Request() (models.CalendarEventRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return models.CalendarEventRequest{}, apperrors.Invalid("title", "is required")
	}
	if f.Timing == nil {
		return models.CalendarEventRequest{}, apperrors.Invalid("date", "is required")
	}
	start, end, allDay, err := f.Timing.datetimes()
	if err != nil {
		return models.CalendarEventRequest{}, err
	}
	repeat := f.Repeat
	if repeat == "" {
		repeat = models.RepeatNone
	}
	if !repeat.Valid() {
		return models.CalendarEventRequest{}, apperrors.Invalid("repeat", "unknown repeat type "+string(repeat))
	}
	color := f.Color
	if color == "" {
		color = constants.DefaultEventColor
	}
	req := models.CalendarEventRequest{
		Title:           title,
		Description:     f.Description,
		StartDatetime:   start,
		EndDatetime:     end,
		AllDay:          allDay,
		Color:           color,
		RepeatType:      repeat,
		ReminderMinutes: f.ReminderMinutes,
	}
	if f.RepeatEndDate != "" {
		if _, err := utils.ParseDate(f.RepeatEndDate); err != nil {
			return models.CalendarEventRequest{}, apperrors.Invalid("repeat end date", "must be YYYY-MM-DD")
		}
		d := f.RepeatEndDate
		req.RepeatEndDate = &d
	}
	return req, nil
}

// FormOf recovers the edit form of an existing event. Missing time parts
// fall back to 09:00/10:00.
func FormOf(ev models.CalendarEvent) EventForm {
	startDate, startTime := utils.SplitDateTime(ev.StartDatetime)
	endDate, endTime := utils.SplitDateTime(ev.EndDatetime)
	var timing Timing
	if ev.AllDay {
		timing = AllDay{StartDate: startDate, EndDate: endDate}
	} else {
		timing = Timed{
			StartDate: startDate,
			StartTime: orDefault(startTime, constants.DefaultEventStartTime),
			EndDate:   endDate,
			EndTime:   orDefault(endTime, constants.DefaultEventEndTime),
		}
	}
	form := EventForm{
		Title:           ev.Title,
		Description:     ev.Description,
		Timing:          timing,
		Color:           ev.Color,
		Repeat:          ev.RepeatType,
		ReminderMinutes: ev.ReminderMinutes,
	}
	if ev.RepeatEndDate != nil {
		form.RepeatEndDate = *ev.RepeatEndDate
	}
	return form
}

// TimeFields returns the HH:MM fields an edit dialog shows for timing.
// All-day events show the 09:00/10:00 defaults.
func TimeFields(t Timing) (start, end string) {
	if tt, ok := t.(Timed); ok {
		return tt.StartTime, tt.EndTime
	}
	return constants.DefaultEventStartTime, constants.DefaultEventEndTime
}

func orDefault(hhmm, def string) string {
	if len(hhmm) < 5 {
		return def
	}
	return hhmm[:5]
}

// GridRange returns the first and last day of the Sunday-start weeks
// covering the month containing t.
func GridRange(t time.Time) (time.Time, time.Time) {
	first, last := utils.MonthRange(t)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))
	return start, end
}

// EventsOn returns the events overlapping date (YYYY-MM-DD).
func EventsOn(events []models.CalendarEvent, date string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range events {
		start, _ := utils.SplitDateTime(ev.StartDatetime)
		end, _ := utils.SplitDateTime(ev.EndDatetime)
		if start <= date && date <= end {
			out = append(out, ev)
		}
	}
	return out
}

// LastColor returns the color of the most recently saved event.
func LastColor(prefs storage.Provider) string {
	if prefs == nil {
		return constants.DefaultEventColor
	}
	return storage.GetOr(prefs, constants.KeyLastEventColor, constants.DefaultEventColor)
}
