package models

// RepeatType represents how a calendar event recurs
type RepeatType string

const (
	RepeatNone    RepeatType = "NONE"
	RepeatDaily   RepeatType = "DAILY"
	RepeatWeekly  RepeatType = "WEEKLY"
	RepeatMonthly RepeatType = "MONTHLY"
	RepeatYearly  RepeatType = "YEARLY"
)

// Valid reports whether r is a known repeat type.
func (r RepeatType) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// CalendarEvent is a shared group calendar entry
type CalendarEvent struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	StartDatetime        string     `json:"startDatetime"` // YYYY-MM-DDTHH:MM:SS, local
	EndDatetime          string     `json:"endDatetime"`
	AllDay               bool       `json:"allDay"`
	Color                string     `json:"color"`
	RepeatType           RepeatType `json:"repeatType"`
	RepeatEndDate        *string    `json:"repeatEndDate,omitempty"`
	ReminderMinutes      *int       `json:"reminderMinutes,omitempty"`
	FamilyID             *int64     `json:"familyId,omitempty"`
	CreatedByID          int64      `json:"createdById,omitempty"`
	CreatedByName        string     `json:"createdByName,omitempty"`
	CreatedByDisplayName string     `json:"createdByDisplayName,omitempty"`
	CreatedAt            string     `json:"createdAt,omitempty"`
	UpdatedAt            string     `json:"updatedAt,omitempty"`
}

// CalendarEventRequest is the create/update body for an event
type CalendarEventRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	StartDatetime   string     `json:"startDatetime"`
	EndDatetime     string     `json:"endDatetime"`
	AllDay          bool       `json:"allDay"`
	Color           string     `json:"color"`
	RepeatType      RepeatType `json:"repeatType"`
	RepeatEndDate   *string    `json:"repeatEndDate"`
	ReminderMinutes *int       `json:"reminderMinutes"`
}

// ChangeType is the discriminant of a realtime change notice
type ChangeType string

const (
	ChangeCreated ChangeType = "CREATED"
	ChangeUpdated ChangeType = "UPDATED"
	ChangeDeleted ChangeType = "DELETED"
)

// ChangeNotice is a realtime update pushed on a group topic. Only the
// fields relevant to the topic are populated.
type ChangeNotice struct {
	Type           ChangeType     `json:"type"`
	Event          *CalendarEvent `json:"event,omitempty"`
	DeletedEventID int64          `json:"deletedEventId,omitempty"`

	HabitLogID int64  `json:"habitLogId,omitempty"`
	HabitID    int64  `json:"habitId,omitempty"`
	HabitName  string `json:"habitName,omitempty"`
	UserID     int64  `json:"userId,omitempty"`
	UserName   string `json:"userName,omitempty"`
	LogDate    string `json:"logDate,omitempty"`
	Completed  *bool  `json:"completed,omitempty"`
	Note       string `json:"note,omitempty"`
	FamilyID   int64  `json:"familyId,omitempty"`
}

// PushSubscription registers a web-push endpoint with the backend
type PushSubscription struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}
