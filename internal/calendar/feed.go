package calendar

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/realtime"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/utils"
)

// API is the calendar subset of the backend client.
type API interface {
	Events(ctx context.Context, start, end string) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, req models.CalendarEventRequest) (*models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id int64, req models.CalendarEventRequest) (*models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// Subscriber is the realtime channel surface a Feed needs.
type Subscriber interface {
	Subscribe(topic string, h realtime.Handler) error
	Unsubscribe(topic string) error
}

// Feed holds the events of the visible month grid.
type Feed struct {
	api      API
	prefs    storage.Provider
	onChange func([]models.CalendarEvent)

	mu     sync.Mutex
	month  time.Time
	events []models.CalendarEvent
}

// NewFeed creates a Feed showing the month containing month. prefs and
// onChange may be nil.
func NewFeed(api API, prefs storage.Provider, month time.Time, onChange func([]models.CalendarEvent)) *Feed {
	if onChange == nil {
		onChange = func([]models.CalendarEvent) {}
	}
	return &Feed{api: api, prefs: prefs, onChange: onChange, month: month}
}

// Month returns the month being shown.
func (f *Feed) Month() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.month
}

// Events returns a copy of the loaded events.
func (f *Feed) Events() []models.CalendarEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}

// Load fetches the events of the current month grid.
func (f *Feed) Load(ctx context.Context) error {
	month := f.Month()
	start, end := GridRange(month)
	events, err := f.api.Events(ctx, utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		return err
	}
	f.mu.Lock()
	if !sameMonth(f.month, month) {
		f.mu.Unlock()
		return nil
	}
	f.events = events
	snap := slices.Clone(events)
	f.mu.Unlock()
	f.onChange(snap)
	return nil
}

// ShiftMonth moves the view by n months and reloads.
func (f *Feed) ShiftMonth(ctx context.Context, n int) error {
	f.mu.Lock()
	f.month = time.Date(f.month.Year(), f.month.Month()+time.Month(n), 1, 0, 0, 0, 0, f.month.Location())
	f.mu.Unlock()
	return f.Load(ctx)
}

// Apply folds a realtime notice into the feed: creations and updates
// trigger a refetch, deletions are filtered out locally.
func (f *Feed) Apply(ctx context.Context, n models.ChangeNotice) error {
	switch n.Type {
	case models.ChangeCreated, models.ChangeUpdated:
		return f.Load(ctx)
	case models.ChangeDeleted:
		f.mu.Lock()
		f.events = slices.DeleteFunc(f.events, func(ev models.CalendarEvent) bool {
			return ev.ID == n.DeletedEventID
		})
		snap := slices.Clone(f.events)
		f.mu.Unlock()
		f.onChange(snap)
	default:
		logger.Debug("ignoring calendar notice", "type", n.Type)
	}
	return nil
}

// Watch subscribes the feed to the group's calendar topic and returns a
// function that unsubscribes.
func (f *Feed) Watch(ctx context.Context, sub Subscriber, familyID int64) (func(), error) {
	topic := realtime.CalendarTopic(familyID)
	err := sub.Subscribe(topic, func(n models.ChangeNotice) {
		if err := f.Apply(ctx, n); err != nil {
			logger.Warn("calendar refresh failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := sub.Unsubscribe(topic); err != nil {
			logger.Debug("calendar unsubscribe failed", "error", err)
		}
	}, nil
}

// Save creates the event, or updates it when id is non-zero, then
// remembers its color and reloads.
func (f *Feed) Save(ctx context.Context, id int64, form EventForm) (*models.CalendarEvent, error) {
	req, err := form.Request()
	if err != nil {
		return nil, err
	}
	var ev *models.CalendarEvent
	if id == 0 {
		ev, err = f.api.CreateEvent(ctx, req)
	} else {
		ev, err = f.api.UpdateEvent(ctx, id, req)
	}
	if err != nil {
		return nil, err
	}
	if f.prefs != nil {
		if err := f.prefs.Set(constants.KeyLastEventColor, req.Color); err != nil {
			logger.Warn("failed to remember event color", "error", err)
		}
	}
	return ev, f.Load(ctx)
}

// Delete removes event id and reloads.
func (f *Feed) Delete(ctx context.Context, id int64) error {
	if err := f.api.DeleteEvent(ctx, id); err != nil {
		return err
	}
	return f.Load(ctx)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
