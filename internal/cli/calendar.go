package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/famtrack/internal/calendar"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/realtime"
	"github.com/julianstephens/famtrack/internal/utils"
)

type CalendarCmd struct {
	List   CalendarListCmd   `cmd:"" help:"List the events of a month." default:"1"`
	Add    CalendarAddCmd    `cmd:"" help:"Add an event."`
	Edit   CalendarEditCmd   `cmd:"" help:"Edit an event."`
	Delete CalendarDeleteCmd `cmd:"" help:"Delete an event."`
	Watch  CalendarWatchCmd  `cmd:"" help:"Follow calendar and habit changes live."`
}

type CalendarListCmd struct {
	Month string `short:"m" help:"Month to show (YYYY-MM)."`
	JSON  bool   `help:"Print as JSON."`
}

func (cmd *CalendarListCmd) Run(ctx *Context) error {
	feed, err := loadFeed(ctx, cmd.Month)
	if err != nil {
		return err
	}
	events := feed.Events()
	if cmd.JSON {
		return ctx.printJSON(events)
	}

	month := feed.Month()
	ctx.printf("%s\n\n", month.Format("January 2006"))
	first, last := utils.MonthRange(month)
	found := false
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := utils.FormatDate(d)
		on := calendar.EventsOn(events, date)
		if len(on) == 0 {
			continue
		}
		found = true
		ctx.println(d.Format("Mon Jan 2"))
		for _, ev := range on {
			ctx.printf("  [%d] %s  %s\n", ev.ID, eventTime(ev), ev.Title)
		}
	}
	if !found {
		ctx.println("No events.")
	}
	return nil
}

func eventTime(ev models.CalendarEvent) string {
	if ev.AllDay {
		return "all day    "
	}
	_, start := utils.SplitDateTime(ev.StartDatetime)
	_, end := utils.SplitDateTime(ev.EndDatetime)
	if len(start) >= 5 && len(end) >= 5 {
		return start[:5] + "-" + end[:5]
	}
	return strings.TrimSpace(start + " " + end)
}

func loadFeed(ctx *Context, month string) (*calendar.Feed, error) {
	if _, err := ctx.RequireFamily(); err != nil {
		return nil, err
	}
	m, err := resolveMonth(month, ctx.Now())
	if err != nil {
		return nil, err
	}
	feed := calendar.NewFeed(ctx.API, ctx.Store, m, nil)
	if err := feed.Load(ctx.Ctx); err != nil {
		return nil, err
	}
	return feed, nil
}

// EventFields are the flags shared by add and edit.
type EventFields struct {
	Description string `help:"Description."`
	Date        string `short:"d" help:"Start date (YYYY-MM-DD, today, tomorrow)."`
	EndDate     string `help:"End date (defaults to the start date)."`
	Start       string `help:"Start time (HH:MM)."`
	End         string `help:"End time (HH:MM)."`
	AllDay      bool   `help:"All-day event."`
	Timed       bool   `help:"Timed event (clears all-day when editing)."`
	Color       string `help:"Color (#RRGGBB, defaults to the last used)."`
	Repeat      string `help:"NONE, DAILY, WEEKLY, MONTHLY or YEARLY."`
	Until       string `help:"Last date of a repeating event (YYYY-MM-DD)."`
	Reminder    *int   `help:"Reminder, minutes before start."`
}

// apply overlays the flags onto form.
func (f EventFields) apply(ctx *Context, form *calendar.EventForm) error {
	if f.Description != "" {
		form.Description = f.Description
	}
	if f.Color != "" {
		form.Color = f.Color
	}
	if f.Repeat != "" {
		form.Repeat = models.RepeatType(strings.ToUpper(f.Repeat))
	}
	if f.Until != "" {
		form.RepeatEndDate = f.Until
	}
	if f.Reminder != nil {
		form.ReminderMinutes = f.Reminder
	}

	var startDate, endDate, startTime, endTime string
	allDay := false
	switch t := form.Timing.(type) {
	case calendar.AllDay:
		startDate, endDate, allDay = t.StartDate, t.EndDate, true
	case calendar.Timed:
		startDate, endDate = t.StartDate, t.EndDate
	}
	if form.Timing != nil {
		startTime, endTime = calendar.TimeFields(form.Timing)
	}

	if f.Date != "" {
		d, err := resolveDate(f.Date, ctx.Now())
		if err != nil {
			return err
		}
		if endDate == "" || endDate == startDate {
			endDate = d
		}
		startDate = d
	}
	if f.EndDate != "" {
		d, err := resolveDate(f.EndDate, ctx.Now())
		if err != nil {
			return err
		}
		endDate = d
	}
	if endDate == "" {
		endDate = startDate
	}
	if f.Start != "" {
		startTime = f.Start
	}
	if f.End != "" {
		endTime = f.End
	}
	switch {
	case f.AllDay:
		allDay = true
	case f.Timed, f.Start != "", f.End != "":
		allDay = false
	}

	if startDate == "" {
		return errors.New("--date is required")
	}
	if allDay {
		form.Timing = calendar.AllDay{StartDate: startDate, EndDate: endDate}
		return nil
	}
	if startTime == "" || endTime == "" {
		return errors.New("timed events need --start and --end, or pass --all-day")
	}
	form.Timing = calendar.Timed{StartDate: startDate, StartTime: startTime, EndDate: endDate, EndTime: endTime}
	return nil
}

type CalendarAddCmd struct {
	Title       string `arg:"" help:"Event title."`
	EventFields `embed:""`
}

func (cmd *CalendarAddCmd) Run(ctx *Context) error {
	month := ""
	if cmd.Date != "" {
		d, err := resolveDate(cmd.Date, ctx.Now())
		if err != nil {
			return err
		}
		month = d[:7]
	}
	feed, err := loadFeed(ctx, month)
	if err != nil {
		return err
	}

	today := utils.FormatDate(ctx.Now())
	form := calendar.EventForm{
		Title: cmd.Title,
		Color: calendar.LastColor(ctx.Store),
		Timing: calendar.Timed{
			StartDate: today,
			StartTime: constants.DefaultEventStartTime,
			EndDate:   today,
			EndTime:   constants.DefaultEventEndTime,
		},
	}
	if err := cmd.apply(ctx, &form); err != nil {
		return err
	}
	ev, err := feed.Save(ctx.Ctx, 0, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added event [%d] %s\n", ev.ID, ev.Title)
	return nil
}

type CalendarEditCmd struct {
	ID          int64  `arg:"" help:"Event ID."`
	Month       string `short:"m" help:"Month the event is in (YYYY-MM), defaults to this month."`
	Title       string `help:"New title."`
	EventFields `embed:""`
}

func (cmd *CalendarEditCmd) Run(ctx *Context) error {
	feed, err := loadFeed(ctx, cmd.Month)
	if err != nil {
		return err
	}
	ev, ok := findEvent(feed.Events(), cmd.ID)
	if !ok {
		return fmt.Errorf("event %d not found in %s, pass --month", cmd.ID, feed.Month().Format("2006-01"))
	}

	form := calendar.FormOf(ev)
	if cmd.Title != "" {
		form.Title = cmd.Title
	}
	if err := cmd.apply(ctx, &form); err != nil {
		return err
	}
	updated, err := feed.Save(ctx.Ctx, ev.ID, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated event [%d] %s\n", updated.ID, updated.Title)
	return nil
}

func findEvent(events []models.CalendarEvent, id int64) (models.CalendarEvent, bool) {
	for _, ev := range events {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.CalendarEvent{}, false
}

type CalendarDeleteCmd struct {
	ID  int64 `arg:"" help:"Event ID."`
	Yes bool  `short:"y" help:"Skip confirmation."`
}

func (cmd *CalendarDeleteCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	if err := confirm(cmd.Yes, fmt.Sprintf("Delete event %d?", cmd.ID)); err != nil {
		return err
	}
	feed := calendar.NewFeed(ctx.API, ctx.Store, ctx.Now(), nil)
	if err := feed.Delete(ctx.Ctx, cmd.ID); err != nil {
		return err
	}
	ctx.println("✓ Event deleted")
	return nil
}

type CalendarWatchCmd struct {
	Month string `short:"m" help:"Month to follow (YYYY-MM)."`
}

func (cmd *CalendarWatchCmd) Run(ctx *Context) error {
	user, err := ctx.RequireFamily()
	if err != nil {
		return err
	}
	m, err := resolveMonth(cmd.Month, ctx.Now())
	if err != nil {
		return err
	}
	feed := calendar.NewFeed(ctx.API, ctx.Store, m, func(events []models.CalendarEvent) {
		ctx.printf("%s calendar: %d events in %s\n", ctx.Now().Format("15:04:05"), len(events), m.Format("Jan 2006"))
	})
	if err := feed.Load(ctx.Ctx); err != nil {
		return err
	}

	ch := ctx.Realtime()
	defer ch.Close()
	if err := ch.Connect(ctx.Ctx); err != nil {
		logger.Warn("realtime connect failed, retrying in background", "error", err)
		ctx.println("Broker unreachable, retrying in the background...")
	}

	unwatch, err := feed.Watch(ctx.Ctx, ch, *user.FamilyID)
	if err != nil {
		return err
	}
	defer unwatch()

	err = ch.Subscribe(realtime.HabitTopic(*user.FamilyID), func(n models.ChangeNotice) {
		if n.UserID == user.ID {
			return
		}
		ctx.printf("%s %s\n", ctx.Now().Format("15:04:05"), habitNoticeText(n))
	})
	if err != nil {
		return err
	}

	ctx.println("Watching for changes, Ctrl+C to stop.")
	<-ctx.Ctx.Done()
	return nil
}

func habitNoticeText(n models.ChangeNotice) string {
	who := n.UserName
	if who == "" {
		who = "someone"
	}
	switch {
	case n.Completed != nil && *n.Completed:
		return fmt.Sprintf("%s completed %s", who, n.HabitName)
	case n.Completed != nil:
		return fmt.Sprintf("%s unchecked %s", who, n.HabitName)
	default:
		return fmt.Sprintf("%s updated %s", who, n.HabitName)
	}
}
