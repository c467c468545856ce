package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/models"
)

type HabitCmd struct {
	List    HabitListCmd    `cmd:"" help:"List habits for a day." default:"1"`
	Add     HabitAddCmd     `cmd:"" help:"Add a habit."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit one of your habits."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete one of your habits."`
	Reorder HabitReorderCmd `cmd:"" help:"Move one of your habits to a position."`
	Move    HabitMoveCmd    `cmd:"" help:"Move one of your habits up or down one step."`
}

type HabitListCmd struct {
	Date string `short:"d" help:"Day to show (YYYY-MM-DD, today, yesterday)." default:"today"`
	Mine bool   `help:"Only your own habits."`
	JSON bool   `help:"Print as JSON."`
}

func (cmd *HabitListCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	date, err := resolveDate(cmd.Date, ctx.Now())
	if err != nil {
		return err
	}
	e, err := ctx.Engine(date)
	if err != nil {
		return err
	}

	snap := e.Snapshot()
	habits := snap.Visible()
	if cmd.Mine {
		habits = snap.Mine()
	}
	if cmd.JSON {
		return ctx.printJSON(habits)
	}
	if len(habits) == 0 {
		ctx.println("No habits for " + date + ". Add one with 'famtrack habit add'.")
		return nil
	}

	ctx.printf("Habits for %s\n\n", date)
	for _, h := range habits {
		log, _ := e.LogFor(h.ID, h.UserID)
		ctx.printf("%s [%d] %s", mark(log.Completed), h.ID, h.Name)
		if h.UserID != snap.UserID {
			ctx.printf(" · %s", habitOwner(h))
		}
		ctx.printf("\n    %s", describeHabit(h, e.WeeklyProgress(h)))
		if h.Streak > 0 {
			ctx.printf(" · %d day streak", h.Streak)
		}
		if log.Note != "" {
			ctx.printf(" · %q", log.Note)
		}
		ctx.println()
	}
	return nil
}

func habitOwner(h models.Habit) string {
	if h.UserDisplayName != "" {
		return h.UserDisplayName
	}
	return h.UserName
}

func describeHabit(h models.Habit, p dashboard.Progress) string {
	switch h.Type() {
	case models.HabitWeekly:
		return "weekly on " + formatWeekdays(h.Days())
	case models.HabitWeeklyCount:
		return fmt.Sprintf("%d/%d this week (%d%%)", p.Done, p.Target, p.Percent)
	default:
		return "daily"
	}
}

// HabitFields are the flags shared by add and edit.
type HabitFields struct {
	Description string `help:"Description."`
	Icon        string `help:"Icon."`
	Color       string `help:"Color (#RRGGBB, defaults to the last used)."`
	Type        string `help:"daily, weekly or weekly-count."`
	Days        string `help:"Weekdays for weekly habits, e.g. mon,wed,fri or 1,3,5."`
	Target      int    `help:"Times per week for weekly-count habits (1-7)."`
}

func (f HabitFields) spec(current models.HabitSpec) (models.HabitSpec, error) {
	kind := f.Type
	if kind == "" {
		switch {
		case f.Days != "":
			kind = "weekly"
		case f.Target != 0:
			kind = "weekly-count"
		case current != nil:
			return current, nil
		default:
			kind = "daily"
		}
	}

	switch kind {
	case "weekly":
		if f.Days == "" {
			if ws, ok := current.(models.WeeklySpec); ok {
				return ws, nil
			}
			return nil, fmt.Errorf("weekly habits need --days")
		}
		days, err := parseWeekdays(f.Days)
		if err != nil {
			return nil, err
		}
		return models.WeeklySpec{Days: days}, nil
	case "weekly-count":
		target := f.Target
		if target == 0 {
			if wc, ok := current.(models.WeeklyCountSpec); ok {
				return wc, nil
			}
			target = models.MinWeeklyTarget
		}
		return models.WeeklyCountSpec{Target: target}, nil
	case "daily":
		return models.DailySpec{}, nil
	default:
		return nil, fmt.Errorf("unknown habit type %q (expected daily, weekly or weekly-count)", kind)
	}
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
	HabitFields `embed:""`
}

func (cmd *HabitAddCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	e, err := ctx.Engine("")
	if err != nil {
		return err
	}
	spec, err := cmd.spec(nil)
	if err != nil {
		return err
	}
	color := cmd.Color
	if color == "" {
		color = e.LastHabitColor()
	}
	form := models.HabitForm{
		Name:        cmd.Name,
		Description: cmd.Description,
		Icon:        cmd.Icon,
		Color:       color,
		Spec:        spec,
	}
	h, err := e.CreateHabit(ctx.Ctx, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added habit [%d] %s (%s)\n", h.ID, h.Name, describeHabit(*h, dashboard.Progress{Target: h.Target()}))
	return nil
}

type HabitEditCmd struct {
	ID   int64  `arg:"" help:"Habit ID."`
	Name string `help:"New name."`
	HabitFields `embed:""`
}

func (cmd *HabitEditCmd) Run(ctx *Context) error {
	e, h, err := ownHabit(ctx, cmd.ID)
	if err != nil {
		return err
	}

	form := models.FormOf(h)
	if cmd.Name != "" {
		form.Name = cmd.Name
	}
	if cmd.Description != "" {
		form.Description = cmd.Description
	}
	if cmd.Icon != "" {
		form.Icon = cmd.Icon
	}
	if cmd.Color != "" {
		form.Color = cmd.Color
	}
	if form.Spec, err = cmd.spec(form.Spec); err != nil {
		return err
	}

	updated, err := e.UpdateHabit(ctx.Ctx, h.ID, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated habit [%d] %s\n", updated.ID, updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	ID  int64 `arg:"" help:"Habit ID."`
	Yes bool  `short:"y" help:"Skip confirmation."`
}

func (cmd *HabitDeleteCmd) Run(ctx *Context) error {
	e, h, err := ownHabit(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if err := confirm(cmd.Yes, fmt.Sprintf("Delete %q and its history?", h.Name)); err != nil {
		return err
	}
	if err := e.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	ctx.printf("✓ Deleted habit %s\n", h.Name)
	return nil
}

type HabitReorderCmd struct {
	ID       int64 `arg:"" help:"Habit ID."`
	Position int   `arg:"" help:"New position, starting at 1."`
}

func (cmd *HabitReorderCmd) Run(ctx *Context) error {
	e, _, err := ownHabit(ctx, cmd.ID)
	if err != nil {
		return err
	}
	mine := e.MyHabits()
	from := indexOfHabit(mine, cmd.ID)
	to := cmd.Position - 1
	if to < 0 || to >= len(mine) {
		return fmt.Errorf("position must be between 1 and %d", len(mine))
	}
	if err := e.Reorder(ctx.Ctx, from, to); err != nil {
		return err
	}
	for i, h := range e.MyHabits() {
		ctx.printf("%d. %s\n", i+1, h.Name)
	}
	return nil
}

type HabitMoveCmd struct {
	ID        int64  `arg:"" help:"Habit ID."`
	Direction string `arg:"" help:"up or down." enum:"up,down"`
}

func (cmd *HabitMoveCmd) Run(ctx *Context) error {
	if _, _, err := ownHabit(ctx, cmd.ID); err != nil {
		return err
	}
	if err := ctx.API.MoveHabit(ctx.Ctx, cmd.ID, models.MoveDirection(cmd.Direction)); err != nil {
		return err
	}
	ctx.printf("✓ Moved habit %s\n", cmd.Direction)
	return nil
}

// ownHabit loads the dashboard and returns habit id if the signed-in user owns it.
func ownHabit(ctx *Context, id int64) (*dashboard.Engine, models.Habit, error) {
	user, err := ctx.RequireFamily()
	if err != nil {
		return nil, models.Habit{}, err
	}
	e, err := ctx.Engine("")
	if err != nil {
		return nil, models.Habit{}, err
	}
	for _, h := range e.Snapshot().Habits {
		if h.ID != id {
			continue
		}
		if h.UserID != user.ID {
			return nil, models.Habit{}, fmt.Errorf("habit %d belongs to %s", id, strings.TrimSpace(habitOwner(h)))
		}
		return e, h, nil
	}
	return nil, models.Habit{}, fmt.Errorf("habit %d not found", id)
}

func indexOfHabit(habits []models.Habit, id int64) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
