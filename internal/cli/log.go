package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/utils"
)

type LogCmd struct {
	Toggle LogToggleCmd `cmd:"" help:"Check or uncheck one of your habits for a day."`
	Note   LogNoteCmd   `cmd:"" help:"Change the note on a day's log."`
	Today  LogTodayCmd  `cmd:"" help:"Show your logs for today." default:"1"`
	Week   LogWeekCmd   `cmd:"" help:"Show a week of your habits."`
}

type LogToggleCmd struct {
	HabitID int64  `arg:"" help:"Habit ID."`
	Date    string `short:"d" help:"Day to log (YYYY-MM-DD, today, yesterday)." default:"today"`
	Note    string `short:"n" help:"Note to attach when checking."`
	Prompt  bool   `short:"p" help:"Ask for a note when checking."`
}

func (cmd *LogToggleCmd) Run(ctx *Context) error {
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

	pending, err := e.BeginToggle(ctx.Ctx, cmd.HabitID)
	if err != nil {
		return err
	}
	if pending == nil {
		ctx.printf("○ Unchecked habit %d for %s\n", cmd.HabitID, date)
		return nil
	}

	note := cmd.Note
	if note == "" {
		note = pending.Note
	}
	if cmd.Prompt {
		err := huh.NewText().
			Title("How did it go?").
			CharLimit(500).
			Value(&note).
			Run()
		if err != nil {
			pending.Cancel()
			return err
		}
	}
	if err := pending.Confirm(ctx.Ctx, note); err != nil {
		return err
	}
	ctx.printf("✓ Checked habit %d for %s\n", cmd.HabitID, date)
	return nil
}

type LogNoteCmd struct {
	HabitID int64  `arg:"" help:"Habit ID."`
	Note    string `arg:"" help:"New note, empty to clear."`
	Date    string `short:"d" help:"Day of the log." default:"today"`
}

func (cmd *LogNoteCmd) Run(ctx *Context) error {
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
	err = e.UpdateNote(ctx.Ctx, cmd.HabitID, cmd.Note)
	if errors.Is(err, dashboard.ErrUnknownHabit) {
		return fmt.Errorf("no log for habit %d on %s", cmd.HabitID, date)
	}
	if err != nil {
		return err
	}
	ctx.println("✓ Note updated")
	return nil
}

type LogTodayCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *LogTodayCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	today := utils.FormatDate(ctx.Now())
	logs, err := ctx.API.MyLogs(ctx.Ctx, today)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return ctx.printJSON(logs)
	}
	if len(logs) == 0 {
		ctx.println("Nothing logged today.")
		return nil
	}
	for _, l := range logs {
		ctx.printf("%s [%d] %s", mark(l.Completed), l.Habit.ID, l.Habit.Name)
		if l.Note != "" {
			ctx.printf(" · %q", l.Note)
		}
		if n := len(l.Comments); n > 0 {
			ctx.printf(" · %d comment(s), log %d", n, l.ID)
		}
		ctx.println()
	}
	return nil
}

type LogWeekCmd struct {
	Date string `short:"d" help:"Any day in the week to show." default:"today"`
}

func (cmd *LogWeekCmd) Run(ctx *Context) error {
	user, err := ctx.RequireFamily()
	if err != nil {
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

	day, _ := utils.ParseDate(date)
	monday, _ := utils.WeekRange(day)
	snap := e.Snapshot()
	mine := snap.Mine()
	if len(mine) == 0 {
		ctx.println("You have no habits yet.")
		return nil
	}

	ctx.printf("Week of %s\n\n", utils.FormatDate(monday))
	ctx.printf("%-24s Mo Tu We Th Fr Sa Su\n", "")
	for _, h := range mine {
		cells := make([]string, 7)
		for i := range cells {
			d := utils.FormatDate(monday.AddDate(0, 0, i))
			cells[i] = " " + weekCell(snap.WeekLogs, h, user.ID, d)
		}
		name := h.Name
		if len([]rune(name)) > 24 {
			name = string([]rune(name)[:23]) + "…"
		}
		ctx.printf("%-24s%s", name, strings.Join(cells, " "))
		if h.Type() == models.HabitWeeklyCount {
			p := e.WeeklyProgress(h)
			ctx.printf("  %d/%d", p.Done, p.Target)
		}
		ctx.println()
	}
	return nil
}

func weekCell(logs []models.HabitLog, h models.Habit, userID int64, date string) string {
	for _, l := range logs {
		if l.Habit.ID == h.ID && l.User.ID == userID && l.LogDate == date && l.Completed {
			return "✓"
		}
	}
	if day, err := utils.ParseDate(date); err == nil && !dashboard.IsHabitForDate(h, day) {
		return "·"
	}
	return "○"
}
