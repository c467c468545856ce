package cli

import (
	"sort"
	"strings"
)

type MonthlyCmd struct {
	Month string `arg:"" optional:"" help:"Month to summarize (YYYY-MM)."`
	Days  bool   `help:"Also show the per-day breakdown."`
	JSON  bool   `help:"Print as JSON."`
}

func (cmd *MonthlyCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	m, err := resolveMonth(cmd.Month, ctx.Now())
	if err != nil {
		return err
	}
	stats, err := ctx.API.MonthlyStats(ctx.Ctx, m.Year(), int(m.Month()))
	if err != nil {
		return err
	}
	if cmd.JSON {
		return ctx.printJSON(stats)
	}

	ctx.printf("%s\n\n", m.Format("January 2006"))
	ctx.println("Members")
	for _, u := range stats.UserStats {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		ctx.printf("  %-20s %s %5.1f%%  (%d/%d)\n", name, bar(u.CompletionRate), u.CompletionRate, u.CompletedCount, u.TotalPossible)
	}
	ctx.println()
	ctx.println("Habits")
	for _, h := range stats.HabitStats {
		ctx.printf("  %-20s %s %5.1f%%  (%d/%d)\n", h.HabitName, bar(h.CompletionRate), h.CompletionRate, h.CompletedCount, h.TotalPossible)
	}

	if cmd.Days {
		dates := make([]string, 0, len(stats.DailyStats))
		for d := range stats.DailyStats {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		ctx.println()
		for _, d := range dates {
			day := stats.DailyStats[d]
			ctx.printf("  %s  %d/%d\n", d, day.CompletedCount, day.TotalHabits)
		}
	}
	return nil
}

// bar renders a completion rate (0-100) as a ten cell bar.
func bar(rate float64) string {
	n := int(rate/10 + 0.5)
	n = max(0, min(10, n))
	return strings.Repeat("█", n) + strings.Repeat("░", 10-n)
}
