package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/famtrack/internal/health"
	"github.com/julianstephens/famtrack/internal/models"
)

type HealthCmd struct {
	Add    HealthAddCmd    `cmd:"" help:"Record a measurement."`
	Edit   HealthEditCmd   `cmd:"" help:"Replace a measurement."`
	List   HealthListCmd   `cmd:"" help:"List recent measurements." default:"1"`
	Chart  HealthChartCmd  `cmd:"" help:"Show a measurement series."`
	Delete HealthDeleteCmd `cmd:"" help:"Delete a measurement."`
}

func parseRecordType(s string) (models.RecordType, error) {
	switch strings.ToLower(s) {
	case "bp", "blood-pressure", "pressure":
		return models.RecordBloodPressure, nil
	case "weight":
		return models.RecordWeight, nil
	case "sugar", "blood-sugar", "glucose":
		return models.RecordBloodSugar, nil
	case "hr", "heart-rate", "pulse":
		return models.RecordHeartRate, nil
	}
	return models.ParseRecordType(strings.ToUpper(s))
}

// HealthFields are the flags shared by add and edit.
type HealthFields struct {
	Type  string `arg:"" help:"bp, weight, sugar or hr."`
	Value string `arg:"" help:"SYS/DIA[/HR] for bp, kg for weight, mg/dL for sugar, bpm for hr."`
	Date  string `short:"d" help:"Measurement date." default:"today"`
	Note  string `short:"n" help:"Note."`
	When  string `help:"MORNING, AFTERNOON, EVENING, BEFORE_MEAL or AFTER_MEAL."`
}

func (f HealthFields) form(ctx *Context) (models.HealthForm, error) {
	t, err := parseRecordType(f.Type)
	if err != nil {
		return models.HealthForm{}, err
	}
	m, err := health.ParseMeasurement(t, f.Value)
	if err != nil {
		return models.HealthForm{}, err
	}
	date, err := resolveDate(f.Date, ctx.Now())
	if err != nil {
		return models.HealthForm{}, err
	}
	return models.HealthForm{
		Date:        date,
		Measurement: m,
		Note:        strings.TrimSpace(f.Note),
		MeasureTime: models.MeasureTime(strings.ToUpper(f.When)),
	}, nil
}

func (c *Context) healthService() *health.Service {
	return &health.Service{API: c.API, Now: c.Now}
}

type HealthAddCmd struct {
	HealthFields `embed:""`
}

func (cmd *HealthAddCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	form, err := cmd.form(ctx)
	if err != nil {
		return err
	}
	rec, err := ctx.healthService().Add(ctx.Ctx, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Recorded [%d] %s\n", rec.ID, health.FormatValue(*rec))
	return nil
}

type HealthEditCmd struct {
	ID           int64 `arg:"" help:"Record ID."`
	HealthFields `embed:""`
}

func (cmd *HealthEditCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	form, err := cmd.form(ctx)
	if err != nil {
		return err
	}
	rec, err := ctx.healthService().Update(ctx.Ctx, cmd.ID, form)
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated [%d] %s\n", rec.ID, health.FormatValue(*rec))
	return nil
}

type HealthListCmd struct {
	Type   string `short:"t" help:"Only this type (bp, weight, sugar, hr)."`
	Days   int    `help:"Days to look back." default:"30"`
	Family bool   `short:"f" help:"Include the whole family."`
	JSON   bool   `help:"Print as JSON."`
}

func (cmd *HealthListCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	var t models.RecordType
	if cmd.Type != "" {
		var err error
		if t, err = parseRecordType(cmd.Type); err != nil {
			return err
		}
	}
	scope := health.ScopeMine
	if cmd.Family {
		if _, err := ctx.RequireFamily(); err != nil {
			return err
		}
		scope = health.ScopeFamily
	}

	records, err := ctx.healthService().List(ctx.Ctx, scope, t, cmd.Days)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return ctx.printJSON(records)
	}
	if len(records) == 0 {
		ctx.printf("No measurements in the last %d days.\n", cmd.Days)
		return nil
	}
	for _, r := range records {
		ctx.println(recordLine(r, cmd.Family))
	}
	return nil
}

func recordLine(r models.HealthRecord, withUser bool) string {
	line := fmt.Sprintf("[%d] %s  %-14s %s", r.ID, r.RecordDate, strings.ToLower(string(r.RecordType)), health.FormatValue(r))
	if r.MeasureTime != "" {
		line += " · " + strings.ToLower(strings.ReplaceAll(r.MeasureTime, "_", " "))
	}
	if withUser && r.UserDisplayName != "" {
		line += " · " + r.UserDisplayName
	}
	if r.Note != "" {
		line += fmt.Sprintf(" · %q", r.Note)
	}
	return line
}

type HealthChartCmd struct {
	Type string `arg:"" help:"bp, weight, sugar or hr."`
	Days int    `help:"Window in days (7, 30 or 90)." default:"30"`
}

func (cmd *HealthChartCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	t, err := parseRecordType(cmd.Type)
	if err != nil {
		return err
	}
	if !slices.Contains(health.Periods, cmd.Days) {
		return fmt.Errorf("--days must be one of %v", health.Periods)
	}
	records, err := ctx.healthService().Chart(ctx.Ctx, t, cmd.Days)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ctx.println("No data for this period.")
		return nil
	}
	for _, r := range records {
		ctx.printf("%s  %s\n", r.RecordDate, health.FormatValue(r))
	}
	return nil
}

type HealthDeleteCmd struct {
	ID  int64 `arg:"" help:"Record ID."`
	Yes bool  `short:"y" help:"Skip confirmation."`
}

func (cmd *HealthDeleteCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	if err := confirm(cmd.Yes, fmt.Sprintf("Delete record %d?", cmd.ID)); err != nil {
		return err
	}
	if err := ctx.healthService().Delete(ctx.Ctx, cmd.ID); err != nil {
		return err
	}
	ctx.println("✓ Record deleted")
	return nil
}
