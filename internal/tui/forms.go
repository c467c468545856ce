package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/utils"
)

type NoteFormModel struct {
	Note string
}

type HabitFormModel struct {
	Name        string
	Description string
	Color       string
	Type        models.HabitType
	Days        string
	Target      string
}

// NewHabitFormModel prefills the form from an existing habit, or from
// color alone for a new one.
func NewHabitFormModel(h *models.Habit, color string) *HabitFormModel {
	if h == nil {
		return &HabitFormModel{Color: color, Type: models.HabitDaily, Target: "3"}
	}
	fm := &HabitFormModel{
		Name:        h.Name,
		Description: h.Description,
		Color:       h.Color,
		Type:        h.Type(),
		Days:        models.FormatSelectedDays(h.Days()),
		Target:      "3",
	}
	if t := h.Target(); t > 0 {
		fm.Target = strconv.Itoa(t)
	}
	return fm
}

// HabitForm converts the form fields into a tagged habit form.
func (fm *HabitFormModel) HabitForm() (models.HabitForm, error) {
	form := models.HabitForm{
		Name:        fm.Name,
		Description: fm.Description,
		Color:       strings.TrimSpace(fm.Color),
	}
	switch fm.Type {
	case models.HabitWeekly:
		days, err := models.ParseSelectedDays(fm.Days)
		if err != nil {
			return models.HabitForm{}, fmt.Errorf("%w: %v", models.ErrInvalidHabit, err)
		}
		form.Spec = models.WeeklySpec{Days: days}
	case models.HabitWeeklyCount:
		n, err := strconv.Atoi(strings.TrimSpace(fm.Target))
		if err != nil {
			return models.HabitForm{}, fmt.Errorf("%w: weekly target must be a number", models.ErrInvalidHabit)
		}
		form.Spec = models.WeeklyCountSpec{Target: n}
	default:
		form.Spec = models.DailySpec{}
	}
	return form, nil
}

// NewNoteForm asks for an optional note when checking off a habit.
func NewNoteForm(fm *NoteFormModel, habitName string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Complete "+habitName).
				Description("Optional note").
				CharLimit(500).
				Value(&fm.Note),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewHabitForm creates the add/edit habit form.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title("Color").
				Value(&fm.Color).
				Validate(func(s string) error {
					if !strings.HasPrefix(strings.TrimSpace(s), "#") {
						return fmt.Errorf("color must be a hex value like #007bff")
					}
					return nil
				}),
			huh.NewSelect[models.HabitType]().
				Title("Frequency").
				Options(
					huh.NewOption("Every day", models.HabitDaily),
					huh.NewOption("Specific weekdays", models.HabitWeekly),
					huh.NewOption("N times per week", models.HabitWeeklyCount),
				).
				Value(&fm.Type),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Weekdays").
				Description("Comma-separated, 1=Mon .. 7=Sun").
				Value(&fm.Days).
				Validate(func(s string) error {
					days, err := models.ParseSelectedDays(s)
					if err != nil {
						return err
					}
					if len(days) == 0 {
						return fmt.Errorf("pick at least one weekday")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Type != models.HabitWeekly }),
		huh.NewGroup(
			huh.NewInput().
				Title("Times per week").
				Description("1-7").
				Value(&fm.Target).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < models.MinWeeklyTarget || n > models.MaxWeeklyTarget {
						return fmt.Errorf("target must be between 1 and 7")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Type != models.HabitWeeklyCount }),
	).WithTheme(huh.ThemeDracula())
}

func dayLabel(date, today string) string {
	t, err := utils.ParseDate(date)
	if err != nil {
		return date
	}
	label := t.Format("Mon 2006-01-02")
	if date == today {
		label += " (today)"
	}
	return label
}
