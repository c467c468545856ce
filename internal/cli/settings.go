package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/utils"
)

type SettingsCmd struct {
	Reminders     SettingsRemindersCmd     `cmd:"" help:"Show or change daily reminders."`
	DisplayName   SettingsDisplayNameCmd   `cmd:"" help:"Change the name your family sees."`
	Theme         SettingsThemeCmd         `cmd:"" help:"Show or change the color theme."`
	DeleteAccount SettingsDeleteAccountCmd `cmd:"" help:"Permanently delete your account."`
}

type SettingsRemindersCmd struct {
	Enable  bool   `xor:"toggle" help:"Turn reminders on."`
	Disable bool   `xor:"toggle" help:"Turn reminders off."`
	Time    string `help:"Reminder time (HH:MM)."`
}

func (cmd *SettingsRemindersCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	current, err := ctx.API.GetReminderSettings(ctx.Ctx)
	if err != nil {
		return err
	}

	if !cmd.Enable && !cmd.Disable && cmd.Time == "" {
		printReminders(ctx, current)
		return nil
	}

	next := *current
	switch {
	case cmd.Enable:
		next.EnableReminders = true
	case cmd.Disable:
		next.EnableReminders = false
	}
	if cmd.Time != "" {
		if !utils.ValidateTimeFormat(cmd.Time) {
			return fmt.Errorf("invalid time format: %s (expected HH:MM)", cmd.Time)
		}
		next.ReminderTime = cmd.Time
	}
	updated, err := ctx.API.UpdateReminderSettings(ctx.Ctx, next)
	if err != nil {
		return err
	}
	ctx.print("✓ ")
	printReminders(ctx, updated)
	return nil
}

func printReminders(ctx *Context, s *models.ReminderSettings) {
	if s.EnableReminders {
		ctx.printf("Reminders on at %s\n", s.ReminderTime)
		return
	}
	ctx.println("Reminders off")
}

type SettingsDisplayNameCmd struct {
	Name string `arg:"" help:"New display name."`
}

func (cmd *SettingsDisplayNameCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	if err := ctx.API.UpdateDisplayName(ctx.Ctx, name); err != nil {
		return err
	}
	if err := ctx.Session.UpdateProfileFields(models.ProfileUpdate{DisplayName: &name}); err != nil {
		return err
	}
	ctx.printf("✓ Display name is now %s\n", name)
	return nil
}

type SettingsThemeCmd struct {
	Theme string `arg:"" optional:"" help:"light or dark."`
}

func (cmd *SettingsThemeCmd) Run(ctx *Context) error {
	if cmd.Theme == "" {
		ctx.println(storage.GetOr(ctx.Store, constants.KeyTheme, constants.ThemeLight))
		return nil
	}
	if cmd.Theme != constants.ThemeLight && cmd.Theme != constants.ThemeDark {
		return fmt.Errorf("unknown theme %q (expected light or dark)", cmd.Theme)
	}
	if err := ctx.Store.Set(constants.KeyTheme, cmd.Theme); err != nil {
		return err
	}
	ctx.printf("✓ Theme set to %s\n", cmd.Theme)
	return nil
}

type SettingsDeleteAccountCmd struct {
	Yes bool `short:"y" help:"Skip confirmation."`
}

func (cmd *SettingsDeleteAccountCmd) Run(ctx *Context) error {
	user, err := ctx.RequireSession()
	if err != nil {
		return err
	}
	if err := confirm(cmd.Yes, "Delete account "+user.Username+" and all its data? This cannot be undone."); err != nil {
		return err
	}
	if err := ctx.API.DeleteAccount(ctx.Ctx); err != nil {
		return err
	}
	if err := ctx.Session.Logout(); err != nil {
		return err
	}
	ctx.println("✓ Account deleted")
	return nil
}
