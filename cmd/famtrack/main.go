package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/famtrack/internal/cli"
	"github.com/julianstephens/famtrack/internal/config"
	"github.com/julianstephens/famtrack/internal/constants"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	cli.Globals

	Login    cli.LoginCmd    `cmd:"" help:"Log in to the family server."`
	Signup   cli.SignupCmd   `cmd:"" help:"Create an account."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Log out and forget the session."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the signed-in user."`
	Password cli.PasswordCmd `cmd:"" help:"Recover a forgotten password."`
	Family   cli.FamilyCmd   `cmd:"" help:"Create, join and manage your family."`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits."`
	Log      cli.LogCmd      `cmd:"" help:"Check off habits."`
	Comment  cli.CommentCmd  `cmd:"" help:"Comment on habit logs."`
	Calendar cli.CalendarCmd `cmd:"" help:"Shared family calendar."`
	Health   cli.HealthCmd   `cmd:"" help:"Health measurements."`
	Monthly  cli.MonthlyCmd  `cmd:"" help:"Monthly completion summary."`
	Settings cli.SettingsCmd `cmd:"" help:"Manage account and client settings."`
	Push     cli.PushCmd     `cmd:"" help:"Web-push registration."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Debug    cli.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Family habit tracker for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.New()
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := cfg.Override(CLI.Flags()); err != nil {
		apperrors.Fatal(err)
	}

	// Log lines would tear the alt screen, so the TUI logs to file only.
	interactive := kctx.Command() == "tui"
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Stderr:    !interactive,
		Command:   kctx.Command(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := cli.NewContext(ctx, cfg, CLI.Ephemeral)
	if err != nil {
		apperrors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	if cErr := appCtx.Close(); cErr != nil {
		logger.Warn("failed to close local state", "error", cErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Command execution failed", "command", kctx.Command(), "error", err)
		fmt.Fprintln(os.Stderr, apperrors.Formatf("%s", cli.ErrorMessage(err)))
		os.Exit(1)
	}
}
