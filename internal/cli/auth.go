package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/models"
)

type LoginCmd struct {
	Username string `short:"u" help:"Username."`
	Password string `help:"Password (prompted when omitted)." env:"FAMTRACK_PASSWORD"`
}

func (cmd *LoginCmd) Run(ctx *Context) error {
	creds := models.Credentials{Username: cmd.Username, Password: cmd.Password}
	if creds.Username == "" || creds.Password == "" {
		if err := promptCredentials(&creds); err != nil {
			return err
		}
	}

	user, err := ctx.Session.Login(ctx.Ctx, creds)
	if err != nil {
		return err
	}

	ctx.printf("✓ Logged in as %s\n", displayName(user))
	if !user.HasFamily() {
		ctx.println("You are not in a family yet. Create one with 'famtrack family create' or join with 'famtrack family join'.")
	}
	return nil
}

func promptCredentials(creds *models.Credentials) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&creds.Username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password),
		),
	).Run()
}

type SignupCmd struct {
	Username    string `short:"u" required:"" help:"Username."`
	Email       string `required:"" help:"Email address."`
	DisplayName string `help:"Name shown to your family (defaults to username)."`
	Password    string `help:"Password (prompted when omitted)." env:"FAMTRACK_PASSWORD"`
}

func (cmd *SignupCmd) Run(ctx *Context) error {
	req := models.SignupRequest{
		Username:    strings.TrimSpace(cmd.Username),
		Email:       strings.TrimSpace(cmd.Email),
		Password:    cmd.Password,
		DisplayName: strings.TrimSpace(cmd.DisplayName),
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}
	if req.Password == "" {
		var confirmation string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&req.Password),
				huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirmation),
			),
		).Run()
		if err != nil {
			return err
		}
		if confirmation != req.Password {
			return fmt.Errorf("passwords do not match")
		}
	}

	msg, err := ctx.Session.Signup(ctx.Ctx, req)
	if err != nil {
		return err
	}
	if msg != "" {
		ctx.println(msg)
	}
	ctx.printf("✓ Account created. Log in with 'famtrack login -u %s'\n", req.Username)
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.Session.Logout(); err != nil {
		return err
	}
	ctx.println("✓ Logged out")
	return nil
}

type WhoamiCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *WhoamiCmd) Run(ctx *Context) error {
	user, err := ctx.RequireSession()
	if err != nil {
		return err
	}
	if cmd.JSON {
		redacted := *user
		redacted.Token = ""
		return ctx.printJSON(redacted)
	}

	ctx.printf("%s (@%s)\n", displayName(user), user.Username)
	if user.Email != "" {
		ctx.printf("Email:  %s\n", user.Email)
	}
	if user.HasFamily() {
		ctx.printf("Family: %s (#%d)\n", user.FamilyName, *user.FamilyID)
	} else {
		ctx.println("Family: none")
	}
	return nil
}

type PasswordCmd struct {
	Forgot PasswordForgotCmd `cmd:"" help:"Email a password reset link."`
	Reset  PasswordResetCmd  `cmd:"" help:"Set a new password with a reset token."`
}

type PasswordForgotCmd struct {
	Email string `arg:"" help:"Account email address."`
}

func (cmd *PasswordForgotCmd) Run(ctx *Context) error {
	if err := ctx.API.ForgotPassword(ctx.Ctx, strings.TrimSpace(cmd.Email)); err != nil {
		return err
	}
	ctx.println("✓ If the address is registered, a reset link is on its way")
	return nil
}

type PasswordResetCmd struct {
	Token    string `arg:"" help:"Token from the reset email."`
	Password string `help:"New password (prompted when omitted)." env:"FAMTRACK_PASSWORD"`
}

func (cmd *PasswordResetCmd) Run(ctx *Context) error {
	password := cmd.Password
	if password == "" {
		err := huh.NewInput().
			Title("New password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Run()
		if err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	req := models.ResetPasswordRequest{Token: cmd.Token, NewPassword: password}
	if err := ctx.API.ResetPassword(ctx.Ctx, req); err != nil {
		return err
	}
	ctx.println("✓ Password updated. Log in with 'famtrack login'")
	return nil
}
