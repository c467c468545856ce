package cli

import (
	"github.com/julianstephens/famtrack/internal/models"
)

type FamilyCmd struct {
	Create FamilyCreateCmd `cmd:"" help:"Create a family and join it."`
	Join   FamilyJoinCmd   `cmd:"" help:"Join a family with an invite code."`
	Show   FamilyShowCmd   `cmd:"" help:"Show your family and its members." default:"1"`
	Leave  FamilyLeaveCmd  `cmd:"" help:"Leave your family."`
	Rename FamilyRenameCmd `cmd:"" help:"Rename your family."`
}

type FamilyCreateCmd struct {
	Name string `arg:"" help:"Family name."`
}

func (cmd *FamilyCreateCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	f, err := ctx.API.CreateFamily(ctx.Ctx, cmd.Name)
	if err != nil {
		return err
	}
	if err := ctx.Session.UpdateGroupMembership(&f.ID, f.Name); err != nil {
		return err
	}
	ctx.printf("✓ Created family %q\n", f.Name)
	ctx.printf("Invite code: %s\n", f.InviteCode)
	return nil
}

type FamilyJoinCmd struct {
	Code string `arg:"" help:"Invite code."`
}

func (cmd *FamilyJoinCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	f, err := ctx.API.JoinFamily(ctx.Ctx, cmd.Code)
	if err != nil {
		return err
	}
	if err := ctx.Session.UpdateGroupMembership(&f.ID, f.Name); err != nil {
		return err
	}
	ctx.printf("✓ Joined family %q (%d members)\n", f.Name, len(f.Members))
	return nil
}

type FamilyShowCmd struct {
	JSON bool `help:"Print as JSON."`
}

func (cmd *FamilyShowCmd) Run(ctx *Context) error {
	user, err := ctx.RequireFamily()
	if err != nil {
		return err
	}
	f, err := ctx.API.MyFamily(ctx.Ctx)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return ctx.printJSON(f)
	}

	ctx.printf("%s\n", f.Name)
	ctx.printf("Invite code: %s\n\n", f.InviteCode)
	for _, m := range f.Members {
		ctx.println(memberLine(m, user.ID))
	}
	return nil
}

func memberLine(m models.Member, selfID int64) string {
	line := "  " + m.Username
	if m.DisplayName != "" && m.DisplayName != m.Username {
		line = "  " + m.DisplayName + " (@" + m.Username + ")"
	}
	if m.ID == selfID {
		line += " (you)"
	}
	return line
}

type FamilyLeaveCmd struct {
	Yes bool `short:"y" help:"Skip confirmation."`
}

func (cmd *FamilyLeaveCmd) Run(ctx *Context) error {
	user, err := ctx.RequireFamily()
	if err != nil {
		return err
	}
	if err := confirm(cmd.Yes, "Leave "+user.FamilyName+"?"); err != nil {
		return err
	}
	if err := ctx.API.LeaveFamily(ctx.Ctx); err != nil {
		return err
	}
	if err := ctx.Session.UpdateGroupMembership(nil, ""); err != nil {
		return err
	}
	ctx.printf("✓ Left %s\n", user.FamilyName)
	return nil
}

type FamilyRenameCmd struct {
	Name string `arg:"" help:"New family name."`
}

func (cmd *FamilyRenameCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	f, err := ctx.API.RenameFamily(ctx.Ctx, cmd.Name)
	if err != nil {
		return err
	}
	if err := ctx.Session.UpdateGroupMembership(&f.ID, f.Name); err != nil {
		return err
	}
	ctx.printf("✓ Renamed family to %q\n", f.Name)
	return nil
}
