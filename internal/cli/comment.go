package cli

import (
	"strings"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/models"
)

type CommentCmd struct {
	Add    CommentAddCmd    `cmd:"" help:"Comment on a habit log. Mention members with @username."`
	Delete CommentDeleteCmd `cmd:"" help:"Delete one of your comments."`
	List   CommentListCmd   `cmd:"" help:"Show the comments on a habit log."`
}

type CommentAddCmd struct {
	LogID int64    `arg:"" help:"Habit log ID."`
	Text  []string `arg:"" help:"Comment text."`
}

func (cmd *CommentAddCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	t := comments.Thread{API: ctx.API}
	c, err := t.Post(ctx.Ctx, cmd.LogID, strings.Join(cmd.Text, " "))
	if err != nil {
		return err
	}
	ctx.printf("✓ Comment %d posted\n", c.ID)
	return nil
}

type CommentDeleteCmd struct {
	ID int64 `arg:"" help:"Comment ID."`
}

func (cmd *CommentDeleteCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	t := comments.Thread{API: ctx.API}
	if err := t.Delete(ctx.Ctx, cmd.ID); err != nil {
		return err
	}
	ctx.println("✓ Comment deleted")
	return nil
}

type CommentListCmd struct {
	LogID int64 `arg:"" help:"Habit log ID."`
	JSON  bool  `help:"Print as JSON."`
}

func (cmd *CommentListCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	t := comments.Thread{API: ctx.API}
	cs, err := t.List(ctx.Ctx, cmd.LogID)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return ctx.printJSON(cs)
	}
	if len(cs) == 0 {
		ctx.println("No comments yet.")
		return nil
	}

	var members []models.Member
	if f, err := ctx.API.MyFamily(ctx.Ctx); err == nil {
		members = f.Members
	}
	now := ctx.Now()
	for _, c := range cs {
		author := c.UserDisplayName
		if author == "" {
			author = c.UserName
		}
		ctx.printf("[%d] %s · %s\n    %s\n", c.ID, author, comments.Ago(c.CreatedAt, now), comments.Render(c.Content, members))
	}
	return nil
}
