package cli

import (
	"github.com/julianstephens/famtrack/internal/models"
)

type PushCmd struct {
	VapidKey    PushVapidKeyCmd    `cmd:"" help:"Print the backend's web-push public key."`
	Subscribe   PushSubscribeCmd   `cmd:"" help:"Register a push endpoint."`
	Unsubscribe PushUnsubscribeCmd `cmd:"" help:"Remove a push endpoint."`
}

type PushVapidKeyCmd struct{}

func (cmd *PushVapidKeyCmd) Run(ctx *Context) error {
	key, err := ctx.API.VapidPublicKey(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.println(key)
	return nil
}

type PushSubscribeCmd struct {
	Endpoint string `arg:"" help:"Push service endpoint URL."`
	P256dh   string `required:"" help:"Subscription p256dh key."`
	Auth     string `required:"" help:"Subscription auth secret."`
}

func (cmd *PushSubscribeCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	sub := models.PushSubscription{
		Endpoint: cmd.Endpoint,
		Keys:     models.PushKeys{P256dh: cmd.P256dh, Auth: cmd.Auth},
	}
	if err := ctx.API.Subscribe(ctx.Ctx, sub); err != nil {
		return err
	}
	ctx.println("✓ Subscribed")
	return nil
}

type PushUnsubscribeCmd struct {
	Endpoint string `arg:"" help:"Push service endpoint URL."`
}

func (cmd *PushUnsubscribeCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	if err := ctx.API.Unsubscribe(ctx.Ctx, cmd.Endpoint); err != nil {
		return err
	}
	ctx.println("✓ Unsubscribed")
	return nil
}
