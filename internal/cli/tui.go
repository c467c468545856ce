package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/notifier"
	"github.com/julianstephens/famtrack/internal/realtime"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/tui"
)

type TuiCmd struct {
	Live   bool `help:"Also reload when the broker reports a habit change."`
	NoTray bool `help:"Do not forward notifications to the tray companion."`
}

func (cmd *TuiCmd) Run(ctx *Context) error {
	user, err := ctx.RequireFamily()
	if err != nil {
		return err
	}
	tui.ApplyTheme(storage.GetOr(ctx.Store, constants.KeyTheme, ""))

	var desktop notifier.Notifier = notifier.Log{}
	if !cmd.NoTray {
		desktop = notifier.Default()
	}

	bridge := tui.NewBridge()
	opts := append(bridge.Options(),
		dashboard.WithNotifier(notifier.Multi{bridge, desktop}),
		dashboard.WithPrefs(ctx.Store),
		dashboard.WithInterval(ctx.Config.PollInterval),
		dashboard.WithClock(ctx.Now),
	)
	engine := dashboard.New(ctx.API, ctx.Session, opts...)
	defer engine.Stop()

	runCtx, cancel := context.WithCancel(ctx.Ctx)
	defer cancel()

	thread := &comments.Thread{
		API:     ctx.API,
		Refresh: func(rc context.Context) error { return engine.LoadData(rc, false) },
	}

	if cmd.Live {
		ch := ctx.Realtime()
		defer ch.Close()
		watchHabits(runCtx, ch, engine, *user.FamilyID)
	}

	model := tui.NewModel(runCtx, tui.Deps{Engine: engine, Thread: thread, Bridge: bridge})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}

// watchHabits reloads the dashboard on habit notices. The poller keeps
// running, so a broker outage only delays updates.
func watchHabits(ctx context.Context, ch *realtime.Channel, engine *dashboard.Engine, familyID int64) {
	err := ch.Subscribe(realtime.HabitTopic(familyID), func(models.ChangeNotice) {
		go engine.Tick(ctx)
	})
	if err != nil {
		logger.Warn("habit subscription failed", "error", err)
		return
	}
	go func() {
		if err := ch.Connect(ctx); err != nil {
			logger.Warn("realtime connect failed, retrying in background", "error", err)
		}
	}()
}
