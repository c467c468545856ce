package cli

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/storage/sqlite"
)

type DoctorCmd struct {
	Realtime bool          `help:"Also try a broker connection."`
	Timeout  time.Duration `help:"Timeout for network checks." default:"5s"`
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	check := func(name string, err error) {
		if err != nil {
			ctx.printf("❌ %s: FAIL\n", name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
			return
		}
		ctx.printf("✓ %s: OK\n", name)
	}

	// Check 1: configuration
	check("Configuration", checkConfig(ctx))

	// Check 2: local database and migrations
	check("Local database", checkLocalDB(ctx))

	// Check 3: session (warning only)
	if user := ctx.Session.User(); user == nil {
		ctx.printf("⚠ Session: WARNING\n")
		ctx.printf("   not logged in\n")
	} else {
		ctx.printf("✓ Session: OK (%s)\n", user.Username)
		if !user.HasFamily() {
			ctx.printf("   Note: not in a family yet\n")
		}
	}

	// Check 4: backend reachable
	netCtx, cancel := context.WithTimeout(ctx.Ctx, cmd.Timeout)
	defer cancel()
	check("Backend reachable", checkBackend(netCtx, ctx.API))

	// Check 5: broker reachable
	if cmd.Realtime {
		check("Broker reachable", checkBroker(netCtx, ctx))
	} else {
		ctx.printf("⊘ Broker reachable: SKIPPED (pass --realtime)\n")
	}

	// Check 6: clock/timezone sanity
	check("Clock/timezone", checkClockTimezone(ctx))

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *Context) error {
	for name, raw := range map[string]string{"api url": ctx.Config.APIURL, "ws url": ctx.Config.WSURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	if ctx.Config.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", ctx.Config.PollInterval)
	}
	return nil
}

func checkLocalDB(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// Ephemeral store has no schema
		return nil
	}
	current, latest, err := store.SchemaStatus(ctx.Ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

// checkBackend calls an unauthenticated endpoint. Any HTTP answer means
// the server is up.
func checkBackend(ctx context.Context, client *api.Client) error {
	_, err := client.VapidPublicKey(ctx)
	switch api.Classify(err) {
	case api.CategoryNone, api.CategoryHTTP:
		return nil
	default:
		return fmt.Errorf("%s: %w", client.BaseURL(), err)
	}
}

func checkBroker(netCtx context.Context, ctx *Context) error {
	ch := ctx.Realtime()
	defer ch.Close()
	if err := ch.Connect(netCtx); err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.WSURL, err)
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// Habit days are local calendar days
	if now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC, habit days roll over at UTC midnight\n")
	}
	return nil
}
