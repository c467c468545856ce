package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/famtrack/internal/logger"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database and log file paths."`
	DumpSession  *DebugDumpSessionCmd  `cmd:"" help:"Dump the stored session as JSON (token redacted)."`
	DumpSnapshot *DebugDumpSnapshotCmd `cmd:"" help:"Dump a dashboard snapshot as JSON."`
	Metrics      *DebugMetricsCmd      `cmd:"" help:"Run a dashboard reload and print client counters."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	// Output in machine-readable format
	return ctx.printJSON(map[string]string{
		"path":   ctx.Store.GetConfigPath(),
		"config": ctx.Config.ConfigDir,
		"log":    logger.Path(ctx.Config.ConfigDir),
	})
}

type DebugDumpSessionCmd struct{}

func (cmd *DebugDumpSessionCmd) Run(ctx *Context) error {
	user, err := ctx.RequireSession()
	if err != nil {
		return err
	}
	redacted := *user
	if redacted.Token != "" {
		redacted.Token = "[redacted]"
	}
	return ctx.printJSON(redacted)
}

type DebugDumpSnapshotCmd struct {
	Date string `arg:"" optional:"" help:"Date of the snapshot (YYYY-MM-DD or 'today')." default:"today"`
}

func (cmd *DebugDumpSnapshotCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	date, err := resolveDate(cmd.Date, ctx.Now())
	if err != nil {
		return err
	}
	e, err := ctx.Engine(date)
	if err != nil {
		return err
	}
	return ctx.printJSON(e.Snapshot())
}

type DebugMetricsCmd struct{}

func (cmd *DebugMetricsCmd) Run(ctx *Context) error {
	if _, err := ctx.RequireFamily(); err != nil {
		return err
	}
	if _, err := ctx.Engine(""); err != nil {
		return err
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "famtrack_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%-60s %g", name, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		ctx.println(l)
	}
	return nil
}
