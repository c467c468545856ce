package dashboard

import (
	"context"
	"time"

	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/metrics"
)

// Start begins polling every interval while the user belongs to a group.
// Calling Start while already polling is a no-op.
func (e *Engine) Start(ctx context.Context) {
	if u := e.session.User(); !u.HasFamily() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted || e.pollCancel != nil {
		return
	}
	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.pollCancel, e.pollDone = cancel, done
	go e.poll(pctx, done)
}

// Polling reports whether the poll loop is running.
func (e *Engine) Polling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pollCancel != nil
}

// StopPolling stops the poll loop and waits for it to exit. In-flight
// ticks finish on their own.
func (e *Engine) StopPolling() {
	e.mu.Lock()
	cancel, done := e.pollCancel, e.pollDone
	e.pollCancel, e.pollDone = nil, nil
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stop unmounts the engine: polling ends and results of any reload still
// in flight are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.mounted = false
	e.mu.Unlock()
	e.StopPolling()
}

// Tick runs one notification-checking reload unless the previous one is
// still running, in which case the tick is skipped and false is returned.
func (e *Engine) Tick(ctx context.Context) bool {
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.SkippedPolls.Inc()
		logger.Debug("skipping poll, previous reload still running")
		return false
	}
	defer e.inFlight.Store(false)
	if err := e.LoadData(ctx, true); err != nil {
		logger.Debug("poll reload failed", "error", err)
	}
	return true
}

func (e *Engine) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if u := e.session.User(); !u.HasFamily() {
				logger.Debug("no group, polling stopped")
				e.mu.Lock()
				var cancel context.CancelFunc
				if e.pollDone == done {
					cancel = e.pollCancel
					e.pollCancel, e.pollDone = nil, nil
				}
				e.mu.Unlock()
				if cancel != nil {
					cancel()
				}
				return
			}
			go e.Tick(ctx)
		}
	}
}
