package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/logger"
)

type snapshotMsg dashboard.Snapshot

type errorMsg string

// localErrorMsg is an error produced by a model command rather than the
// engine, so it does not re-arm the bridge wait.
type localErrorMsg string

type noticeMsg string

// Bridge carries engine callbacks, which run on background goroutines,
// into the bubbletea event loop.
type Bridge struct {
	ch chan tea.Msg
}

func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 64)}
}

// Options returns the engine options that publish to the bridge.
func (b *Bridge) Options() []dashboard.Option {
	return []dashboard.Option{
		dashboard.OnChange(func(s dashboard.Snapshot) { b.send(snapshotMsg(s)) }),
		dashboard.OnError(func(msg string) { b.send(errorMsg(msg)) }),
	}
}

// Notify shows a completion notice as a toast.
func (b *Bridge) Notify(text string) error {
	b.send(noticeMsg(text))
	return nil
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
		logger.Debug("ui event queue full, dropping event")
	}
}

func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg { return <-b.ch }
}
