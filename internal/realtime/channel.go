// Package realtime keeps a best-effort STOMP subscription channel to the
// backend broker. Delivery is at-most-once; notices sent while the
// connection is down are lost, and callers compensate by refetching.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gobwas/ws"
	"github.com/google/uuid"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/metrics"
	"github.com/julianstephens/famtrack/internal/models"
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("realtime channel closed")

// Handler receives parsed change notices for one topic.
type Handler func(models.ChangeNotice)

// Option configures a Channel.
type Option func(*Channel)

// WithReconnectDelay sets the fixed delay between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithTokenSource sends the session token in the STOMP CONNECT frame.
func WithTokenSource(ts api.TokenSource) Option {
	return func(c *Channel) { c.tokens = ts }
}

// WithDialTimeout bounds each WebSocket handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Channel) { c.dialer.Timeout = d }
}

// Channel is one logical broker connection with per-topic handlers.
type Channel struct {
	endpoint string
	delay    time.Duration
	tokens   api.TokenSource
	dialer   ws.Dialer

	mu        sync.Mutex
	handlers  map[string]Handler
	subIDs    map[string]string // topic -> subscription id on the live connection
	conn      net.Conn
	connected bool
	running   bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Channel for the broker at wsURL (e.g. ws://localhost:8080/ws).
func New(wsURL string, opts ...Option) *Channel {
	c := &Channel{
		endpoint: Endpoint(wsURL),
		delay:    constants.DefaultReconnectDelay,
		dialer:   ws.Dialer{Timeout: constants.DefaultHTTPTimeout},
		handlers: make(map[string]Handler),
		subIDs:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect starts the connection loop and waits for the first attempt.
// Calling it while the loop is running is a no-op. If the first attempt
// fails its error is returned and the loop keeps retrying in the
// background until Close.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.running {
		c.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	first := make(chan error, 1)
	c.mu.Unlock()

	go c.run(loopCtx, first)

	select {
	case err := <-first:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether a STOMP session is currently established.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers handler for topic, replacing any previous handler.
// While disconnected the subscription is queued and sent on (re)connect.
func (c *Channel) Subscribe(topic string, handler Handler) error {
	if handler == nil {
		return errors.New("nil handler")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[topic] = handler
	if !c.connected {
		return nil
	}
	if _, ok := c.subIDs[topic]; ok {
		return nil
	}
	return c.subscribeLocked(topic)
}

// Unsubscribe removes the handler for topic. Unknown topics and a down
// connection are not errors.
func (c *Channel) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.handlers, topic)
	id, ok := c.subIDs[topic]
	if !ok || !c.connected {
		return nil
	}
	delete(c.subIDs, topic)
	if err := writeFrame(c.conn, frame.New(frame.UNSUBSCRIBE, frame.Id, id)); err != nil {
		logger.Debug("unsubscribe write failed", "topic", topic, "error", err)
	}
	return nil
}

// Close stops the loop and drops the connection. It is idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.connected && c.conn != nil {
		_ = writeFrame(c.conn, frame.New(frame.DISCONNECT))
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

func (c *Channel) run(ctx context.Context, first chan<- error) {
	defer close(c.done)
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	b := backoff.WithContext(backoff.NewConstantBackOff(c.delay), ctx)
	for {
		err := c.session(ctx, func(err error) {
			if first != nil {
				first <- err
				first = nil
			}
		})
		if first != nil {
			first <- err
			first = nil
		}
		if ctx.Err() != nil {
			return
		}
		logger.Warn("realtime connection lost", "endpoint", c.endpoint, "error", err)

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		metrics.Reconnects.Inc()
	}
}

// session runs one connection from dial to drop. ready is called once the
// STOMP handshake has succeeded.
func (c *Channel) session(ctx context.Context, ready func(error)) error {
	conn, br, _, err := c.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	var r io.Reader = conn
	if br != nil {
		r = br
	}
	rw := readWriter{Reader: r, Writer: conn}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer func() { _ = conn.Close() }()

	if err := c.handshake(rw); err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.subIDs = make(map[string]string)
	for topic := range c.handlers {
		if err := c.subscribeLocked(topic); err != nil {
			c.markDownLocked()
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()
	logger.Info("realtime connected", "endpoint", c.endpoint)
	ready(nil)

	err = c.readLoop(rw)

	c.mu.Lock()
	c.markDownLocked()
	c.mu.Unlock()
	return err
}

func (c *Channel) handshake(rw io.ReadWriter) error {
	host := ""
	if u, err := url.Parse(c.endpoint); err == nil {
		host = u.Hostname()
	}
	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2,1.1,1.0",
		frame.Host, host,
		frame.HeartBeat, "0,0",
	)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			connect.Header.Add("Authorization", "Bearer "+token)
		}
	}
	if err := writeFrame(rw, connect); err != nil {
		return err
	}

	f, err := readFrame(rw)
	if err != nil {
		return fmt.Errorf("read CONNECTED: %w", err)
	}
	switch f.Command {
	case frame.CONNECTED:
		return nil
	case frame.ERROR:
		return fmt.Errorf("broker rejected connection: %s", f.Header.Get(frame.Message))
	default:
		return fmt.Errorf("unexpected %s frame during handshake", f.Command)
	}
}

func (c *Channel) readLoop(rw io.ReadWriter) error {
	for {
		f, err := readFrame(rw)
		if err != nil {
			return err
		}
		switch f.Command {
		case frame.MESSAGE:
			c.dispatch(f)
		case frame.ERROR:
			return fmt.Errorf("broker error: %s", f.Header.Get(frame.Message))
		}
	}
}

func (c *Channel) dispatch(f *frame.Frame) {
	topic := f.Header.Get(frame.Destination)
	c.mu.Lock()
	h := c.handlers[topic]
	c.mu.Unlock()
	if h == nil {
		return
	}

	var notice models.ChangeNotice
	if err := json.Unmarshal(f.Body, &notice); err != nil {
		logger.Warn("dropping malformed change notice", "topic", topic, "error", err)
		return
	}
	metrics.RealtimeMessages.WithLabelValues(topicKind(topic)).Inc()
	h(notice)
}

func (c *Channel) subscribeLocked(topic string) error {
	id := uuid.NewString()
	sub := frame.New(frame.SUBSCRIBE,
		frame.Id, id,
		frame.Destination, topic,
		frame.Ack, "auto",
	)
	if err := writeFrame(c.conn, sub); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	c.subIDs[topic] = id
	return nil
}

func (c *Channel) markDownLocked() {
	c.connected = false
	c.conn = nil
	c.subIDs = make(map[string]string)
}
