// Package wsclient is a reconnecting websocket client for the browser-pilot
// event protocol. Subscriptions belong to the client, not to a connection,
// so they survive reconnects.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultReconnectInterval = 3 * time.Second

	writeTimeout = 10 * time.Second
	closeGrace   = time.Second
)

var ErrNotConnected = errors.New("wsclient: not connected")

// Event is one server to client message. Which fields are set depends on
// Type: ai, tool, end, error or screenshot.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

type Handler func(Event)

type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateClosed       State = "closed"
)

type Option func(*Client)

func WithReconnectInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

// OnStateChange registers a callback for connection state transitions. It
// is called synchronously from the Run goroutine.
func OnStateChange(fn func(State)) Option {
	return func(c *Client) {
		c.onState = fn
	}
}

type Client struct {
	url      string
	interval time.Duration
	dialer   *websocket.Dialer
	logger   *zap.Logger
	onState  func(State)

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[uint64]Handler
	nextID   uint64
	closed   bool
	done     chan struct{}

	writeMu sync.Mutex
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:      url,
		interval: DefaultReconnectInterval,
		dialer:   websocket.DefaultDialer,
		logger:   zap.NewNop(),
		handlers: make(map[uint64]Handler),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run keeps a connection open until ctx is cancelled or Close is called.
// Any closure the client did not ask for, including a failed dial, is
// followed by a fixed pause and a new dial.
func (c *Client) Run(ctx context.Context) error {
	for {
		if c.isClosed() {
			c.setState(StateClosed)
			return nil
		}

		c.setState(StateConnecting)

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Warn("Dial failed", zap.String("url", c.url), zap.Duration("retry_in", c.interval), zap.Error(err))
		} else {
			err = c.serve(ctx, conn)

			if c.isClosed() {
				c.setState(StateClosed)
				return nil
			}

			c.logger.Warn("Connection lost", zap.Duration("retry_in", c.interval), zap.Error(err))
		}

		c.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			c.setState(StateClosed)
			return nil
		case <-time.After(c.interval):
		}
	}
}

func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()

		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()

		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("Skipping malformed frame", zap.Error(err))
			continue
		}

		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	ids := make([]uint64, 0, len(c.handlers))
	for id := range c.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, c.handlers[id])
	}
	c.mu.Unlock()

	for _, h := range handlers {
		c.call(h, ev)
	}
}

func (c *Client) call(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Event handler panicked", zap.String("type", ev.Type), zap.Any("panic", r))
		}
	}()

	h(ev)
}

// Subscribe adds a handler for every future event and returns a function
// that removes it.
func (c *Client) Subscribe(h Handler) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = h
	c.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.handlers, id)
			c.mu.Unlock()
		})
	}
}

type outbound struct {
	Message string `json:"message"`
}

func (c *Client) Send(text string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return conn.WriteJSON(outbound{Message: text})
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

// Close sends a normal closure frame and stops reconnecting. The read side
// is given a short grace period to receive the server's reply.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	c.closed = true
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	c.writeMu.Unlock()

	_ = conn.SetReadDeadline(time.Now().Add(closeGrace))

	return err
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Client) setState(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}
