package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 64 * 1024
	closeGrace     = time.Second
)

// wsConn adapts a gorilla connection to ports.ClientConn. gorilla reads do
// not observe a context; closing the connection is what unblocks Read.
type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	ws.SetReadLimit(maxMessageSize)

	return &wsConn{
		ws:           ws,
		writeTimeout: writeTimeout,
	}
}

func (c *wsConn) Read(_ context.Context) ([]byte, error) {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}

		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *wsConn) Write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal closure frame and releases the socket.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.writeMu.Unlock()

		c.closeErr = c.ws.Close()
	})

	return c.closeErr
}

func (c *wsConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
