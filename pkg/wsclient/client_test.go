package wsclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer hands every accepted connection to the test.
type testServer struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{conns: make(chan *websocket.Conn, 8)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ts.conns <- conn
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-ts.conns:
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("client did not connect")
		return nil
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	seen   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan struct{}, 64)}
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.seen <- struct{}{}
}

func (r *recorder) wait(t *testing.T, n int) []Event {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-r.seen:
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d events", i, n)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

func startClient(t *testing.T, c *Client) <-chan error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- c.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return done
}

func TestClient_ReconnectKeepsSubscriptions(t *testing.T) {
	ts := newTestServer(t)

	var (
		mu     sync.Mutex
		states []State
	)
	c := New(ts.url(),
		WithReconnectInterval(20*time.Millisecond),
		OnStateChange(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)

	rec := newRecorder()
	c.Subscribe(rec.handle)
	startClient(t, c)

	first := ts.accept(t)
	require.NoError(t, first.WriteJSON(Event{Type: "ai", Content: "before"}))
	rec.wait(t, 1)

	// Server side drop without a close handshake.
	require.NoError(t, first.Close())

	second := ts.accept(t)
	require.NoError(t, second.WriteJSON(Event{Type: "end"}))

	events := rec.wait(t, 1)
	assert.Equal(t, []Event{{Type: "ai", Content: "before"}, {Type: "end"}}, events)

	mu.Lock()
	defer mu.Unlock()

	connected := 0
	for _, s := range states {
		if s == StateConnected {
			connected++
		}
	}
	assert.Equal(t, 2, connected)
	assert.Contains(t, states, StateDisconnected)
}

func TestClient_HandlerPanicIsIsolated(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.url(), WithReconnectInterval(20*time.Millisecond))

	c.Subscribe(func(Event) { panic("bad handler") })
	rec := newRecorder()
	c.Subscribe(rec.handle)
	startClient(t, c)

	conn := ts.accept(t)
	require.NoError(t, conn.WriteJSON(Event{Type: "ai", Content: "one"}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(Event{Type: "ai", Content: "two"}))

	events := rec.wait(t, 2)
	assert.Equal(t, []Event{{Type: "ai", Content: "one"}, {Type: "ai", Content: "two"}}, events)
	assert.True(t, c.Connected())
}

func TestClient_Unsubscribe(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.url())

	removed := make(chan Event, 4)
	unsubscribe := c.Subscribe(func(ev Event) { removed <- ev })
	rec := newRecorder()
	c.Subscribe(rec.handle)

	unsubscribe()
	unsubscribe()
	startClient(t, c)

	conn := ts.accept(t)
	require.NoError(t, conn.WriteJSON(Event{Type: "end"}))
	rec.wait(t, 1)

	assert.Empty(t, removed)
}

func TestClient_Send(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.url())

	assert.ErrorIs(t, c.Send("too early"), ErrNotConnected)

	startClient(t, c)
	conn := ts.accept(t)

	require.Eventually(t, c.Connected, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Send("open example.com"))

	var got outbound
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "open example.com", got.Message)
}

func TestClient_CloseStopsReconnecting(t *testing.T) {
	ts := newTestServer(t)
	c := New(ts.url(), WithReconnectInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	conn := ts.accept(t)
	require.Eventually(t, c.Connected, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	select {
	case <-ts.conns:
		t.Fatal("client reconnected after Close")
	case <-time.After(100 * time.Millisecond):
	}

	assert.False(t, c.Connected())
	assert.ErrorIs(t, c.Send("late"), ErrNotConnected)
}

func TestClient_RetriesFailedDial(t *testing.T) {
	ts := newTestServer(t)
	url := ts.url()
	ts.Close()

	c := New(url, WithReconnectInterval(10*time.Millisecond))

	var (
		mu       sync.Mutex
		attempts int
	)
	c.onState = func(s State) {
		if s == StateConnecting {
			mu.Lock()
			attempts++
			mu.Unlock()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, attempts, 1)
}
