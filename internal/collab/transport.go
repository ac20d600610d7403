package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Transport moves Messages between a session and the outside world: the
// project socket or a direct peer channel.
type Transport interface {
	Connect(ctx context.Context) error
	Send(msg Message) error
	OnMessage(fn func(Message))
	Disconnect() error
}

// WebSocketTransport is the production transport: one websocket connection
// with a background read loop feeding the registered handler.
type WebSocketTransport struct {
	url  string
	opts *websocket.DialOptions

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	handler func(Message)
}

func NewWebSocketTransport(url string, opts *websocket.DialOptions) *WebSocketTransport {
	return &WebSocketTransport{url: url, opts: opts}
}

func (t *WebSocketTransport) OnMessage(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = fn
}

func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return &ConnectionError{Stage: "connect", Err: errors.New("already connected")}
	}
	t.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, t.url, t.opts)
	if err != nil {
		return &ConnectionError{Stage: "connect", Err: err}
	}
	conn.SetReadLimit(maxMsgSize)

	readCtx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.conn = conn
	t.cancel = cancel
	t.mu.Unlock()

	go t.readLoop(readCtx, conn)
	return nil
}

func (t *WebSocketTransport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid frame", "error", err)
			continue
		}

		t.mu.Lock()
		handler := t.handler
		t.mu.Unlock()
		if handler != nil {
			handler(msg)
		}
	}
}

func (t *WebSocketTransport) Send(msg Message) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return &ConnectionError{Stage: "send", Err: errors.New("not connected")}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return &ConnectionError{Stage: "send", Err: err}
	}
	return nil
}

func (t *WebSocketTransport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	cancel := t.cancel
	t.conn = nil
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client disconnect")
}

// MemoryTransport is an in-process Transport. NewMemoryPair links two ends:
// a Send on one side invokes the other side's handler synchronously, which
// keeps direct peer channels and tests deterministic.
type MemoryTransport struct {
	mu      sync.Mutex
	peer    *MemoryTransport
	handler func(Message)
	closed  bool
}

func NewMemoryPair() (*MemoryTransport, *MemoryTransport) {
	a := &MemoryTransport{}
	b := &MemoryTransport{}
	a.peer = b
	b.peer = a
	return a, b
}

func (t *MemoryTransport) Connect(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return &ConnectionError{Stage: "connect", Err: errors.New("transport closed")}
	}
	return nil
}

func (t *MemoryTransport) OnMessage(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = fn
}

func (t *MemoryTransport) Send(msg Message) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return &ConnectionError{Stage: "send", Err: errors.New("transport closed")}
	}
	peer := t.peer
	t.mu.Unlock()

	if peer == nil {
		return nil
	}
	peer.mu.Lock()
	handler := peer.handler
	closed := peer.closed
	peer.mu.Unlock()

	if closed || handler == nil {
		return nil
	}
	handler(msg)
	return nil
}

func (t *MemoryTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
