package protocol

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSTransport implements Transport over a gorilla/websocket connection.
// One full Message is carried per WebSocket text frame; gorilla handles
// RFC-6455 framing, client-side masking, and PING/PONG/CLOSE control
// opcodes internally, so this type only needs to translate between
// websocket.Conn and Message (spec §4.1).
type WSTransport struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewWSTransport wraps an already-upgraded WebSocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	t := &WSTransport{conn: conn}
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), deadlineNow())
	})
	return t
}

// Recv reads one text frame and decodes it as a Message.
func (t *WSTransport) Recv() (*Message, error) {
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, ErrClosed
			}
			return nil, err
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		return Decode(data)
	}
}

// Send encodes m and writes it as a single text frame.
func (t *WSTransport) Send(m *Message) error {
	if m == nil {
		return nil
	}
	payload, err := Encode(m)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame and closes the underlying connection.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadlineNow())
	return t.conn.Close()
}
