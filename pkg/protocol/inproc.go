package protocol

import "sync"

// InProcTransport implements Transport as a pair of buffered channels,
// for same-process renderer-instance communication and for tests (spec
// §4.1: "In-process: direct queue of message records (no serialization)").
type InProcTransport struct {
	recv chan *Message
	send chan *Message

	closeOnce sync.Once
	closed    chan struct{}
}

// NewInProcPair creates two linked transports: whatever is sent on one
// is received on the other.
func NewInProcPair(buffer int) (a, b *InProcTransport) {
	ab := make(chan *Message, buffer)
	ba := make(chan *Message, buffer)
	a = &InProcTransport{recv: ba, send: ab, closed: make(chan struct{})}
	b = &InProcTransport{recv: ab, send: ba, closed: make(chan struct{})}
	return a, b
}

// Recv blocks until a message arrives or the transport closes.
func (t *InProcTransport) Recv() (*Message, error) {
	select {
	case m, ok := <-t.recv:
		if !ok {
			return nil, ErrClosed
		}
		return m, nil
	case <-t.closed:
		return nil, ErrClosed
	}
}

// Send enqueues m for the peer. No copy is made; callers must not mutate
// m after sending.
func (t *InProcTransport) Send(m *Message) error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}
	select {
	case t.send <- m:
		return nil
	case <-t.closed:
		return ErrClosed
	}
}

// Close unblocks any pending Recv/Send on this side.
func (t *InProcTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}
