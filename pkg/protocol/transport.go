package protocol

// Transport is the abstraction the event loop (pkg/renderer) polls for
// inbound messages and uses to send responses/events, independent of
// whether the underlying connection is a Unix stream socket, a
// WebSocket, or an in-process queue (spec §4.1).
type Transport interface {
	// Recv blocks until a Message is available, the transport is closed,
	// or an error occurs. It returns ErrClosed after Close.
	Recv() (*Message, error)

	// Send writes a Message to the peer. Implementations must preserve
	// per-sender ordering (spec §5): responses to one endpoint are
	// emitted in the order their requests arrived.
	Send(*Message) error

	// Close releases transport resources and unblocks any pending Recv.
	Close() error
}
