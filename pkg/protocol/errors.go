package protocol

import "errors"

// Codec- and transport-level sentinel errors.
var (
	// ErrBadMessage is returned by Decode when the input cannot be parsed
	// into a well-formed Message.
	ErrBadMessage = errors.New("protocol: bad message")

	// ErrTooLarge is returned when a frame's declared or accumulated
	// payload exceeds the configured limit.
	ErrTooLarge = errors.New("protocol: payload too large")

	// ErrFragmentOutOfOrder is returned when a CONTINUATION frame arrives
	// without a preceding frame opening the fragmented sequence.
	ErrFragmentOutOfOrder = errors.New("protocol: fragment out of order")

	// ErrClosed is returned by transport operations after Close.
	ErrClosed = errors.New("protocol: transport closed")
)
