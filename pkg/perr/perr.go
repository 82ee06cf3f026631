// Package perr defines the error kinds and status-code mapping used
// throughout the PURCMC renderer core.
package perr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by where it originated and how it should
// propagate (see spec §7).
type Kind uint8

const (
	KindTransportIO Kind = iota
	KindPeerClosed
	KindOutOfMemory
	KindTooLarge
	KindBadMessage
	KindNotImplemented
	KindInvalidValue
	KindDuplicated
	KindAuthFailed
	KindTimeout
	KindUnknownRequest
	KindUnknownEvent
	KindProtocolMismatch
	KindInternal
	KindNotFound
	KindBadRequest
	KindForbidden
	KindConflict
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindTransportIO:
		return "TransportIO"
	case KindPeerClosed:
		return "PeerClosed"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindTooLarge:
		return "TooLarge"
	case KindBadMessage:
		return "BadMessage"
	case KindNotImplemented:
		return "NotImplemented"
	case KindInvalidValue:
		return "InvalidValue"
	case KindDuplicated:
		return "Duplicated"
	case KindAuthFailed:
		return "AuthFailed"
	case KindTimeout:
		return "Timeout"
	case KindUnknownRequest:
		return "UnknownRequest"
	case KindUnknownEvent:
		return "UnknownEvent"
	case KindProtocolMismatch:
		return "ProtocolMismatch"
	case KindInternal:
		return "Internal"
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind and an operation label,
// in the style of the server package's SessionError/HandlerError.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	op := e.Op
	if op == "" {
		op = "purcmc"
	} else {
		op = "purcmc: " + op
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", op, e.Kind, e.Err)
}

// Unwrap returns the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new *Error with the given kind, operation label, and cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Newf creates a new *Error with a formatted message and no op label,
// for the domain-validation call sites (workspace/session/dispatch
// lookups) that want a quick, descriptive failure rather than a wrapped
// transport-level cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err (or anything it wraps) is a *Error of kind k.
func Is(err error, k Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == k
	}
	return false
}
