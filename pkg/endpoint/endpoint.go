// Package endpoint implements the Endpoint Registry (spec §4.2): tracking
// connected clients, mapping them by URI and by last-seen time, and
// sweeping silent ones.
package endpoint

import (
	"strings"
	"time"

	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
)

// Endpoint is one connected client (spec §3).
type Endpoint struct {
	URI       string
	CreatedAt time.Time
	LastSeen  time.Time // t_living

	// Transport is how the renderer reaches this endpoint: sends land
	// here, and the event loop's Recv side is keyed by the same value.
	Transport protocol.Transport

	// Session is nil until startSession succeeds for this endpoint.
	Session *session.Session

	// index is this endpoint's position in the registry's living-time
	// ordering, maintained internally by Registry; callers must not read
	// or write it.
	index int
}

// Cause records why an endpoint was removed, for logging and for the
// backend's remove_session callback.
type Cause uint8

const (
	CauseExplicitEndSession Cause = iota
	CauseDisconnect
	CauseNoResponding
	CauseShutdown
)

// AppName extracts the app component from a URI of the form
// "scheme://host/app/runner" (spec §3). Page identifiers are composed
// with this name before they become page_owners keys (spec §4.6); an
// unparsable URI yields "".
func AppName(uri string) string {
	i := strings.Index(uri, "://")
	if i < 0 {
		return ""
	}
	parts := strings.SplitN(uri[i+3:], "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// String returns the cause's name.
func (c Cause) String() string {
	switch c {
	case CauseExplicitEndSession:
		return "EXPLICIT_END_SESSION"
	case CauseDisconnect:
		return "DISCONNECT"
	case CauseNoResponding:
		return "NO_RESPONDING"
	case CauseShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
