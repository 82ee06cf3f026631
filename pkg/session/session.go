// Package session implements the per-endpoint Session (spec §3, §4.3):
// the opaque handle arena, each session's handle-validity index, and the
// Session record itself.
package session

import "time"

// Session is created by startSession and destroyed by endSession or
// endpoint removal. It owns the set of every handle ever issued to it
// (for validation) and carries a back-reference to the endpoint that
// owns it via EndpointURI.
type Session struct {
	Handle    Handle
	CreatedAt time.Time

	// EndpointURI identifies the owning endpoint, for events
	// (suppressPage/reloadPage) that must be routed back to a specific
	// session's connection.
	EndpointURI string

	store *Store

	// Data is free-form per-session state a backend may attach (e.g. a
	// renderer-specific session context). The dispatcher never inspects
	// it directly.
	Data any
}

// New creates a Session bound to the given owning endpoint URI. The
// session's own handle is issued from arena and immediately recorded in
// its own store isn't meaningful (a session does not hold a handle to
// itself); callers instead use the returned Session's Handle field as
// the resultValue of startSession.
func New(h Handle, endpointURI string, now time.Time) *Session {
	return &Session{
		Handle:      h,
		CreatedAt:   now,
		EndpointURI: endpointURI,
		store:       NewStore(),
	}
}

// AddHandle records that h (of kind k) is now valid for use by this
// session (spec invariant: "Every handle returned to a client is stored
// in that session's all_handles with its kind").
func (s *Session) AddHandle(h Handle, k Kind) {
	s.store.AddHandle(h, k)
}

// FindHandle validates h against this session's handle set.
func (s *Session) FindHandle(h Handle) (Kind, bool) {
	return s.store.FindHandle(h)
}

// RemoveHandle invalidates h for this session, e.g. after a destroy
// operation on the underlying object succeeds.
func (s *Session) RemoveHandle(h Handle) {
	s.store.RemoveHandle(h)
}

// HandleCount returns how many handles are currently valid for this
// session (used by tests and diagnostics).
func (s *Session) HandleCount() int {
	return s.store.Len()
}
