// Package udom represents the bound document (spec §3): the opaque
// handle a page's loaded eDOM becomes once the backend parses it, and
// the back-pointer used to route element-targeted requests to the page
// that owns it.
package udom

import "github.com/hvml/purcmc-go/pkg/session"

// UDOM is the renderer-side handle for one loaded, bound document. Its
// actual content is entirely backend-defined (spec Non-goal: rendering
// and layout); this type only carries the identity and metadata the
// dispatcher needs to route requests and fire events.
type UDOM struct {
	Handle session.Handle

	// Page identifies the owning page by its widget name, so that
	// element- and udom-scoped requests can be validated and routed
	// without every caller threading a *workspace.Page pointer through.
	Page string

	// Content is backend-owned document state (e.g. a parsed tree
	// opaque to this package). The dispatcher never looks inside it.
	Content any

	// Written marks a document that has received a writeBegin/writeMore/
	// writeEnd streamed update sequence. Nothing in this module sets it:
	// the dispatcher answers those operations NOT_IMPLEMENTED.
	Written bool
}

// New creates a UDOM bound to the given page name.
func New(h session.Handle, page string) *UDOM {
	return &UDOM{Handle: h, Page: page}
}
