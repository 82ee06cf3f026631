// Package backend defines the callback vtable a rendering back-end
// implements to answer PURCMC operations (spec §6, Design Note §9). A
// renderer is paired with exactly one Callbacks value; the dispatcher
// never knows or cares what's behind it.
package backend

import (
	"github.com/hvml/purcmc-go/pkg/ownership"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/udom"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// PlainWindowRequest carries a createPlainWindow request's fields,
// bundled instead of threaded as individual parameters since most
// back-ends only look at a handful of them.
type PlainWindowRequest struct {
	Group    string // page group, empty if ungrouped
	Name     string
	Class    string
	Title    string
	Layout   string
	Toolkit  string // transparent JSON blob of toolkit-specific style
	DataType string
	Data     any
}

// WidgetRequest carries a createWidget request's fields.
type WidgetRequest struct {
	Group    string
	Name     string
	Class    string
	Title    string
	Layout   string
	Toolkit  string
	DataType string
	Data     any
}

// DOMOp identifies which DOM-editing verb a UpdateUDOM call performs.
// All eight verbs (append, prepend, insertBefore, insertAfter, displace,
// update, erase, clear) share this one callback, distinguished only by
// Op, mirroring the source's single update_dom() dispatch helper.
type DOMOp int

const (
	OpAppend DOMOp = iota
	OpPrepend
	OpInsertBefore
	OpInsertAfter
	OpDisplace
	OpUpdate
	OpErase
	OpClear
)

func (o DOMOp) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpInsertBefore:
		return "insertBefore"
	case OpInsertAfter:
		return "insertAfter"
	case OpDisplace:
		return "displace"
	case OpUpdate:
		return "update"
	case OpErase:
		return "erase"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// DOMEdit bundles one DOM-editing verb's parameters, mirroring
// update_dom's (op, element_handle, property, data) call shape.
type DOMEdit struct {
	Op            DOMOp
	ElementHandle session.Handle
	Property      string
	Data          any
}

// Callbacks is a struct of optional closures rather than an interface:
// a back-end leaves a field nil for any operation it does not support,
// and the dispatcher answers NOT_IMPLEMENTED without the back-end
// having to provide a stub method for every slot (Design Note §9).
//
// Every per-request callback (all but Prepare, Cleanup and HandleEvent)
// takes the session that issued the request first, mirroring the
// source's convention of passing pcmcth_session as the first callback
// argument.
type Callbacks struct {
	// Prepare is called once when the renderer starts, after transports
	// are listening but before any endpoint is accepted. Cleanup is
	// called once during shutdown, after every endpoint has been
	// removed.
	Prepare func() error
	Cleanup func()

	// HandleEvent gives the back-end a chance to pump its own event
	// source (e.g. a GUI toolkit's main loop) once per renderer poll
	// tick. It returns true if it did any work; the renderer ignores the
	// result and keeps a fixed poll interval.
	HandleEvent func() bool

	CreateSession func(sess *session.Session) error
	RemoveSession func(sess *session.Session) error

	CreateWorkspace     func(sess *session.Session, name, title string) (*workspace.Workspace, error)
	UpdateWorkspace     func(sess *session.Session, ws *workspace.Workspace, property string, value any) error
	DestroyWorkspace    func(sess *session.Session, ws *workspace.Workspace) error
	FindWorkspace       func(sess *session.Session, name string) (*workspace.Workspace, error)
	GetSpecialWorkspace func(sess *session.Session, which string) (*workspace.Workspace, error)

	SetPageGroups   func(sess *session.Session, ws *workspace.Workspace, groupsHTML string) error
	AddPageGroups   func(sess *session.Session, ws *workspace.Workspace, groupsHTML string) error
	RemovePageGroup func(sess *session.Session, ws *workspace.Workspace, groupID string) error

	FindPage              func(sess *session.Session, ws *workspace.Workspace, pageID string) (*workspace.Widget, error)
	GetSpecialPlainWindow func(sess *session.Session, ws *workspace.Workspace, which string) (*workspace.Widget, error)
	CreatePlainWindow     func(sess *session.Session, ws *workspace.Workspace, req PlainWindowRequest) (*workspace.Widget, error)
	UpdatePlainWindow     func(sess *session.Session, win *workspace.Widget, property string, value any) error
	DestroyPlainWindow    func(sess *session.Session, win *workspace.Widget) error

	CreateWidget     func(sess *session.Session, ws *workspace.Workspace, req WidgetRequest) (*workspace.Widget, error)
	UpdateWidget     func(sess *session.Session, w *workspace.Widget, property string, value any) error
	DestroyWidget    func(sess *session.Session, w *workspace.Widget) error
	GetSpecialWidget func(sess *session.Session, ws *workspace.Workspace, which string) (*workspace.Widget, error)

	LoadEDOM     func(sess *session.Session, page *workspace.Widget, edom any, crtn uint64) (*udom.UDOM, error)
	RegisterCrtn func(sess *session.Session, page *workspace.Widget, crtn uint64) (ownership.Owner, error)
	RevokeCrtn   func(sess *session.Session, page *workspace.Widget, crtn uint64) (ownership.Owner, error)
	UpdateUDOM   func(sess *session.Session, doc *udom.UDOM, edit DOMEdit) error

	CallMethodInUDOM    func(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, method string, arg any) (any, error)
	CallMethodInSession func(sess *session.Session, targetHandle session.Handle, method string, arg any) (any, error)
	GetPropertyInUDOM   func(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, property string) (any, error)
	SetPropertyInUDOM   func(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, property string, value any) (any, error)

	// GetPropertyInSession / SetPropertyInSession answer getProperty and
	// setProperty for any target below DOM (session, workspace, plain
	// window, widget): these objects expose properties directly on the
	// target handle rather than through an element inside a loaded
	// document.
	GetPropertyInSession func(sess *session.Session, targetHandle session.Handle, property string) (any, error)
	SetPropertyInSession func(sess *session.Session, targetHandle session.Handle, property string, value any) (any, error)
}

// SupportsWidgets reports whether this back-end implements plain
// widgets at all. destroyWidget is only meaningful when both the
// constructor and the destructor are present: a back-end that can
// create a widget kind but never destroy it, or vice versa, is
// considered not to support the feature (resolves the ambiguity in
// how the source's NULL-callback check composes across the two
// operations; see DESIGN.md).
func (c *Callbacks) SupportsWidgets() bool {
	return c.CreateWidget != nil && c.DestroyWidget != nil
}
