// Package workspace implements the hierarchical UI resource model (spec
// §3, §4.4): workspaces, the widget tree (plain windows, tabbed windows,
// containers, panes, tabs), and the page each widget's content area
// embeds.
package workspace

import (
	"github.com/hvml/purcmc-go/pkg/ownership"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/udom"
)

// Kind identifies a widget's role in the tree (spec §3).
type Kind uint8

const (
	KindRoot Kind = iota
	KindPlainWindow
	KindTabbedWindow
	KindContainer
	KindPaneHost
	KindTabHost
	KindPanedPage
	KindTabbedPage
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "ROOT"
	case KindPlainWindow:
		return "PLAINWINDOW"
	case KindTabbedWindow:
		return "TABBEDWINDOW"
	case KindContainer:
		return "CONTAINER"
	case KindPaneHost:
		return "PANEHOST"
	case KindTabHost:
		return "TABHOST"
	case KindPanedPage:
		return "PANEDPAGE"
	case KindTabbedPage:
		return "TABBEDPAGE"
	default:
		return "UNKNOWN"
	}
}

// HasPage reports whether widgets of this kind carry a renderable Page
// (plain windows and the leaf page kinds do; containers and hosts are
// pure layout nodes).
func (k Kind) HasPage() bool {
	switch k {
	case KindPlainWindow, KindPanedPage, KindTabbedPage:
		return true
	default:
		return false
	}
}

// id is an arena index into a Workspace's widget slice. -1 denotes "no
// widget". An arena+index representation (rather than heap pointers with
// doubly-linked parent/sibling/child fields pointing at each other)
// keeps the whole tree inside one owning Workspace and makes deep-delete
// a simple post-order walk over indices (Design Note §9).
type id int32

const noID id = -1

// Widget is a node in the workspace's widget tree.
type Widget struct {
	id   id
	kind Kind
	name string

	title string

	parent      id
	firstChild  id
	lastChild   id
	prevSibling id
	nextSibling id

	// ws is the arena this widget lives in. The source recovers a
	// widget's owning workspace by walking to the tree root and reading
	// its back-pointer; since every widget here is already born from one
	// Workspace's arena, each keeps that pointer directly rather than
	// re-deriving it on every call (Design Note §9).
	ws *Workspace

	Handle session.Handle

	// Page is the widget's client area. Zero value for layout-only kinds
	// (containers, hosts) whose Kind.HasPage() is false.
	Page Page

	freed bool
}

// HandleValue returns this widget's stable handle.
func (w *Widget) HandleValue() session.Handle { return w.Handle }

// Kind returns the widget's kind.
func (w *Widget) Kind() Kind { return w.kind }

// Name returns the widget's name (unique within its app/group scope).
func (w *Widget) Name() string { return w.name }

// Title returns the widget's display title.
func (w *Widget) Title() string { return w.title }

// SetTitle updates the widget's display title.
func (w *Widget) SetTitle(t string) { w.title = t }

// Parent returns the widget's parent, or nil for a root widget.
func (w *Widget) Parent() *Widget {
	if w.parent == noID {
		return nil
	}
	return w.ws.widget(w.parent)
}

// FirstChild returns the widget's first child, or nil if it has none.
func (w *Widget) FirstChild() *Widget {
	if w.firstChild == noID {
		return nil
	}
	return w.ws.widget(w.firstChild)
}

// NextSibling returns the widget immediately after w under the same
// parent, or nil if w is the last child.
func (w *Widget) NextSibling() *Widget {
	if w.nextSibling == noID {
		return nil
	}
	return w.ws.widget(w.nextSibling)
}

// PrevSibling returns the widget immediately before w under the same
// parent, or nil if w is the first child.
func (w *Widget) PrevSibling() *Widget {
	if w.prevSibling == noID {
		return nil
	}
	return w.ws.widget(w.prevSibling)
}

// GetRoot returns the nearest ancestor of w with no parent (spec §4.4).
func (w *Widget) GetRoot() *Widget {
	cur := w
	for cur.parent != noID {
		cur = w.ws.widget(cur.parent)
	}
	return cur
}

// Workspace returns the workspace that owns w.
func (w *Widget) Workspace() *Workspace {
	return w.ws
}

// Page is the client area embedded in a widget (spec §3).
type Page struct {
	// Stack is the page-ownership stack keyed by this page's id in the
	// owning workspace's PageOwners map (spec §4.5).
	Stack *ownership.Stack

	// UDOM is the currently bound document, or nil if none has been
	// loaded yet.
	UDOM *udom.UDOM
}
