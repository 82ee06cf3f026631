package workspace

import (
	"github.com/hvml/purcmc-go/pkg/ownership"
	"github.com/hvml/purcmc-go/pkg/session"
)

// Workspace is one top-level UI resource tree: a named arena of widgets
// rooted at a single ROOT node (spec §3, §4.4).
type Workspace struct {
	Name   string
	Title  string
	Handle session.Handle

	// widgets holds every widget ever allocated, indexed by id. Each
	// entry is heap-allocated individually (not a []Widget value slice)
	// so that append growing the index slice never invalidates a *Widget
	// handed out earlier.
	widgets []*Widget
	rootID  id

	// PageOwners maps a page's id (its widget's Name, scoped by kind and
	// group the way the source keys page_owners) to the ownership stack
	// tracking which sessions/coroutines currently own it (spec §4.5).
	PageOwners map[string]*ownership.Stack

	// groups indexes widgets eligible to be addressed as a page group
	// target (TABBEDWINDOW/PANEHOST/TABHOST) by name, for resolvePage's
	// "@group" suffix handling.
	groups map[string]id
}

// New creates a workspace named name with an empty ROOT widget.
func New(name, title string, h session.Handle) *Workspace {
	w := &Workspace{
		Name:       name,
		Title:      title,
		Handle:     h,
		PageOwners: make(map[string]*ownership.Stack),
		groups:     make(map[string]id),
	}
	root := w.alloc(KindRoot, "", session.Handle(0))
	w.rootID = root.id
	return w
}

// Root returns the workspace's ROOT widget.
func (w *Workspace) Root() *Widget {
	return w.widget(w.rootID)
}

func (w *Workspace) widget(i id) *Widget {
	if i < 0 || int(i) >= len(w.widgets) {
		return nil
	}
	wg := w.widgets[i]
	if wg.freed {
		return nil
	}
	return wg
}

func (w *Workspace) alloc(kind Kind, name string, h session.Handle) *Widget {
	wg := &Widget{
		id:          id(len(w.widgets)),
		kind:        kind,
		name:        name,
		parent:      noID,
		firstChild:  noID,
		lastChild:   noID,
		prevSibling: noID,
		nextSibling: noID,
		ws:          w,
		Handle:      h,
	}
	w.widgets = append(w.widgets, wg)
	return wg
}

// NewWidget allocates a widget of the given kind and name, not yet
// attached to any parent. Attach it with AppendChild/PrependChild/
// InsertBefore/InsertAfter.
func (w *Workspace) NewWidget(kind Kind, name string, h session.Handle) *Widget {
	wg := w.alloc(kind, name, h)
	if kind.HasPage() {
		wg.Page.Stack = ownership.NewStack()
		w.PageOwners[name] = wg.Page.Stack
	}
	if kind == KindTabbedWindow || kind == KindPaneHost || kind == KindTabHost {
		w.groups[name] = wg.id
	}
	return wg
}

// FindWidget returns the widget named name anywhere in the workspace, or
// nil if none matches. Names are unique within a workspace by
// construction (CreateWidget rejects a duplicate, spec §4.4).
func (w *Workspace) FindWidget(name string) *Widget {
	for _, wg := range w.widgets {
		if !wg.freed && wg.name == name {
			return wg
		}
	}
	return nil
}

// WidgetCount returns the number of live (non-deleted) widgets.
func (w *Workspace) WidgetCount() int {
	n := 0
	for i := range w.widgets {
		if !w.widgets[i].freed {
			n++
		}
	}
	return n
}
