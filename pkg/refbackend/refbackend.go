// Package refbackend is a fully-wired, in-memory implementation of
// pkg/backend.Callbacks, used for conformance testing and as the
// default back-end when no real rendering toolkit is configured. It
// keeps no UI of its own: every "widget" and "page" lives purely as
// pkg/workspace state, and loaded documents are opaque JSON values.
package refbackend

import (
	"sync"

	"github.com/hvml/purcmc-go/pkg/backend"
	"github.com/hvml/purcmc-go/pkg/ownership"
	"github.com/hvml/purcmc-go/pkg/perr"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/udom"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// Backend is the reference back-end's state: one workspace manager
// shared across every session, plus the handle arena used to hand out
// stable numeric handles for workspaces, windows, widgets, and
// documents.
type Backend struct {
	mu       sync.Mutex
	manager  *workspace.Manager
	arena    *session.Arena
	sessions map[*session.Session]bool
}

// New creates an empty reference back-end with one "default" workspace,
// matching the source's assumption that get_special_workspace(_default)
// always resolves to something once a renderer has started. arena is
// shared with the dispatcher that will route requests to this back-end:
// handles this back-end mints are only meaningful if the dispatcher
// resolves them through the same arena.
func New(arena *session.Arena) *Backend {
	b := &Backend{
		manager:  workspace.NewManager(),
		arena:    arena,
		sessions: make(map[*session.Session]bool),
	}
	def, _ := b.manager.Create("default", "Default Workspace", 0)
	def.Handle = b.arena.Issue(def)
	return b
}

// Manager exposes the workspace manager for read-only introspection
// (pkg/httpapi's /debug/workspaces view).
func (b *Backend) Manager() *workspace.Manager { return b.manager }

// Callbacks returns the backend.Callbacks vtable bound to this state.
func (b *Backend) Callbacks() *backend.Callbacks {
	return &backend.Callbacks{
		Prepare:     func() error { return nil },
		Cleanup:     func() {},
		HandleEvent: func() bool { return false },

		CreateSession: b.createSession,
		RemoveSession: b.removeSession,

		CreateWorkspace:     b.createWorkspace,
		UpdateWorkspace:     b.updateWorkspace,
		DestroyWorkspace:    b.destroyWorkspace,
		FindWorkspace:       b.findWorkspace,
		GetSpecialWorkspace: b.getSpecialWorkspace,

		SetPageGroups:   b.setPageGroups,
		AddPageGroups:   b.addPageGroups,
		RemovePageGroup: b.removePageGroup,

		FindPage:              b.findPage,
		GetSpecialPlainWindow: b.getSpecialPlainWindow,
		CreatePlainWindow:     b.createPlainWindow,
		UpdatePlainWindow:     b.updatePlainWindow,
		DestroyPlainWindow:    b.destroyPlainWindow,

		CreateWidget:     b.createWidget,
		UpdateWidget:     b.updateWidget,
		DestroyWidget:    b.destroyWidget,
		GetSpecialWidget: b.getSpecialWidget,

		LoadEDOM:     b.loadEDOM,
		RegisterCrtn: b.registerCrtn,
		RevokeCrtn:   b.revokeCrtn,
		UpdateUDOM:   b.updateUDOM,

		CallMethodInUDOM:    b.callMethodInUDOM,
		CallMethodInSession: b.callMethodInSession,
		GetPropertyInUDOM:   b.getPropertyInUDOM,
		SetPropertyInUDOM:   b.setPropertyInUDOM,

		GetPropertyInSession: b.getPropertyInSession,
		SetPropertyInSession: b.setPropertyInSession,
	}
}

func (b *Backend) createSession(sess *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sess] = true
	return nil
}

func (b *Backend) removeSession(sess *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sess)
	return nil
}

func (b *Backend) createWorkspace(sess *session.Session, name, title string) (*workspace.Workspace, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ws, err := b.manager.Create(name, title, 0)
	if err != nil {
		return nil, err
	}
	ws.Handle = b.arena.Issue(ws)
	sess.AddHandle(ws.Handle, session.KindWorkspace)
	return ws, nil
}

func (b *Backend) updateWorkspace(sess *session.Session, ws *workspace.Workspace, property string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if property == "name" {
		if s, ok := value.(string); ok {
			ws.Title = s
		}
	}
	return nil
}

func (b *Backend) destroyWorkspace(sess *session.Session, ws *workspace.Workspace) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manager.Destroy(ws)
	return nil
}

func (b *Backend) findWorkspace(sess *session.Session, name string) (*workspace.Workspace, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.manager.Resolve(name)
}

func (b *Backend) getSpecialWorkspace(sess *session.Session, which string) (*workspace.Workspace, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.manager.Resolve(which)
}

func (b *Backend) setPageGroups(sess *session.Session, ws *workspace.Workspace, groupsHTML string) error {
	return nil
}

func (b *Backend) addPageGroups(sess *session.Session, ws *workspace.Workspace, groupsHTML string) error {
	return nil
}

func (b *Backend) removePageGroup(sess *session.Session, ws *workspace.Workspace, groupID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	wg := ws.FindWidget(groupID)
	if wg == nil {
		return perr.Newf(perr.KindNotFound, "page group %q not found", groupID)
	}
	ws.DestroyWidget(wg)
	return nil
}

func (b *Backend) findPage(sess *session.Session, ws *workspace.Workspace, pageID string) (*workspace.Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ws.ResolvePage(pageID)
}

func (b *Backend) getSpecialPlainWindow(sess *session.Session, ws *workspace.Workspace, which string) (*workspace.Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ws.ResolvePage(which)
}

func (b *Backend) createPlainWindow(sess *session.Session, ws *workspace.Workspace, req backend.PlainWindowRequest) (*workspace.Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := req.Name
	if existing := ws.FindWidget(name); existing != nil {
		return nil, perr.Newf(perr.KindConflict, "plain window %q already exists", name)
	}
	win := ws.NewWidget(workspace.KindPlainWindow, name, 0)
	win.Handle = b.arena.Issue(win)
	win.SetTitle(req.Title)
	ws.AppendChild(ws.Root(), win)
	sess.AddHandle(win.Handle, session.KindPlainWin)
	return win, nil
}

func (b *Backend) updatePlainWindow(sess *session.Session, win *workspace.Widget, property string, value any) error {
	if property == "title" {
		if s, ok := value.(string); ok {
			win.SetTitle(s)
		}
	}
	return nil
}

func (b *Backend) destroyPlainWindow(sess *session.Session, win *workspace.Widget) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	win.Workspace().DestroyWidget(win)
	sess.RemoveHandle(win.Handle)
	b.arena.Release(win.Handle)
	return nil
}

func (b *Backend) createWidget(sess *session.Session, ws *workspace.Workspace, req backend.WidgetRequest) (*workspace.Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing := ws.FindWidget(req.Name); existing != nil {
		return nil, perr.Newf(perr.KindConflict, "widget %q already exists", req.Name)
	}
	parent := ws.Root()
	if req.Group != "" {
		if g := ws.FindWidget(req.Group); g != nil {
			parent = g
		}
	}
	w := ws.NewWidget(workspace.KindTabbedPage, req.Name, 0)
	w.Handle = b.arena.Issue(w)
	w.SetTitle(req.Title)
	ws.AppendChild(parent, w)
	sess.AddHandle(w.Handle, session.KindWidget)
	return w, nil
}

func (b *Backend) updateWidget(sess *session.Session, w *workspace.Widget, property string, value any) error {
	if property == "title" {
		if s, ok := value.(string); ok {
			w.SetTitle(s)
		}
	}
	return nil
}

func (b *Backend) destroyWidget(sess *session.Session, w *workspace.Widget) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Workspace().DestroyWidget(w)
	sess.RemoveHandle(w.Handle)
	b.arena.Release(w.Handle)
	return nil
}

func (b *Backend) getSpecialWidget(sess *session.Session, ws *workspace.Workspace, which string) (*workspace.Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ws.ResolvePage(which)
}

func (b *Backend) loadEDOM(sess *session.Session, page *workspace.Widget, edom any, crtn uint64) (*udom.UDOM, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := udom.New(0, page.Name())
	doc.Content = edom
	doc.Handle = b.arena.Issue(doc)
	page.Page.UDOM = doc
	sess.AddHandle(doc.Handle, session.KindUDOM)

	page.Page.Stack.Register(ownership.Owner{Session: sess, Coro: crtn})
	return doc, nil
}

func (b *Backend) registerCrtn(sess *session.Session, page *workspace.Widget, crtn uint64) (ownership.Owner, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	suppressed, _ := page.Page.Stack.Register(ownership.Owner{Session: sess, Coro: crtn})
	return suppressed, nil
}

func (b *Backend) revokeCrtn(sess *session.Session, page *workspace.Widget, crtn uint64) (ownership.Owner, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	toReload, _ := page.Page.Stack.Revoke(ownership.Owner{Session: sess, Coro: crtn})
	return toReload, nil
}

func (b *Backend) updateUDOM(sess *session.Session, doc *udom.UDOM, edit backend.DOMEdit) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch edit.Op {
	case backend.OpClear:
		doc.Content = nil
	case backend.OpErase:
		doc.Content = nil
	default:
		doc.Content = edit.Data
	}
	return nil
}

func (b *Backend) callMethodInUDOM(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, method string, arg any) (any, error) {
	return nil, nil
}

func (b *Backend) callMethodInSession(sess *session.Session, elementHandle session.Handle, method string, arg any) (any, error) {
	return nil, nil
}

func (b *Backend) getPropertyInUDOM(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, property string) (any, error) {
	return nil, nil
}

func (b *Backend) setPropertyInUDOM(sess *session.Session, doc *udom.UDOM, elementHandle session.Handle, property string, value any) (any, error) {
	return value, nil
}

func (b *Backend) getPropertyInSession(sess *session.Session, targetHandle session.Handle, property string) (any, error) {
	return nil, nil
}

func (b *Backend) setPropertyInSession(sess *session.Session, targetHandle session.Handle, property string, value any) (any, error) {
	return value, nil
}
