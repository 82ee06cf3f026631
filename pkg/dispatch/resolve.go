package dispatch

import (
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/udom"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// resolveWorkspace validates h against sess's handle set and resolves it
// to a *workspace.Workspace. A handle missing from the session's store
// fails NOT_FOUND; a handle present but of the wrong kind fails
// BAD_REQUEST (spec §4.3).
func (d *Dispatcher) resolveWorkspace(sess *session.Session, h session.Handle) (*workspace.Workspace, protocol.StatusCode) {
	kind, ok := sess.FindHandle(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	if kind != session.KindWorkspace {
		return nil, protocol.StatusBadRequest
	}
	obj, ok := d.Arena.Resolve(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	ws, ok := obj.(*workspace.Workspace)
	if !ok {
		return nil, protocol.StatusInternalServerError
	}
	return ws, protocol.StatusOK
}

// resolvePage validates h as a PLAINWIN or WIDGET handle and resolves it
// to the underlying *workspace.Widget (which embeds the page).
func (d *Dispatcher) resolvePage(sess *session.Session, h session.Handle) (*workspace.Widget, protocol.StatusCode) {
	kind, ok := sess.FindHandle(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	if kind != session.KindPlainWin && kind != session.KindWidget {
		return nil, protocol.StatusBadRequest
	}
	obj, ok := d.Arena.Resolve(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	wg, ok := obj.(*workspace.Widget)
	if !ok {
		return nil, protocol.StatusInternalServerError
	}
	return wg, protocol.StatusOK
}

// resolveUDOM validates h as a UDOM handle and resolves it.
func (d *Dispatcher) resolveUDOM(sess *session.Session, h session.Handle) (*udom.UDOM, protocol.StatusCode) {
	kind, ok := sess.FindHandle(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	if kind != session.KindUDOM {
		return nil, protocol.StatusBadRequest
	}
	obj, ok := d.Arena.Resolve(h)
	if !ok {
		return nil, protocol.StatusNotFound
	}
	doc, ok := obj.(*udom.UDOM)
	if !ok {
		return nil, protocol.StatusInternalServerError
	}
	return doc, protocol.StatusOK
}
