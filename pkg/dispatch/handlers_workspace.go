package dispatch

import (
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// onCreateWorkspace implements createWorkspace. The element names the
// workspace (a literal name or one of the reserved names), per the
// "use element for the name of workspace" convention.
func (d *Dispatcher) onCreateWorkspace(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.CreateWorkspace == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.ElementType != protocol.ElementID || req.ElementValue == "" {
		return fail(protocol.StatusBadRequest)
	}

	name := req.ElementValue
	if isReserved(name) {
		if d.Callbacks.GetSpecialWorkspace == nil {
			return fail(protocol.StatusNotImplemented)
		}
		ws, err := d.Callbacks.GetSpecialWorkspace(ep.Session, name)
		if err != nil || ws == nil {
			return fail(protocol.StatusNotFound)
		}
		return finishWorkspace(ep, ws)
	}

	if d.Callbacks.FindWorkspace != nil {
		if ws, err := d.Callbacks.FindWorkspace(ep.Session, name); err == nil && ws != nil {
			return finishWorkspace(ep, ws)
		}
	}

	var title string
	if req.DataType == protocol.DataJSON {
		if obj, err := req.JSONData(); err == nil {
			if m, ok := obj.(map[string]any); ok {
				if t, ok := m["title"].(string); ok {
					title = t
				}
			}
		}
	}

	ws, err := d.Callbacks.CreateWorkspace(ep.Session, name, title)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	return finishWorkspace(ep, ws)
}

func finishWorkspace(ep *endpoint.Endpoint, ws *workspace.Workspace) result {
	if _, ok := ep.Session.FindHandle(ws.Handle); !ok {
		ep.Session.AddHandle(ws.Handle, session.KindWorkspace)
	}
	return ok(uint64(ws.Handle))
}

// onUpdateWorkspace implements updateWorkspace. Both create_workspace
// and update_workspace must be present, matching the fixed (non-
// inverted) NULL-check behavior applied throughout this dispatcher;
// see DESIGN.md for the source bug this corrects.
func (d *Dispatcher) onUpdateWorkspace(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.CreateWorkspace == nil || d.Callbacks.UpdateWorkspace == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	ws, status := d.resolveWorkspace(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.Property == "" || req.DataType != protocol.DataPlain {
		return fail(protocol.StatusBadRequest)
	}
	if err := d.Callbacks.UpdateWorkspace(ep.Session, ws, req.Property, string(req.Data)); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(ws.Handle))
}

// onDestroyWorkspace implements destroyWorkspace.
func (d *Dispatcher) onDestroyWorkspace(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.CreateWorkspace == nil || d.Callbacks.DestroyWorkspace == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	ws, status := d.resolveWorkspace(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if err := d.Callbacks.DestroyWorkspace(ep.Session, ws); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	ep.Session.RemoveHandle(ws.Handle)
	d.Arena.Release(ws.Handle)
	return ok(0)
}

// onAddPageGroups / onSetPageGroups / onRemovePageGroup implement the
// page-group CRUD operations. Group layout markup is opaque HTML passed
// straight through to the back-end (spec Non-goal: rendering).
// add/removePageGroup additionally require set_page_groups to be
// present, matching the source's "the group content must itself be
// settable before it can be added to or pruned" precondition.
func (d *Dispatcher) onAddPageGroups(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.SetPageGroups == nil {
		return fail(protocol.StatusNotImplemented)
	}
	return d.pageGroupOp(ep, req, d.Callbacks.AddPageGroups)
}

func (d *Dispatcher) onSetPageGroups(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.pageGroupOp(ep, req, d.Callbacks.SetPageGroups)
}

func (d *Dispatcher) pageGroupOp(ep *endpoint.Endpoint, req *protocol.Message, fn func(*session.Session, *workspace.Workspace, string) error) result {
	if fn == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	ws, status := d.resolveWorkspace(ep.Session, session.Handle(req.TargetValue))
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.DataType != protocol.DataHTML {
		return fail(protocol.StatusBadRequest)
	}
	if err := fn(ep.Session, ws, string(req.Data)); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(ws.Handle))
}

func (d *Dispatcher) onRemovePageGroup(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.SetPageGroups == nil || d.Callbacks.RemovePageGroup == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	ws, status := d.resolveWorkspace(ep.Session, session.Handle(req.TargetValue))
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.ElementType != protocol.ElementID || req.ElementValue == "" {
		return fail(protocol.StatusBadRequest)
	}
	if err := d.Callbacks.RemovePageGroup(ep.Session, ws, req.ElementValue); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(ws.Handle))
}

func isReserved(name string) bool {
	switch name {
	case "_default", "_active", "_first", "_last":
		return true
	default:
		return false
	}
}
