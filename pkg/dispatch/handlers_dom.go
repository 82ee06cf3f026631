package dispatch

import (
	"strconv"

	"github.com/hvml/purcmc-go/pkg/backend"
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/ownership"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

func (d *Dispatcher) updateDOM(ep *endpoint.Endpoint, req *protocol.Message, op backend.DOMOp) result {
	if req.Target != protocol.TargetDOM {
		return fail(protocol.StatusBadRequest)
	}
	doc, status := d.resolveUDOM(ep.Session, session.Handle(req.TargetValue))
	if status != protocol.StatusOK {
		return fail(status)
	}

	var elementHandle session.Handle
	if req.ElementType == protocol.ElementHandle {
		h, err := session.ParseHandle(req.ElementValue)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		elementHandle = h
	}

	if d.Callbacks.UpdateUDOM == nil {
		return fail(protocol.StatusNotImplemented)
	}
	edit := backend.DOMEdit{Op: op, ElementHandle: elementHandle, Property: req.Property, Data: dataValue(req)}
	if err := d.Callbacks.UpdateUDOM(ep.Session, doc, edit); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(doc.Handle))
}

func (d *Dispatcher) onAppend(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpAppend)
}

func (d *Dispatcher) onPrepend(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpPrepend)
}

func (d *Dispatcher) onInsertBefore(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpInsertBefore)
}

func (d *Dispatcher) onInsertAfter(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpInsertAfter)
}

func (d *Dispatcher) onDisplace(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpDisplace)
}

func (d *Dispatcher) onUpdate(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpUpdate)
}

func (d *Dispatcher) onErase(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpErase)
}

func (d *Dispatcher) onClear(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.updateDOM(ep, req, backend.OpClear)
}

// onLoad implements load: installs an eDOM in a page and registers the
// loading coroutine as its first owner.
func (d *Dispatcher) onLoad(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.LoadEDOM == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetPlainWindow && req.Target != protocol.TargetWidget {
		return fail(protocol.StatusBadRequest)
	}
	page, status := d.resolvePage(ep.Session, session.Handle(req.TargetValue))
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	crtn, err := strconv.ParseUint(req.ElementValue, 16, 64)
	if err != nil || crtn == 0 {
		return fail(protocol.StatusBadRequest)
	}

	doc, err := d.Callbacks.LoadEDOM(ep.Session, page, dataValue(req), crtn)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	ep.Session.AddHandle(doc.Handle, session.KindUDOM)
	return ok(uint64(doc.Handle))
}

// onRegister implements register: adds a coroutine as an additional
// owner of an already-loaded page, suppressing whichever owner was on
// top before.
func (d *Dispatcher) onRegister(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.registerOrRevoke(ep, req, d.Callbacks.RegisterCrtn, "suppressPage")
}

// onRevoke implements revoke: removes a coroutine's ownership of a
// page, returning the owner (if any) that should now reload the page.
func (d *Dispatcher) onRevoke(ep *endpoint.Endpoint, req *protocol.Message) result {
	return d.registerOrRevoke(ep, req, d.Callbacks.RevokeCrtn, "reloadPage")
}

// registerOrRevoke shares register/revoke's validation and the
// same-session/cross-session split for the owner the callback hands
// back (spec §4.5, §4.7): a same-session owner is folded into
// resultValue; a different-session owner becomes a pending
// suppressPage/reloadPage event for the renderer to deliver to that
// owner's endpoint.
func (d *Dispatcher) registerOrRevoke(ep *endpoint.Endpoint, req *protocol.Message, fn func(*session.Session, *workspace.Widget, uint64) (ownership.Owner, error), eventName string) result {
	if fn == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetPlainWindow && req.Target != protocol.TargetWidget {
		return fail(protocol.StatusBadRequest)
	}
	page, status := d.resolvePage(ep.Session, session.Handle(req.TargetValue))
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	crtn, err := strconv.ParseUint(req.ElementValue, 16, 64)
	if err != nil || crtn == 0 {
		return fail(protocol.StatusBadRequest)
	}

	owner, err := fn(ep.Session, page, crtn)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	if owner.Zero() {
		return ok(0)
	}
	if owner.Session == ep.Session {
		return ok(uint64(owner.Coro))
	}

	r := ok(0)
	r.event = &protocol.Message{
		Type:         protocol.TypeEvent,
		Target:       req.Target,
		TargetValue:  req.TargetValue,
		EventName:    eventName,
		ElementType:  protocol.ElementHandle,
		ElementValue: session.Handle(owner.Coro).String(),
		DataType:     protocol.DataVoid,
		SourceURI:    ep.URI,
	}
	r.eventURI = owner.Session.EndpointURI
	return r
}

// onCallMethod implements callMethod: DOM targets dispatch to
// CallMethodInUDOM, everything above DOM (session, workspace, plain
// window, widget) dispatches to CallMethodInSession.
func (d *Dispatcher) onCallMethod(ep *endpoint.Endpoint, req *protocol.Message) result {
	if req.DataType != protocol.DataJSON {
		return fail(protocol.StatusBadRequest)
	}
	obj := jsonObject(req)
	method := stringField(obj, "method")
	if method == "" {
		return fail(protocol.StatusBadRequest)
	}
	arg := obj["arg"]

	if req.Target == protocol.TargetDOM {
		if d.Callbacks.CallMethodInUDOM == nil {
			return fail(protocol.StatusNotImplemented)
		}
		doc, status := d.resolveUDOM(ep.Session, session.Handle(req.TargetValue))
		if status != protocol.StatusOK {
			return fail(status)
		}
		if req.ElementType != protocol.ElementHandle {
			return fail(protocol.StatusBadRequest)
		}
		h, err := session.ParseHandle(req.ElementValue)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		res, err := d.Callbacks.CallMethodInUDOM(ep.Session, doc, h, method, arg)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}

	if req.Target.LessThanDOM() {
		if d.Callbacks.CallMethodInSession == nil {
			return fail(protocol.StatusNotImplemented)
		}
		res, err := d.Callbacks.CallMethodInSession(ep.Session, session.Handle(req.TargetValue), method, arg)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}
	return fail(protocol.StatusBadRequest)
}

// onGetProperty implements getProperty, sharing callMethod's DOM/session
// target split.
func (d *Dispatcher) onGetProperty(ep *endpoint.Endpoint, req *protocol.Message) result {
	if req.Property == "" {
		return fail(protocol.StatusBadRequest)
	}

	if req.Target == protocol.TargetDOM {
		if d.Callbacks.GetPropertyInUDOM == nil {
			return fail(protocol.StatusNotImplemented)
		}
		doc, status := d.resolveUDOM(ep.Session, session.Handle(req.TargetValue))
		if status != protocol.StatusOK {
			return fail(status)
		}
		if req.ElementType != protocol.ElementHandle {
			return fail(protocol.StatusBadRequest)
		}
		h, err := session.ParseHandle(req.ElementValue)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		res, err := d.Callbacks.GetPropertyInUDOM(ep.Session, doc, h, req.Property)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}

	if req.Target.LessThanDOM() {
		if d.Callbacks.GetPropertyInSession == nil {
			return fail(protocol.StatusNotImplemented)
		}
		res, err := d.Callbacks.GetPropertyInSession(ep.Session, session.Handle(req.TargetValue), req.Property)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}
	return fail(protocol.StatusBadRequest)
}

// onSetProperty implements setProperty.
func (d *Dispatcher) onSetProperty(ep *endpoint.Endpoint, req *protocol.Message) result {
	if req.DataType == protocol.DataVoid {
		return fail(protocol.StatusBadRequest)
	}
	if req.Property == "" {
		return fail(protocol.StatusBadRequest)
	}

	if req.Target == protocol.TargetDOM {
		if d.Callbacks.SetPropertyInUDOM == nil {
			return fail(protocol.StatusNotImplemented)
		}
		doc, status := d.resolveUDOM(ep.Session, session.Handle(req.TargetValue))
		if status != protocol.StatusOK {
			return fail(status)
		}
		if req.ElementType != protocol.ElementHandle {
			return fail(protocol.StatusBadRequest)
		}
		h, err := session.ParseHandle(req.ElementValue)
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		res, err := d.Callbacks.SetPropertyInUDOM(ep.Session, doc, h, req.Property, dataValue(req))
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}

	if req.Target.LessThanDOM() {
		if d.Callbacks.SetPropertyInSession == nil {
			return fail(protocol.StatusNotImplemented)
		}
		res, err := d.Callbacks.SetPropertyInSession(ep.Session, session.Handle(req.TargetValue), req.Property, dataValue(req))
		if err != nil {
			return fail(protocol.StatusBadRequest)
		}
		return jsonResult(req.TargetValue, res)
	}
	return fail(protocol.StatusBadRequest)
}

// jsonResult renders a callMethod/getProperty/setProperty result: VOID
// when the back-end returned nothing, JSON otherwise.
func jsonResult(targetValue uint64, res any) result {
	if res == nil {
		return result{status: protocol.StatusOK, resultValue: targetValue, dataType: protocol.DataVoid}
	}
	data, err := protocol.EncodeVariant(res)
	if err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return result{status: protocol.StatusOK, resultValue: targetValue, dataType: protocol.DataJSON, data: data}
}
