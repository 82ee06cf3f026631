package dispatch

import (
	"strings"

	"github.com/hvml/purcmc-go/pkg/backend"
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// parseNameGroup splits an elementValue of the form "name[@group]", the
// convention createPlainWindow and createWidget share (spec §4.4).
func parseNameGroup(nameGroup string) (name, group string) {
	if at := strings.IndexByte(nameGroup, '@'); at >= 0 {
		return nameGroup[:at], nameGroup[at+1:]
	}
	return nameGroup, ""
}

func jsonObject(req *protocol.Message) map[string]any {
	if req.DataType != protocol.DataJSON {
		return nil
	}
	v, err := req.JSONData()
	if err != nil {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// dataValue renders a message's Data according to its DataType: a
// decoded JSON variant for DataJSON, the raw text for DataPlain/DataHTML,
// nil for DataVoid.
func dataValue(req *protocol.Message) any {
	switch req.DataType {
	case protocol.DataJSON:
		v, err := req.JSONData()
		if err != nil {
			return nil
		}
		return v
	case protocol.DataPlain, protocol.DataHTML:
		return string(req.Data)
	default:
		return nil
	}
}

// onCreatePlainWindow implements createPlainWindow (spec §8 S2).
func (d *Dispatcher) onCreatePlainWindow(ep *endpoint.Endpoint, req *protocol.Message) result {
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
	name, group := parseNameGroup(req.ElementValue)

	if isReserved(name) {
		if d.Callbacks.GetSpecialPlainWindow == nil {
			return fail(protocol.StatusNotImplemented)
		}
		win, err := d.Callbacks.GetSpecialPlainWindow(ep.Session, ws, name)
		if err != nil || win == nil {
			return fail(protocol.StatusNotFound)
		}
		return finishPage(ep, win, session.KindPlainWin)
	}

	pageID := endpoint.AppName(ep.URI) + "/" + name
	if d.Callbacks.FindPage != nil {
		if win, err := d.Callbacks.FindPage(ep.Session, ws, pageID); err == nil && win != nil {
			return finishPage(ep, win, session.KindPlainWin)
		}
	}

	if d.Callbacks.CreatePlainWindow == nil {
		return fail(protocol.StatusNotImplemented)
	}
	m := jsonObject(req)
	win, err := d.Callbacks.CreatePlainWindow(ep.Session, ws, backend.PlainWindowRequest{
		Group:    group,
		Name:     pageID,
		Class:    stringField(m, "class"),
		Title:    stringField(m, "title"),
		Layout:   stringField(m, "layoutStyle"),
		DataType: req.DataType.String(),
		Data:     m,
	})
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	return finishPage(ep, win, session.KindPlainWin)
}

func finishPage(ep *endpoint.Endpoint, w *workspace.Widget, kind session.Kind) result {
	if _, ok := ep.Session.FindHandle(w.Handle); !ok {
		ep.Session.AddHandle(w.Handle, kind)
	}
	return ok(uint64(w.Handle))
}

// onUpdatePlainWindow implements updatePlainWindow. Per spec §4.6 and
// endpoint.c:740-757, the target is the WORKSPACE the window lives in;
// the window itself is identified by elementType=HANDLE/elementValue,
// mirroring onDestroyPlainWindow's resolution.
func (d *Dispatcher) onUpdatePlainWindow(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.UpdatePlainWindow == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	win, status := d.resolvePage(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.Property == "" || req.DataType == protocol.DataVoid {
		return fail(protocol.StatusBadRequest)
	}
	if err := d.Callbacks.UpdatePlainWindow(ep.Session, win, req.Property, dataValue(req)); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(win.Handle))
}

// onDestroyPlainWindow implements destroyPlainWindow.
func (d *Dispatcher) onDestroyPlainWindow(ep *endpoint.Endpoint, req *protocol.Message) result {
	if d.Callbacks.DestroyPlainWindow == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	win, status := d.resolvePage(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if err := d.Callbacks.DestroyPlainWindow(ep.Session, win); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	ep.Session.RemoveHandle(win.Handle)
	d.Arena.Release(win.Handle)
	return ok(0)
}

// onCreateWidget implements createWidget, mirroring
// onCreatePlainWindow's name[@group]/reserved-name/find-before-create
// sequence but targeting a widget tree instead of a top-level window.
func (d *Dispatcher) onCreateWidget(ep *endpoint.Endpoint, req *protocol.Message) result {
	if !d.Callbacks.SupportsWidgets() {
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
	name, group := parseNameGroup(req.ElementValue)

	if isReserved(name) {
		if d.Callbacks.GetSpecialWidget == nil {
			return fail(protocol.StatusNotImplemented)
		}
		w, err := d.Callbacks.GetSpecialWidget(ep.Session, ws, name)
		if err != nil || w == nil {
			return fail(protocol.StatusNotFound)
		}
		return finishPage(ep, w, session.KindWidget)
	}

	pageID := endpoint.AppName(ep.URI) + "/widget:" + name
	if group != "" {
		pageID += "@" + group
	}
	if d.Callbacks.FindPage != nil {
		if w, err := d.Callbacks.FindPage(ep.Session, ws, pageID); err == nil && w != nil {
			return finishPage(ep, w, session.KindWidget)
		}
	}

	m := jsonObject(req)
	w, err := d.Callbacks.CreateWidget(ep.Session, ws, backend.WidgetRequest{
		Group:    group,
		Name:     pageID,
		Class:    stringField(m, "class"),
		Title:    stringField(m, "title"),
		Layout:   stringField(m, "layoutStyle"),
		DataType: req.DataType.String(),
		Data:     m,
	})
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	return finishPage(ep, w, session.KindWidget)
}

// onUpdateWidget implements updateWidget. Per spec §4.6 and
// endpoint.c:954-971, the target is the WORKSPACE the widget lives in;
// the widget itself is identified by elementType=HANDLE/elementValue,
// mirroring onDestroyWidget's resolution.
func (d *Dispatcher) onUpdateWidget(ep *endpoint.Endpoint, req *protocol.Message) result {
	if !d.Callbacks.SupportsWidgets() || d.Callbacks.UpdateWidget == nil {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	w, status := d.resolvePage(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if req.Property == "" || req.DataType == protocol.DataVoid {
		return fail(protocol.StatusBadRequest)
	}
	if err := d.Callbacks.UpdateWidget(ep.Session, w, req.Property, dataValue(req)); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	return ok(uint64(w.Handle))
}

// onDestroyWidget implements destroyWidget. Both create_widget and
// destroy_widget must be present: the source's NULL-check here reads
// "|| cbs.destroy_widget" (truthy, not == NULL), which this dispatcher
// treats as a bug per the spec's documented resolution rather than
// replicating it (see DESIGN.md).
func (d *Dispatcher) onDestroyWidget(ep *endpoint.Endpoint, req *protocol.Message) result {
	if !d.Callbacks.SupportsWidgets() {
		return fail(protocol.StatusNotImplemented)
	}
	if req.Target != protocol.TargetWorkspace {
		return fail(protocol.StatusBadRequest)
	}
	if req.ElementType != protocol.ElementHandle {
		return fail(protocol.StatusBadRequest)
	}
	h, err := session.ParseHandle(req.ElementValue)
	if err != nil {
		return fail(protocol.StatusBadRequest)
	}
	w, status := d.resolvePage(ep.Session, h)
	if status != protocol.StatusOK {
		return fail(status)
	}
	if err := d.Callbacks.DestroyWidget(ep.Session, w); err != nil {
		return fail(protocol.StatusInternalServerError)
	}
	ep.Session.RemoveHandle(w.Handle)
	d.Arena.Release(w.Handle)
	return ok(0)
}
