// Package dispatch implements the Request Dispatcher (spec §4.6): the
// case-insensitive, 32-entry operation table that routes every inbound
// request to a handler, validates its target/element/handle arguments
// against the session's capability surface, and produces a response
// with resultValue = 0 on every failure.
package dispatch

import (
	"sort"
	"strings"

	"github.com/hvml/purcmc-go/pkg/backend"
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
)

// handlerFunc answers one request. It returns the response's resultValue,
// dataType, data, and status. A nil entry in the operation table means
// "known operation, no handler" (spec: NOT_IMPLEMENTED).
type handlerFunc func(d *Dispatcher, ep *endpoint.Endpoint, req *protocol.Message) result

type result struct {
	status      protocol.StatusCode
	resultValue uint64
	dataType    protocol.DataType
	data        []byte

	// event and eventURI, when event is non-nil, carry a notification
	// that must be delivered to a different endpoint than the one that
	// sent the triggering request (spec §4.7: "a suppressPage or
	// reloadPage caused by a register/revoke is emitted before the
	// response... when the target endpoint differs"). Same-endpoint
	// notifications are folded into resultValue instead; see
	// registerOrRevoke.
	event    *protocol.Message
	eventURI string
}

// PendingEvent is a notification Dispatch produced as a side effect of
// answering a request, to be delivered to an endpoint other than the
// one the request arrived on.
type PendingEvent struct {
	EndpointURI string
	Message     *protocol.Message
}

func ok(resultValue uint64) result {
	return result{status: protocol.StatusOK, resultValue: resultValue}
}

func okData(resultValue uint64, dt protocol.DataType, data []byte) result {
	return result{status: protocol.StatusOK, resultValue: resultValue, dataType: dt, data: data}
}

func fail(status protocol.StatusCode) result {
	return result{status: status} // resultValue stays 0, per spec
}

type tableEntry struct {
	operation string
	handler   handlerFunc // nil means NOT_IMPLEMENTED
}

// table is kept sorted by operation name (lowercase) for binary search,
// mirroring the source's handlers[] array and find_request_handler
// (spec Design Note: "case-insensitive operation lookup").
var table = buildTable()

func buildTable() []tableEntry {
	t := []tableEntry{
		{"addpagegroups", (*Dispatcher).onAddPageGroups},
		{"append", (*Dispatcher).onAppend},
		{"authenticate", nil},
		{"callmethod", (*Dispatcher).onCallMethod},
		{"clear", (*Dispatcher).onClear},
		{"createplainwindow", (*Dispatcher).onCreatePlainWindow},
		{"createwidget", (*Dispatcher).onCreateWidget},
		{"createworkspace", (*Dispatcher).onCreateWorkspace},
		{"destroyplainwindow", (*Dispatcher).onDestroyPlainWindow},
		{"destroywidget", (*Dispatcher).onDestroyWidget},
		{"destroyworkspace", (*Dispatcher).onDestroyWorkspace},
		{"displace", (*Dispatcher).onDisplace},
		{"endsession", (*Dispatcher).onEndSession},
		{"erase", (*Dispatcher).onErase},
		{"getproperty", (*Dispatcher).onGetProperty},
		{"insertafter", (*Dispatcher).onInsertAfter},
		{"insertbefore", (*Dispatcher).onInsertBefore},
		{"load", (*Dispatcher).onLoad},
		{"prepend", (*Dispatcher).onPrepend},
		{"removepagegroup", (*Dispatcher).onRemovePageGroup},
		{"register", (*Dispatcher).onRegister},
		{"revoke", (*Dispatcher).onRevoke},
		{"setpagegroups", (*Dispatcher).onSetPageGroups},
		{"setproperty", (*Dispatcher).onSetProperty},
		{"startsession", (*Dispatcher).onStartSession},
		{"update", (*Dispatcher).onUpdate},
		{"updateplainwindow", (*Dispatcher).onUpdatePlainWindow},
		{"updatewidget", (*Dispatcher).onUpdateWidget},
		{"updateworkspace", (*Dispatcher).onUpdateWorkspace},
		{"writebegin", nil},
		{"writeend", nil},
		{"writemore", nil},
	}
	sort.Slice(t, func(i, j int) bool { return t[i].operation < t[j].operation })
	return t
}

// findHandler performs the case-insensitive binary search over table.
// It returns (nil, false) for an operation not present at all (spec:
// BAD_REQUEST) and (nil, true) for a known operation with no handler
// (spec: NOT_IMPLEMENTED).
func findHandler(operation string) (handlerFunc, bool) {
	op := strings.ToLower(operation)
	i := sort.Search(len(table), func(i int) bool { return table[i].operation >= op })
	if i >= len(table) || table[i].operation != op {
		return nil, false
	}
	return table[i].handler, true
}

// Dispatcher routes requests for one renderer instance. It holds no
// per-request state; everything needed to answer a request arrives via
// the endpoint and the message.
type Dispatcher struct {
	Callbacks *backend.Callbacks
	Arena     *session.Arena
}

// New creates a Dispatcher bound to cbs and arena, the same arena the
// back-end uses to mint workspace/page/uDOM handles (spec Design Note:
// "opaque pointer-as-handle" backed by a renderer-wide arena).
func New(cbs *backend.Callbacks, arena *session.Arena) *Dispatcher {
	return &Dispatcher{Callbacks: cbs, Arena: arena}
}

// Dispatch answers one request message for ep, returning the response
// message to send back and any notifications that must be delivered to
// other endpoints as a side effect (e.g. suppressPage/reloadPage from a
// cross-session register/revoke). req.Type must be protocol.TypeRequest.
func (d *Dispatcher) Dispatch(ep *endpoint.Endpoint, req *protocol.Message) (*protocol.Message, []PendingEvent) {
	handler, known := findHandler(req.Operation)

	var r result
	switch {
	case !known:
		r = fail(protocol.StatusBadRequest)
	case handler == nil:
		r = fail(protocol.StatusNotImplemented)
	case ep.Session == nil && strings.ToLower(req.Operation) != "startsession":
		r = fail(protocol.StatusForbidden)
	default:
		r = handler(d, ep, req)
	}

	resp := &protocol.Message{
		Type:        protocol.TypeResponse,
		RequestID:   req.RequestID,
		RetCode:     int(r.status),
		ResultValue: r.resultValue,
		DataType:    r.dataType,
		Data:        r.data,
	}

	var events []PendingEvent
	if r.event != nil {
		events = append(events, PendingEvent{EndpointURI: r.eventURI, Message: r.event})
	}
	return resp, events
}
