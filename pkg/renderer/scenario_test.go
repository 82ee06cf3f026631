package renderer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/refbackend"
	"github.com/hvml/purcmc-go/pkg/session"
)

// newTestRenderer wires a renderer over the reference backend and runs
// it on its own goroutine for the lifetime of the test, grounded in the
// teacher's whole-stack integration-test style
// (pkg/server/router_integration_test.go).
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	arena := session.NewArena()
	be := refbackend.New(arena)
	r := New(be.Callbacks(), arena)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func connect(t *testing.T, r *Renderer, uri string) *protocol.InProcTransport {
	t.Helper()
	client, server := protocol.NewInProcPair(8)
	if _, err := r.Accept(uri, server); err != nil {
		t.Fatalf("Accept(%s): %v", uri, err)
	}
	return client
}

func roundTrip(t *testing.T, c *protocol.InProcTransport, req *protocol.Message) *protocol.Message {
	t.Helper()
	if err := c.Send(req); err != nil {
		t.Fatalf("send %s: %v", req.Operation, err)
	}
	resp, err := c.Recv()
	if err != nil {
		t.Fatalf("recv reply to %s: %v", req.Operation, err)
	}
	return resp
}

// TestSessionLifecycle covers S1: startSession then endSession both
// succeed for a freshly connected endpoint.
func TestSessionLifecycle(t *testing.T) {
	r := newTestRenderer(t)
	c := connect(t, r, "edpt://localhost/app/s1")

	resp := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession,
		Operation: "startSession", RequestID: "r1",
	})
	if resp.RetCode != int(protocol.StatusOK) || resp.ResultValue == 0 {
		t.Fatalf("startSession: got retCode=%d resultValue=%d", resp.RetCode, resp.ResultValue)
	}

	resp = roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession,
		Operation: "endSession", RequestID: "r2",
	})
	if resp.RetCode != int(protocol.StatusOK) {
		t.Fatalf("endSession: got retCode=%d", resp.RetCode)
	}
}

// TestCreatePlainWindowIdempotent covers S2: creating the same named
// window twice returns the same handle; a different name mints a new
// one.
func TestCreatePlainWindowIdempotent(t *testing.T) {
	r := newTestRenderer(t)
	c := connect(t, r, "edpt://localhost/app/s2")

	start := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession,
		Operation: "startSession", RequestID: "r1",
	})
	sessHandle := start.ResultValue

	ws := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, TargetValue: sessHandle,
		Operation: "createWorkspace", RequestID: "r2",
		ElementType: protocol.ElementID, ElementValue: "_default",
	})
	if ws.RetCode != int(protocol.StatusOK) {
		t.Fatalf("createWorkspace: retCode=%d", ws.RetCode)
	}

	data, _ := json.Marshal(map[string]any{"title": "Hello"})
	create := func(name string) *protocol.Message {
		return roundTrip(t, c, &protocol.Message{
			Type: protocol.TypeRequest, Target: protocol.TargetWorkspace, TargetValue: ws.ResultValue,
			Operation: "createPlainWindow", RequestID: "r3",
			ElementType: protocol.ElementID, ElementValue: name,
			DataType: protocol.DataJSON, Data: data,
		})
	}

	first := create("main@group1")
	if first.RetCode != int(protocol.StatusOK) || first.ResultValue == 0 {
		t.Fatalf("createPlainWindow: retCode=%d resultValue=%d", first.RetCode, first.ResultValue)
	}
	again := create("main@group1")
	if again.ResultValue != first.ResultValue {
		t.Fatalf("expected idempotent handle %d, got %d", first.ResultValue, again.ResultValue)
	}
	other := create("second@group1")
	if other.ResultValue == first.ResultValue {
		t.Fatal("expected a different name to mint a different handle")
	}
}

// TestDoubleRegisterSuppressesAndReloads covers S3: two sessions loading
// the same page, with the second register suppressing the first and the
// eventual revoke reloading it, delivered as cross-session events.
func TestDoubleRegisterSuppressesAndReloads(t *testing.T) {
	r := newTestRenderer(t)

	// Session A creates and loads the page. Both endpoints share the app
	// segment "demo" so their page ids compose to the same app/name key
	// (spec §4.6); different apps would intentionally get distinct pages.
	a := connect(t, r, "edpt://localhost/demo/a")
	startA := roundTrip(t, a, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, Operation: "startSession", RequestID: "r1",
	})
	wsA := roundTrip(t, a, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, TargetValue: startA.ResultValue,
		Operation: "createWorkspace", RequestID: "r2", ElementType: protocol.ElementID, ElementValue: "_default",
	})
	pageA := roundTrip(t, a, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetWorkspace, TargetValue: wsA.ResultValue,
		Operation: "createPlainWindow", RequestID: "r3", ElementType: protocol.ElementID, ElementValue: "main@g",
	})

	const crtnA = 0xca
	loadA := roundTrip(t, a, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetPlainWindow, TargetValue: pageA.ResultValue,
		Operation: "load", RequestID: "r4",
		ElementType: protocol.ElementHandle, ElementValue: session.Handle(crtnA).String(),
		DataType: protocol.DataJSON, Data: []byte(`{}`),
	})
	if loadA.RetCode != int(protocol.StatusOK) {
		t.Fatalf("load: retCode=%d", loadA.RetCode)
	}

	// Session B resolves the same page by name and registers a second
	// coroutine on it.
	b := connect(t, r, "edpt://localhost/demo/b")
	startB := roundTrip(t, b, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, Operation: "startSession", RequestID: "r1",
	})
	wsB := roundTrip(t, b, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, TargetValue: startB.ResultValue,
		Operation: "createWorkspace", RequestID: "r2", ElementType: protocol.ElementID, ElementValue: "_default",
	})
	pageB := roundTrip(t, b, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetWorkspace, TargetValue: wsB.ResultValue,
		Operation: "createPlainWindow", RequestID: "r3", ElementType: protocol.ElementID, ElementValue: "main@g",
	})
	if pageB.ResultValue != pageA.ResultValue {
		t.Fatalf("expected B to resolve the same page handle, got %d vs %d", pageB.ResultValue, pageA.ResultValue)
	}

	const crtnB = 0xcb
	regB := roundTrip(t, b, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetPlainWindow, TargetValue: pageB.ResultValue,
		Operation: "register", RequestID: "r5",
		ElementType: protocol.ElementHandle, ElementValue: session.Handle(crtnB).String(),
	})
	if regB.RetCode != int(protocol.StatusOK) || regB.ResultValue != 0 {
		t.Fatalf("register: expected retCode=200 resultValue=0 (cross-session, no same-session suppression), got retCode=%d resultValue=%d", regB.RetCode, regB.ResultValue)
	}

	suppress, err := a.Recv()
	if err != nil {
		t.Fatalf("recv suppressPage: %v", err)
	}
	if suppress.Type != protocol.TypeEvent || suppress.EventName != "suppressPage" || suppress.ElementValue != session.Handle(crtnA).String() {
		t.Fatalf("expected suppressPage(%s) event, got %+v", session.Handle(crtnA), suppress)
	}

	revB := roundTrip(t, b, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetPlainWindow, TargetValue: pageB.ResultValue,
		Operation: "revoke", RequestID: "r6",
		ElementType: protocol.ElementHandle, ElementValue: session.Handle(crtnB).String(),
	})
	if revB.RetCode != int(protocol.StatusOK) {
		t.Fatalf("revoke: retCode=%d", revB.RetCode)
	}

	reload, err := a.Recv()
	if err != nil {
		t.Fatalf("recv reloadPage: %v", err)
	}
	if reload.Type != protocol.TypeEvent || reload.EventName != "reloadPage" || reload.ElementValue != session.Handle(crtnA).String() {
		t.Fatalf("expected reloadPage(%s) event, got %+v", session.Handle(crtnA), reload)
	}
}

// TestUnknownOperation covers S4: an operation absent from the table is
// BAD_REQUEST.
func TestUnknownOperation(t *testing.T) {
	r := newTestRenderer(t)
	c := connect(t, r, "edpt://localhost/app/s4")

	resp := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Operation: "doesNotExist", RequestID: "r9",
	})
	if resp.RetCode != int(protocol.StatusBadRequest) {
		t.Fatalf("expected BAD_REQUEST, got retCode=%d", resp.RetCode)
	}
}

// TestBadHandleNotFound covers property 7: elementType HANDLE whose
// value never entered the sender's handle set yields NOT_FOUND.
func TestBadHandleNotFound(t *testing.T) {
	r := newTestRenderer(t)
	c := connect(t, r, "edpt://localhost/app/s7")

	start := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, Operation: "startSession", RequestID: "r1",
	})
	resp := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetWorkspace, TargetValue: start.ResultValue + 0x5eed,
		Operation: "destroyWorkspace", RequestID: "r2",
		ElementType: protocol.ElementHandle, ElementValue: session.Handle(start.ResultValue + 0x5eed).String(),
	})
	if resp.RetCode != int(protocol.StatusNotFound) {
		t.Fatalf("expected NOT_FOUND for an unissued handle, got retCode=%d", resp.RetCode)
	}
}

// TestEndpointSweptAfterNoRespondingTime covers S6/property 6: an
// endpoint silent past NO_RESPONDING_TIME is removed from the registry.
func TestEndpointSweptAfterNoRespondingTime(t *testing.T) {
	arena := session.NewArena()
	be := refbackend.New(arena)
	r := New(be.Callbacks(), arena, WithSweepConfig(endpoint.SweepConfig{
		PingTime:         20 * time.Millisecond,
		NoRespondingTime: 40 * time.Millisecond,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	c := connect(t, r, "edpt://localhost/app/s6")
	start := roundTrip(t, c, &protocol.Message{
		Type: protocol.TypeRequest, Target: protocol.TargetSession, Operation: "startSession", RequestID: "r1",
	})
	if start.RetCode != int(protocol.StatusOK) {
		t.Fatalf("startSession: retCode=%d", start.RetCode)
	}

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := r.Registry().Retrieve("edpt://localhost/app/s6"); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("endpoint was never swept")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
