package session

import (
	"testing"
	"time"
)

func TestHandleLifecycle(t *testing.T) {
	s := New(1, "edpt://localhost/app/runner", time.Now())

	h := Handle(42)
	if _, ok := s.FindHandle(h); ok {
		t.Fatal("expected handle to be invalid before AddHandle")
	}

	s.AddHandle(h, KindWorkspace)
	kind, ok := s.FindHandle(h)
	if !ok || kind != KindWorkspace {
		t.Fatalf("expected (WORKSPACE, true), got (%v, %v)", kind, ok)
	}

	s.RemoveHandle(h)
	if _, ok := s.FindHandle(h); ok {
		t.Fatal("expected handle to be invalid after RemoveHandle")
	}
}

func TestStoreOrderingAndSearch(t *testing.T) {
	s := NewStore()
	handles := []Handle{50, 10, 30, 20, 40}
	for _, h := range handles {
		s.AddHandle(h, KindWidget)
	}
	if s.Len() != len(handles) {
		t.Fatalf("expected %d entries, got %d", len(handles), s.Len())
	}
	for _, h := range handles {
		if kind, ok := s.FindHandle(h); !ok || kind != KindWidget {
			t.Fatalf("handle %d: expected (WIDGET, true), got (%v, %v)", h, kind, ok)
		}
	}
	if _, ok := s.FindHandle(999); ok {
		t.Fatal("expected unknown handle to be absent")
	}
}

func TestArenaIssuesStableHandles(t *testing.T) {
	a := NewArena()
	type obj struct{ name string }
	o1 := &obj{"first"}
	o2 := &obj{"second"}

	h1 := a.Issue(o1)
	h1Again := a.Issue(o1)
	if h1 != h1Again {
		t.Fatalf("expected stable handle for same object, got %v and %v", h1, h1Again)
	}

	h2 := a.Issue(o2)
	if h1 == h2 {
		t.Fatal("expected distinct handles for distinct objects")
	}

	resolved, ok := a.Resolve(h1)
	if !ok || resolved.(*obj) != o1 {
		t.Fatalf("expected to resolve h1 back to o1, got %v, %v", resolved, ok)
	}

	a.Release(h1)
	if _, ok := a.Resolve(h1); ok {
		t.Fatal("expected h1 to be gone after Release")
	}
}

func TestHandleHexFormatting(t *testing.T) {
	h := Handle(0xdeadbeef)
	if h.String() != "deadbeef" {
		t.Fatalf("expected lowercase hex, got %q", h.String())
	}
	parsed, err := ParseHandle("deadbeef")
	if err != nil || parsed != h {
		t.Fatalf("ParseHandle round trip failed: %v, %v", parsed, err)
	}
	if _, err := ParseHandle("not-hex"); err == nil {
		t.Fatal("expected error parsing non-hex handle")
	}
}
