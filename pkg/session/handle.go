package session

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Handle is an opaque, pointer-width numeric id handed to clients in
// place of a real memory address (Design Note §9: "never reveal object
// addresses"). It is formatted on the wire as lowercase hex.
type Handle uint64

// String formats the handle as lowercase hex, matching spec §6
// ("Handles on the wire are lowercase hex digits of a pointer-width
// integer").
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 16)
}

// ParseHandle parses a lowercase-hex wire handle. A handle of 0 is
// reserved for "no handle" / "nothing suppressed".
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("session: invalid handle %q: %w", s, err)
	}
	return Handle(v), nil
}

// Kind tags what kind of object a Handle refers to, so that a session can
// reject a structurally valid but wrong-kind handle with BAD_REQUEST
// rather than NOT_FOUND (spec §4.3).
type Kind uint8

const (
	KindWorkspace Kind = iota
	KindPlainWin
	KindTabbedWin
	KindContainer
	KindWidget
	KindUDOM
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "WORKSPACE"
	case KindPlainWin:
		return "PLAINWIN"
	case KindTabbedWin:
		return "TABBEDWIN"
	case KindContainer:
		return "CONTAINER"
	case KindWidget:
		return "WIDGET"
	case KindUDOM:
		return "UDOM"
	default:
		return "UNKNOWN"
	}
}

// Arena issues stable, renderer-wide numeric handles for objects and
// resolves them back. One Arena is shared by every session attached to a
// renderer: the same object always maps to the same Handle, but a given
// session may only *use* a handle after it has separately recorded that
// handle in its own Store (spec §3 invariant: "no handle is valid across
// sessions" refers to per-session authorization, not to the numeric
// value itself, which is stable per object for the life of the
// renderer).
type Arena struct {
	next    atomic.Uint64
	objects map[Handle]any
	byObj   map[any]Handle
}

// NewArena creates an empty handle arena. Handle 0 is never issued so it
// can serve as a sentinel for "no object".
func NewArena() *Arena {
	a := &Arena{
		objects: make(map[Handle]any),
		byObj:   make(map[any]Handle),
	}
	a.next.Store(1)
	return a
}

// Issue returns the stable handle for obj, allocating one on first use.
// obj must be comparable (a pointer, typically).
func (a *Arena) Issue(obj any) Handle {
	if h, ok := a.byObj[obj]; ok {
		return h
	}
	h := Handle(a.next.Add(1) - 1)
	a.objects[h] = obj
	a.byObj[obj] = h
	return h
}

// Resolve returns the object bound to h, if any.
func (a *Arena) Resolve(h Handle) (any, bool) {
	obj, ok := a.objects[h]
	return obj, ok
}

// Release drops h's mapping, e.g. after the underlying object is
// destroyed. The handle is never reissued to a different object.
func (a *Arena) Release(h Handle) {
	obj, ok := a.objects[h]
	if !ok {
		return
	}
	delete(a.objects, h)
	delete(a.byObj, obj)
}
