package ownership

import (
	"testing"
	"time"

	"github.com/hvml/purcmc-go/pkg/session"
)

var nextTestHandle session.Handle

func newSession() *session.Session {
	nextTestHandle++
	return session.New(nextTestHandle, "edpt://localhost/app/runner", time.Now())
}

// TestRegisterRevokeIdentity covers property P4: for any sequence of
// Register/Revoke calls, the stack's Top always equals the most
// recently registered owner not yet revoked.
func TestRegisterRevokeIdentity(t *testing.T) {
	s := NewStack()
	a := Owner{Session: newSession(), Coro: 1}
	b := Owner{Session: newSession(), Coro: 2}

	suppressed, ok := s.Register(a)
	if ok {
		t.Fatalf("expected no suppressed owner on first register, got %v", suppressed)
	}
	if s.Top() != a {
		t.Fatalf("expected top=%v, got %v", a, s.Top())
	}

	suppressed, ok = s.Register(b)
	if !ok || suppressed != a {
		t.Fatalf("expected a suppressed by b, got %v, %v", suppressed, ok)
	}
	if s.Top() != b {
		t.Fatalf("expected top=b, got %v", s.Top())
	}

	toReload, ok := s.Revoke(b)
	if !ok || toReload != a {
		t.Fatalf("expected a to reload after revoking top b, got %v, %v", toReload, ok)
	}
	if s.Top() != a {
		t.Fatalf("expected top=a after revoke, got %v", s.Top())
	}
}

// TestSingleVisibleOwner covers property P5: at most one owner is ever
// visible (Top) at a time, and revoking a suppressed (non-top) owner
// never changes visibility.
func TestSingleVisibleOwner(t *testing.T) {
	s := NewStack()
	a := Owner{Session: newSession(), Coro: 1}
	b := Owner{Session: newSession(), Coro: 2}
	c := Owner{Session: newSession(), Coro: 3}

	s.Register(a)
	s.Register(b)
	s.Register(c)

	if s.Top() != c {
		t.Fatalf("expected c visible, got %v", s.Top())
	}

	// Revoking a, a suppressed entry, must not disturb the visible owner.
	toReload, ok := s.Revoke(a)
	if ok {
		t.Fatalf("expected no reload from revoking a suppressed owner, got %v", toReload)
	}
	if s.Top() != c {
		t.Fatalf("expected c still visible, got %v", s.Top())
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 owners remaining, got %d", s.Len())
	}
}

func TestRevokeEmptiesStack(t *testing.T) {
	s := NewStack()
	a := Owner{Session: newSession(), Coro: 1}
	s.Register(a)

	toReload, ok := s.Revoke(a)
	if ok {
		t.Fatalf("expected no reload when the stack becomes empty, got %v", toReload)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty stack, got %d", s.Len())
	}
	if !s.Top().Zero() {
		t.Fatalf("expected zero Top on empty stack, got %v", s.Top())
	}
}

func TestRevokeSessionClearsAllCoroutines(t *testing.T) {
	s := NewStack()
	sess := newSession()
	other := newSession()

	a := Owner{Session: sess, Coro: 1}
	b := Owner{Session: sess, Coro: 2}
	c := Owner{Session: other, Coro: 3}

	s.Register(a)
	s.Register(b)
	s.Register(c)

	toReload, ok := s.RevokeSession(sess)
	if ok {
		t.Fatalf("expected no reload: top owner %v belongs to a different session", toReload)
	}
	if s.Len() != 1 || s.Top() != c {
		t.Fatalf("expected only c to remain visible, got len=%d top=%v", s.Len(), s.Top())
	}
}

func TestRevokeSessionReloadsWhenTopOwnerRemoved(t *testing.T) {
	s := NewStack()
	sess := newSession()
	other := newSession()

	a := Owner{Session: other, Coro: 1}
	b := Owner{Session: sess, Coro: 2}

	s.Register(a)
	s.Register(b)

	toReload, ok := s.RevokeSession(sess)
	if !ok || toReload != a {
		t.Fatalf("expected a to reload after sess's top owner is revoked, got %v, %v", toReload, ok)
	}
}
