// Package ownership implements the Page Ownership Stack (spec §4.5): a
// per-page LIFO of the coroutines that have bound a document in that
// page, used to decide which one is currently visible and which
// endpoints need a suppressPage/reloadPage notification when visibility
// changes.
package ownership

import "github.com/hvml/purcmc-go/pkg/session"

// Owner identifies one coroutine, within one session, that has
// registered interest in a page.
type Owner struct {
	Session *session.Session
	Coro    uint64
}

// Zero reports whether o is the zero Owner (no session, no coroutine).
func (o Owner) Zero() bool {
	return o.Session == nil && o.Coro == 0
}

// Stack is one page's ownership LIFO. The top of the stack is the
// page's current, visible owner; everything below it is suppressed.
//
// A sorted-array or tree was not warranted here: a page's owner count
// is small (typically one, occasionally a handful of coroutines sharing
// a tab) and every operation the source performs is push/remove-by-
// value/peek-top, which a plain slice serves directly without the
// binary-search machinery pkg/session and pkg/endpoint use for their
// much larger collections (see DESIGN.md).
type Stack struct {
	owners []Owner
}

// NewStack returns an empty ownership stack.
func NewStack() *Stack {
	return &Stack{}
}

// Top returns the page's current visible owner, or the zero Owner if
// the page has none.
func (s *Stack) Top() Owner {
	if len(s.owners) == 0 {
		return Owner{}
	}
	return s.owners[len(s.owners)-1]
}

// Len returns the number of coroutines currently registered on the
// page, visible or suppressed.
func (s *Stack) Len() int {
	return len(s.owners)
}

// Register pushes owner onto the stack, making it the page's new
// visible owner. If the stack was non-empty, the previous top is
// returned as suppressed with ok true: the caller (spec §4.5) notifies
// that owner's endpoint with a suppressPage event unless it belongs to
// the same session as owner, in which case no cross-endpoint
// notification is needed.
func (s *Stack) Register(owner Owner) (suppressed Owner, ok bool) {
	var prev Owner
	hadPrev := len(s.owners) > 0
	if hadPrev {
		prev = s.owners[len(s.owners)-1]
	}
	s.owners = append(s.owners, owner)
	return prev, hadPrev
}

// Revoke removes owner from the stack, wherever it sits. If owner was
// the visible (top) entry, the new top (if any) is returned as
// toReload with ok true: the caller notifies that owner's endpoint with
// a reloadPage event unless it belongs to the same session as the
// revoked owner. Revoking a suppressed (non-top) entry changes nothing
// visible and reports ok false.
func (s *Stack) Revoke(owner Owner) (toReload Owner, ok bool) {
	idx := s.indexOf(owner)
	if idx < 0 {
		return Owner{}, false
	}

	wasTop := idx == len(s.owners)-1
	s.owners = append(s.owners[:idx], s.owners[idx+1:]...)

	if !wasTop {
		return Owner{}, false
	}
	if len(s.owners) == 0 {
		return Owner{}, false
	}
	return s.owners[len(s.owners)-1], true
}

// RevokeSession removes every owner belonging to sess, regardless of
// coroutine. If the removal changes the visible owner, the new top is
// returned as toReload with ok true, exactly as Revoke does for a
// single coroutine.
func (s *Stack) RevokeSession(sess *session.Session) (toReload Owner, ok bool) {
	if len(s.owners) == 0 {
		return Owner{}, false
	}
	oldTop := s.owners[len(s.owners)-1]

	kept := s.owners[:0]
	for _, o := range s.owners {
		if o.Session != sess {
			kept = append(kept, o)
		}
	}
	s.owners = kept

	if len(s.owners) == 0 {
		return Owner{}, false
	}
	newTop := s.owners[len(s.owners)-1]
	if newTop == oldTop {
		return Owner{}, false
	}
	return newTop, true
}

func (s *Stack) indexOf(owner Owner) int {
	for i, o := range s.owners {
		if o == owner {
			return i
		}
	}
	return -1
}
