package session

import "sort"

// entry is one (handle, kind) pair in a Store's sorted array.
type entry struct {
	handle Handle
	kind   Kind
}

// Store is a session's handle-validity index: a sorted array supporting
// O(log n) AddHandle/FindHandle, grounded on the source's sorted_array
// (spec §4.3). A sorted slice is the idiomatic Go substitute for a
// hand-rolled sorted array in C — no library in this corpus offers a
// generic ordered-set closer to the source's shape than
// sort.Search/slices, so this one data structure is built on the
// standard library; see DESIGN.md.
type Store struct {
	entries []entry
}

// NewStore creates an empty handle store.
func NewStore() *Store {
	return &Store{}
}

// AddHandle records that h, of kind k, has been issued to this session.
// Adding the same handle twice with the same kind is a no-op; adding it
// with a different kind replaces the recorded kind (the wire protocol
// never reuses a handle value across kinds, but this keeps Add
// idempotent and total).
func (s *Store) AddHandle(h Handle, k Kind) {
	i := s.search(h)
	if i < len(s.entries) && s.entries[i].handle == h {
		s.entries[i].kind = k
		return
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{handle: h, kind: k}
}

// FindHandle reports the kind recorded for h in this session, if any.
func (s *Store) FindHandle(h Handle) (Kind, bool) {
	i := s.search(h)
	if i < len(s.entries) && s.entries[i].handle == h {
		return s.entries[i].kind, true
	}
	return 0, false
}

// RemoveHandle drops h from this session's valid set, e.g. once the
// corresponding destroy operation succeeds.
func (s *Store) RemoveHandle(h Handle) {
	i := s.search(h)
	if i < len(s.entries) && s.entries[i].handle == h {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}

// Len returns the number of handles currently valid for this session.
func (s *Store) Len() int { return len(s.entries) }

func (s *Store) search(h Handle) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].handle >= h
	})
}
