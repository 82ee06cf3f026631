package endpoint

import (
	"errors"
	"sort"
	"time"

	"github.com/hvml/purcmc-go/pkg/protocol"
)

// ErrDuplicated is returned by New when the URI is already registered.
var ErrDuplicated = errors.New("endpoint: duplicated URI")

// Registry tracks every endpoint connected to one renderer: a URI hash
// map plus a living-time ordering used by Sweep (spec §4.2). It is only
// ever touched from the renderer's single event-loop goroutine (spec
// §5), so it holds no locks of its own.
//
// The living-time ordering is a slice kept sorted by (LastSeen, URI),
// with insertion/removal via sort.Search. This is the idiomatic Go
// substitute for the source's AVL tree at the scale a single renderer
// operates at (Design Note §9); no example in this corpus reaches for a
// balanced-tree library for an ordered index this size, so the ordering
// is the one place this package leans on a plain slice instead of a
// third-party container — see DESIGN.md.
type Registry struct {
	byURI   map[string]*Endpoint
	ordered []*Endpoint

	master *Endpoint

	// OnDestroySession is invoked by Del before the endpoint is freed, so
	// the backend can tear down any attached session resources.
	OnDestroySession func(*Endpoint)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byURI: make(map[string]*Endpoint),
	}
}

// New registers a new endpoint for uri, created at now, reachable over
// transport. It fails with ErrDuplicated if uri is already registered.
// The first endpoint ever registered becomes the master endpoint and
// remains so even after it is later removed (spec §3 invariant).
func (r *Registry) New(uri string, transport protocol.Transport, now time.Time) (*Endpoint, error) {
	if _, exists := r.byURI[uri]; exists {
		return nil, ErrDuplicated
	}

	ep := &Endpoint{
		URI:       uri,
		CreatedAt: now,
		LastSeen:  now,
		Transport: transport,
	}

	r.byURI[uri] = ep
	r.insertOrdered(ep)

	if r.master == nil {
		r.master = ep
	}

	return ep, nil
}

// Retrieve looks up an endpoint by URI in O(1).
func (r *Registry) Retrieve(uri string) (*Endpoint, bool) {
	ep, ok := r.byURI[uri]
	return ep, ok
}

// Master returns the renderer's master endpoint (the first one ever
// registered), or nil if none has registered yet. It remains set once
// assigned, even if that endpoint is later removed.
func (r *Registry) Master() *Endpoint {
	return r.master
}

// Count returns the number of currently connected endpoints.
func (r *Registry) Count() int {
	return len(r.byURI)
}

// Del removes ep from both indices, invoking OnDestroySession first if
// ep has an attached session.
func (r *Registry) Del(ep *Endpoint, cause Cause) {
	if _, ok := r.byURI[ep.URI]; !ok {
		return
	}

	if r.OnDestroySession != nil && ep.Session != nil {
		r.OnDestroySession(ep)
	}

	delete(r.byURI, ep.URI)
	r.removeOrdered(ep)
}

// UpdateLiving refreshes ep's last-seen time and re-keys the living-time
// ordering if the time actually changed (spec §4.2: "if current time
// differs from stored t_living, re-key the ordered set").
func (r *Registry) UpdateLiving(ep *Endpoint, now time.Time) {
	if ep.LastSeen.Equal(now) {
		return
	}
	r.removeOrdered(ep)
	ep.LastSeen = now
	r.insertOrdered(ep)
}

// ForEachOldestFirst iterates endpoints oldest-to-newest by last-seen
// time. The callback must not mutate the registry.
func (r *Registry) ForEachOldestFirst(fn func(*Endpoint) bool) {
	for _, ep := range r.ordered {
		if !fn(ep) {
			return
		}
	}
}

func (r *Registry) less(a, b *Endpoint) bool {
	if !a.LastSeen.Equal(b.LastSeen) {
		return a.LastSeen.Before(b.LastSeen)
	}
	return a.URI < b.URI // secondary key prevents ambiguous ordering (spec Design Note)
}

func (r *Registry) insertOrdered(ep *Endpoint) {
	i := sort.Search(len(r.ordered), func(i int) bool {
		return r.less(ep, r.ordered[i])
	})
	r.ordered = append(r.ordered, nil)
	copy(r.ordered[i+1:], r.ordered[i:])
	r.ordered[i] = ep
	reindex(r.ordered, i)
}

func (r *Registry) removeOrdered(ep *Endpoint) {
	i := ep.index
	if i < 0 || i >= len(r.ordered) || r.ordered[i] != ep {
		// Fall back to a linear scan if the cached index drifted (should
		// not happen in normal operation, but keeps Del/UpdateLiving safe).
		i = -1
		for idx, e := range r.ordered {
			if e == ep {
				i = idx
				break
			}
		}
		if i < 0 {
			return
		}
	}
	r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
	reindex(r.ordered, i)
}

func reindex(ordered []*Endpoint, from int) {
	for i := from; i < len(ordered); i++ {
		ordered[i].index = i
	}
}
