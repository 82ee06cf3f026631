package workspace

import (
	"strings"

	"github.com/hvml/purcmc-go/pkg/perr"
	"github.com/hvml/purcmc-go/pkg/session"
)

// Manager owns every workspace of one renderer and resolves the
// reserved workspace/page names (spec §4.4).
type Manager struct {
	byName    map[string]*Workspace
	order     []*Workspace // creation order, for _first/_last
	active    *Workspace
	defaultWS *Workspace
}

// NewManager creates an empty workspace manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*Workspace)}
}

// Create adds a new, empty workspace named name. It fails with
// BadRequest if the name is already in use or is itself a reserved
// name.
func (m *Manager) Create(name, title string, h session.Handle) (*Workspace, error) {
	if isReservedWorkspaceName(name) {
		return nil, perr.Newf(perr.KindBadRequest, "workspace: %q is a reserved name", name)
	}
	if _, exists := m.byName[name]; exists {
		return nil, perr.Newf(perr.KindBadRequest, "workspace: %q already exists", name)
	}
	w := New(name, title, h)
	m.byName[name] = w
	m.order = append(m.order, w)
	if m.defaultWS == nil {
		m.defaultWS = w
	}
	if m.active == nil {
		m.active = w
	}
	return w, nil
}

// Destroy removes a workspace. Neither Manager nor the dispatch layer
// refuses to destroy the default workspace; when it is destroyed, the
// oldest remaining workspace (if any) becomes the default for _default
// resolution.
func (m *Manager) Destroy(w *Workspace) {
	delete(m.byName, w.Name)
	for i, o := range m.order {
		if o == w {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.active == w {
		m.active = nil
		if len(m.order) > 0 {
			m.active = m.order[len(m.order)-1]
		}
	}
	if m.defaultWS == w {
		m.defaultWS = nil
		if len(m.order) > 0 {
			m.defaultWS = m.order[0]
		}
	}
}

// SetActive marks w as the active workspace, e.g. after it gains focus.
func (m *Manager) SetActive(w *Workspace) {
	m.active = w
}

// All returns every workspace in creation order, for read-only
// introspection (e.g. pkg/httpapi's /debug/workspaces view). Callers
// must not mutate the returned workspaces' structure concurrently with
// the renderer loop.
func (m *Manager) All() []*Workspace {
	out := make([]*Workspace, len(m.order))
	copy(out, m.order)
	return out
}

func isReservedWorkspaceName(name string) bool {
	switch name {
	case "_default", "_active", "_first", "_last":
		return true
	default:
		return false
	}
}

// Resolve looks a workspace up by name or reserved name (spec §4.4).
func (m *Manager) Resolve(name string) (*Workspace, error) {
	switch name {
	case "_default":
		if m.defaultWS == nil {
			return nil, perr.Newf(perr.KindNotFound, "workspace: no default workspace")
		}
		return m.defaultWS, nil
	case "_active":
		if m.active == nil {
			return nil, perr.Newf(perr.KindNotFound, "workspace: no active workspace")
		}
		return m.active, nil
	case "_first":
		if len(m.order) == 0 {
			return nil, perr.Newf(perr.KindNotFound, "workspace: none registered")
		}
		return m.order[0], nil
	case "_last":
		if len(m.order) == 0 {
			return nil, perr.Newf(perr.KindNotFound, "workspace: none registered")
		}
		return m.order[len(m.order)-1], nil
	default:
		w, ok := m.byName[name]
		if !ok {
			return nil, perr.Newf(perr.KindNotFound, "workspace: %q not found", name)
		}
		return w, nil
	}
}

// pageID is a parsed "app/name[@group]" page identifier (spec §4.4).
type pageID struct {
	App   string
	Name  string
	Group string // empty if no @group suffix
}

// parsePageID splits an id of the form "app/name[@group]".
func parsePageID(id string) (pageID, error) {
	appAndRest := strings.SplitN(id, "/", 2)
	if len(appAndRest) != 2 {
		return pageID{}, perr.Newf(perr.KindBadRequest, "page id %q: missing app/name separator", id)
	}
	name := appAndRest[1]
	group := ""
	if at := strings.IndexByte(name, '@'); at >= 0 {
		group = name[at+1:]
		name = name[:at]
	}
	return pageID{App: appAndRest[0], Name: name, Group: group}, nil
}

// ResolvePage resolves a page identifier within w. When the id's name
// part is not one of the reserved names _active|_first|_last, the whole
// id is looked up as a literal widget name (pages are named by their
// full id). Reserved names are resolved by filtering PageOwners/groups
// entries by the id's app-scoped prefix and optional @group suffix
// (spec §4.4).
func (w *Workspace) ResolvePage(id string) (*Widget, error) {
	pid, err := parsePageID(id)
	if err != nil {
		return nil, err
	}

	if !isReservedPageName(pid.Name) {
		wg := w.FindWidget(id)
		if wg == nil || !wg.kind.HasPage() {
			return nil, perr.Newf(perr.KindNotFound, "page: %q not found", id)
		}
		return wg, nil
	}

	candidates := w.pagesWithPrefix(pid.App, pid.Group)
	if len(candidates) == 0 {
		return nil, perr.Newf(perr.KindNotFound, "page: no page matches %q", id)
	}
	switch pid.Name {
	case "_first", "_active":
		return candidates[0], nil
	case "_last":
		return candidates[len(candidates)-1], nil
	default:
		return nil, perr.Newf(perr.KindBadRequest, "page: unknown reserved name %q", pid.Name)
	}
}

func isReservedPageName(name string) bool {
	switch name {
	case "_active", "_first", "_last":
		return true
	default:
		return false
	}
}

// pagesWithPrefix returns every page-bearing widget whose name begins
// with app+"/" (app-scoped, mirroring the source's prefix filter over
// page_owners), optionally narrowed to widgets under the named group
// (a TABBEDWINDOW/PANEHOST/TABHOST widget), in tree order.
func (w *Workspace) pagesWithPrefix(app, group string) []*Widget {
	var groupRoot *Widget
	if group != "" {
		gid, ok := w.groups[group]
		if !ok {
			return nil
		}
		groupRoot = w.widget(gid)
	}

	var out []*Widget
	root := w.Root()
	if groupRoot != nil {
		root = groupRoot
	}
	prefix := app + "/"
	Walk(root, func(wg *Widget) bool {
		if wg.kind.HasPage() && strings.HasPrefix(wg.name, prefix) {
			out = append(out, wg)
		}
		return true
	})
	return out
}
