package workspace

// AppendChild attaches child as the last child of parent. child must be
// freshly allocated via NewWidget and not yet attached anywhere.
func (w *Workspace) AppendChild(parent, child *Widget) {
	child.parent = parent.id
	if parent.lastChild == noID {
		parent.firstChild = child.id
		parent.lastChild = child.id
		child.prevSibling = noID
		child.nextSibling = noID
		return
	}
	last := w.widget(parent.lastChild)
	last.nextSibling = child.id
	child.prevSibling = last.id
	child.nextSibling = noID
	parent.lastChild = child.id
}

// PrependChild attaches child as the first child of parent.
func (w *Workspace) PrependChild(parent, child *Widget) {
	child.parent = parent.id
	if parent.firstChild == noID {
		parent.firstChild = child.id
		parent.lastChild = child.id
		child.prevSibling = noID
		child.nextSibling = noID
		return
	}
	first := w.widget(parent.firstChild)
	first.prevSibling = child.id
	child.nextSibling = first.id
	child.prevSibling = noID
	parent.firstChild = child.id
}

// InsertBefore attaches child immediately before sibling, under
// sibling's current parent.
func (w *Workspace) InsertBefore(sibling, child *Widget) {
	parent := sibling.Parent()
	child.parent = sibling.parent

	if sibling.prevSibling == noID {
		w.PrependChild(parent, child)
		return
	}
	prev := w.widget(sibling.prevSibling)
	prev.nextSibling = child.id
	child.prevSibling = prev.id
	child.nextSibling = sibling.id
	sibling.prevSibling = child.id
}

// InsertAfter attaches child immediately after sibling, under
// sibling's current parent.
func (w *Workspace) InsertAfter(sibling, child *Widget) {
	parent := sibling.Parent()
	child.parent = sibling.parent

	if sibling.nextSibling == noID {
		w.AppendChild(parent, child)
		return
	}
	next := w.widget(sibling.nextSibling)
	next.prevSibling = child.id
	child.nextSibling = next.id
	child.prevSibling = sibling.id
	sibling.nextSibling = child.id
}

// Detach unlinks w from its parent and siblings without freeing it or
// its subtree; w becomes the root of its own (unattached) tree. Used
// when a widget is moved rather than destroyed.
func (w *Workspace) Detach(wg *Widget) {
	if wg.parent != noID {
		parent := w.widget(wg.parent)
		if parent.firstChild == wg.id {
			parent.firstChild = wg.nextSibling
		}
		if parent.lastChild == wg.id {
			parent.lastChild = wg.prevSibling
		}
	}
	if wg.prevSibling != noID {
		w.widget(wg.prevSibling).nextSibling = wg.nextSibling
	}
	if wg.nextSibling != noID {
		w.widget(wg.nextSibling).prevSibling = wg.prevSibling
	}
	wg.parent = noID
	wg.prevSibling = noID
	wg.nextSibling = noID
}

// DestroyWidget detaches wg and frees its entire subtree (post-order),
// releasing each freed widget's page-ownership and group-index entries.
// The root widget itself can never be destroyed (spec §4.4 invariant).
func (w *Workspace) DestroyWidget(wg *Widget) {
	if wg.id == w.rootID {
		return
	}
	w.Detach(wg)
	w.deepFree(wg)
}

func (w *Workspace) deepFree(wg *Widget) {
	for c := wg.FirstChild(); c != nil; {
		next := c.NextSibling()
		w.deepFree(c)
		c = next
	}
	if wg.kind.HasPage() {
		delete(w.PageOwners, wg.name)
	}
	if wg.kind == KindTabbedWindow || wg.kind == KindPaneHost || wg.kind == KindTabHost {
		delete(w.groups, wg.name)
	}
	wg.freed = true
	wg.firstChild = noID
	wg.lastChild = noID
}

// Walk visits every live widget in the subtree rooted at wg, pre-order.
// When fn returns false for a widget, that widget's descendants are
// skipped; the walk goes on with its following siblings.
func Walk(wg *Widget, fn func(*Widget) bool) {
	if wg == nil || !fn(wg) {
		return
	}
	for c := wg.FirstChild(); c != nil; c = c.NextSibling() {
		Walk(c, fn)
	}
}
