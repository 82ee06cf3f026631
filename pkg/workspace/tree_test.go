package workspace

import (
	"testing"

	"github.com/hvml/purcmc-go/pkg/session"
)

func TestAppendPrependOrdering(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()

	a := w.NewWidget(KindContainer, "a", 2)
	b := w.NewWidget(KindContainer, "b", 3)
	c := w.NewWidget(KindContainer, "c", 4)

	w.AppendChild(root, a)
	w.AppendChild(root, c)
	w.PrependChild(root, b)

	var names []string
	for cur := root.FirstChild(); cur != nil; cur = cur.NextSibling() {
		names = append(names, cur.Name())
	}
	want := []string{"b", "a", "c"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()

	a := w.NewWidget(KindContainer, "a", 2)
	b := w.NewWidget(KindContainer, "b", 3)
	w.AppendChild(root, a)
	w.AppendChild(root, b)

	before := w.NewWidget(KindContainer, "before-a", 4)
	w.InsertBefore(a, before)

	after := w.NewWidget(KindContainer, "after-a", 5)
	w.InsertAfter(a, after)

	var names []string
	for cur := root.FirstChild(); cur != nil; cur = cur.NextSibling() {
		names = append(names, cur.Name())
	}
	want := []string{"before-a", "a", "after-a", "b"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestGetRootAndWorkspaceBackPointer(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()

	parent := w.NewWidget(KindContainer, "parent", 2)
	child := w.NewWidget(KindContainer, "child", 3)
	w.AppendChild(root, parent)
	w.AppendChild(parent, child)

	if child.GetRoot() != root {
		t.Fatalf("expected child's root to be the workspace root")
	}
	if child.Workspace() != w {
		t.Fatalf("expected child's workspace to be w")
	}
}

func TestDestroyWidgetFreesSubtreeAndPageOwners(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()

	win := w.NewWidget(KindPlainWindow, "app/win1", 2)
	w.AppendChild(root, win)
	pane := w.NewWidget(KindPanedPage, "app/win1/pane1", 3)
	w.AppendChild(win, pane)

	if _, ok := w.PageOwners["app/win1"]; !ok {
		t.Fatal("expected page owners entry for win")
	}
	if _, ok := w.PageOwners["app/win1/pane1"]; !ok {
		t.Fatal("expected page owners entry for pane")
	}

	w.DestroyWidget(win)

	if w.FindWidget("app/win1") != nil || w.FindWidget("app/win1/pane1") != nil {
		t.Fatal("expected both widgets gone after deep delete")
	}
	if _, ok := w.PageOwners["app/win1"]; ok {
		t.Fatal("expected page owners entry removed for win")
	}
	if _, ok := w.PageOwners["app/win1/pane1"]; ok {
		t.Fatal("expected page owners entry removed for pane")
	}
}

func TestDestroyWidgetNeverRemovesRoot(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()
	w.DestroyWidget(root)
	if w.Root() != root {
		t.Fatal("expected root to survive DestroyWidget")
	}
}

func TestManagerReservedWorkspaceNames(t *testing.T) {
	m := NewManager()
	first, err := m.Create("ws1", "First", session.Handle(1))
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Create("ws2", "Second", session.Handle(2))
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := m.Resolve("_first"); got != first {
		t.Fatalf("expected _first to resolve to ws1, got %v", got)
	}
	if got, _ := m.Resolve("_last"); got != second {
		t.Fatalf("expected _last to resolve to ws2, got %v", got)
	}
	if got, _ := m.Resolve("_default"); got != first {
		t.Fatalf("expected _default to resolve to ws1, got %v", got)
	}

	m.SetActive(second)
	if got, _ := m.Resolve("_active"); got != second {
		t.Fatalf("expected _active to resolve to ws2, got %v", got)
	}
}

func TestManagerRejectsReservedAndDuplicateNames(t *testing.T) {
	m := NewManager()
	if _, err := m.Create("_default", "x", 1); err == nil {
		t.Fatal("expected reserved name to be rejected")
	}
	if _, err := m.Create("ws1", "x", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("ws1", "y", 2); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
}

func TestResolvePageByLiteralName(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()
	win := w.NewWidget(KindPlainWindow, "myapp/main", 2)
	w.AppendChild(root, win)

	got, err := w.ResolvePage("myapp/main")
	if err != nil {
		t.Fatal(err)
	}
	if got != win {
		t.Fatalf("expected to resolve myapp/main to win")
	}
}

func TestResolvePageReservedNamesByPrefix(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()
	a := w.NewWidget(KindPlainWindow, "myapp/a", 2)
	b := w.NewWidget(KindPlainWindow, "myapp/b", 3)
	other := w.NewWidget(KindPlainWindow, "otherapp/c", 4)
	w.AppendChild(root, a)
	w.AppendChild(root, b)
	w.AppendChild(root, other)

	first, err := w.ResolvePage("myapp/_first")
	if err != nil {
		t.Fatal(err)
	}
	if first != a {
		t.Fatalf("expected myapp/_first to resolve to a, got %v", first)
	}

	last, err := w.ResolvePage("myapp/_last")
	if err != nil {
		t.Fatal(err)
	}
	if last != b {
		t.Fatalf("expected myapp/_last to resolve to b, got %v", last)
	}
}

func TestResolvePageGroupScoping(t *testing.T) {
	w := New("default", "Default", 1)
	root := w.Root()
	tabwin := w.NewWidget(KindTabbedWindow, "tabs", 2)
	w.AppendChild(root, tabwin)
	tab1 := w.NewWidget(KindTabbedPage, "myapp/t1", 3)
	w.AppendChild(tabwin, tab1)

	outside := w.NewWidget(KindPlainWindow, "myapp/outside", 4)
	w.AppendChild(root, outside)

	got, err := w.ResolvePage("myapp/_first@tabs")
	if err != nil {
		t.Fatal(err)
	}
	if got != tab1 {
		t.Fatalf("expected group-scoped resolution to find tab1, got %v", got)
	}
}
