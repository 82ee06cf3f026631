package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

type fakeTransport struct{}

func (fakeTransport) Recv() (*protocol.Message, error) { return nil, protocol.ErrClosed }
func (fakeTransport) Send(*protocol.Message) error     { return nil }
func (fakeTransport) Close() error                     { return nil }

type fakeSource struct{ reg *endpoint.Registry }

func (f fakeSource) Registry() *endpoint.Registry { return f.reg }

func TestHealthz(t *testing.T) {
	r := NewRouter(fakeSource{reg: endpoint.NewRegistry()}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestDebugEndpointsListsConnected(t *testing.T) {
	reg := endpoint.NewRegistry()
	_, err := reg.New("edpt://localhost/app/a", fakeTransport{}, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRouter(fakeSource{reg: reg}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/endpoints", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("debug/endpoints: code=%d", rec.Code)
	}
	var views []endpointView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].URI != "edpt://localhost/app/a" {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestDebugWorkspacesWithoutManagerIsUnavailable(t *testing.T) {
	r := NewRouter(fakeSource{reg: endpoint.NewRegistry()}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/workspaces", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestDebugWorkspacesListsManagerContents(t *testing.T) {
	m := workspace.NewManager()
	if _, err := m.Create("main", "Main", session.Handle(1)); err != nil {
		t.Fatal(err)
	}
	r := NewRouter(fakeSource{reg: endpoint.NewRegistry()}, m, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/workspaces", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("debug/workspaces: code=%d", rec.Code)
	}
	var views []workspaceView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Name != "main" {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestMetricsServesPrometheusFormat(t *testing.T) {
	r := NewRouter(fakeSource{reg: endpoint.NewRegistry()}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: code=%d", rec.Code)
	}
}
