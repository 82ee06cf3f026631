// Package httpapi exposes the renderer's debug/introspection HTTP
// surface: liveness, Prometheus metrics, and read-only JSON views of
// connected endpoints and workspaces (SPEC_FULL.md §6.2), grounded in
// the teacher's chi-based HTTP composition (test/integration/chi_test.go).
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/workspace"
)

// EndpointSource is the subset of *renderer.Renderer this package
// needs. A narrow interface instead of importing pkg/renderer directly
// avoids a dependency cycle, since renderer's own tests may one day
// want to exercise this package against a fake.
type EndpointSource interface {
	Registry() *endpoint.Registry
}

// NewRouter builds the debug/metrics HTTP surface. workspaces may be
// nil if the active backend does not expose one (/debug/workspaces then
// answers 503); registry defaults to prometheus.DefaultGatherer when
// metricsRegistry is nil.
func NewRouter(src EndpointSource, workspaces *workspace.Manager, metricsRegistry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", handleHealthz)

	if metricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/debug/endpoints", handleDebugEndpoints(src))
	r.Get("/debug/workspaces", handleDebugWorkspaces(workspaces))

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type endpointView struct {
	URI        string    `json:"uri"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeen   time.Time `json:"lastSeen"`
	HasSession bool      `json:"hasSession"`
}

func handleDebugEndpoints(src EndpointSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var views []endpointView
		src.Registry().ForEachOldestFirst(func(ep *endpoint.Endpoint) bool {
			views = append(views, endpointView{
				URI:        ep.URI,
				CreatedAt:  ep.CreatedAt,
				LastSeen:   ep.LastSeen,
				HasSession: ep.Session != nil,
			})
			return true
		})
		writeJSON(w, views)
	}
}

type workspaceView struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	WidgetCount int    `json:"widgetCount"`
}

func handleDebugWorkspaces(manager *workspace.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			http.Error(w, "active backend exposes no workspace manager", http.StatusServiceUnavailable)
			return
		}
		all := manager.All()
		views := make([]workspaceView, 0, len(all))
		for _, ws := range all {
			views = append(views, workspaceView{Name: ws.Name, Title: ws.Title, WidgetCount: ws.WidgetCount()})
		}
		writeJSON(w, views)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
