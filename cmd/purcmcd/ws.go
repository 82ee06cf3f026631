package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/renderer"
)

// newWSServer builds the WebSocket listener that turns incoming
// connections into renderer endpoints. Clients identify themselves with
// ?app=...&runner=... query parameters, composed with the request host
// into the edpt://host/app/runner URI spec §6 defines; grounded on the
// teacher's upgrader/HandleWebSocket shape in pkg/server/server.go.
func newWSServer(addr string, rdr *renderer.Renderer, logger *slog.Logger) *http.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		app := r.URL.Query().Get("app")
		runner := r.URL.Query().Get("runner")
		if app == "" || runner == "" || strings.Contains(app, "/") || strings.Contains(runner, "/") {
			http.Error(w, "app and runner query parameters are required", http.StatusBadRequest)
			return
		}
		uri := fmt.Sprintf("edpt://%s/%s/%s", r.Host, app, runner)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "err", err)
			return
		}

		transport := protocol.NewWSTransport(conn)
		if _, err := rdr.Accept(uri, transport); err != nil {
			logger.Warn("endpoint accept failed", "uri", uri, "err", err)
			_ = transport.Close()
			return
		}
	})

	return &http.Server{Addr: addr, Handler: mux}
}
