// Package server exposes the HTTP surface: the WebSocket upgrade endpoint,
// health check, and stateless read projections of history and presence.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// WebSocketHandler handles WebSocket upgrade requests. It validates the
// request method and origin, upgrades the connection, mints a fresh
// connection id, and registers the client with the hub, which launches the
// read/write pumps.
func (r *Relay) WebSocketHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, r.hub, r.gateway, uuid.NewString(), req.RemoteAddr, r.cfg)
	// Don't block on the register channel when the hub is shutting down.
	select {
	case r.hub.register <- client:
	case <-r.hub.ctx.Done():
		client.close()
	}
}

// HistoryHandler serves the most recent message backlog as JSON. It is a pure
// projection of history state with no side effects.
func (r *Relay) HistoryHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"messages": r.router.RecentHistory(SnapshotCap),
	})
}

// UsersHandler serves the current online-user list as JSON. It is a pure
// projection of registry state with no side effects.
func (r *Relay) UsersHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"users":      r.registry.List(),
		"totalUsers": r.registry.Count(),
	})
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the relay is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat relay server is running!")
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
