// Package server wires HTTP handlers into a router for the chat relay
// application via routing helpers.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures and returns a router with all application routes:
// health check, WebSocket endpoint, and the read-only history and presence
// projections.
func SetupRoutes(relay *Relay) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws", relay.WebSocketHandler)
	router.HandleFunc("/history", relay.HistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/users", relay.UsersHandler).Methods(http.MethodGet)
	return router
}
