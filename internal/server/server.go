// Package server constructs and runs the chat relay: component wiring, HTTP
// server construction, and graceful shutdown helpers.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Relay owns one complete instance of the chat relay core: registry, history,
// router, presence broadcaster, typing coordinator, gateway, and hub. State
// lives for the server process and resets on restart; all mutation goes
// through the component operations, never through shared globals.
type Relay struct {
	cfg      *Config
	origins  *originPolicy
	upgrader websocket.Upgrader
	registry *Registry
	history  *History
	router   *Router
	gateway  *Gateway
	hub      *Hub
}

// NewRelay wires a relay from the given configuration.
func NewRelay(cfg *Config) *Relay {
	if cfg == nil {
		cfg = NewConfig()
	}
	cfg.sanitize()

	registry := NewRegistry()
	history := NewHistory(HistoryCap)
	router := NewRouter(registry, history)
	hub := NewHub()
	presence := NewPresence(hub)
	typing := NewTypingCoordinator(registry, hub)
	gateway := NewGateway(registry, router, presence, typing, hub)
	hub.setGateway(gateway)

	origins := newOriginPolicy(cfg.AllowedOrigins)
	return &Relay{
		cfg:     cfg,
		origins: origins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		registry: registry,
		history:  history,
		router:   router,
		gateway:  gateway,
		hub:      hub,
	}
}

// Start launches the hub run loop. Call before serving HTTP traffic.
func (r *Relay) Start() {
	go r.hub.Run()
	log.Println("Hub started and ready to manage WebSocket connections")
}

// Shutdown gracefully stops the hub, closing all client connections.
func (r *Relay) Shutdown(timeout time.Duration) error {
	return r.hub.Shutdown(timeout)
}

// GetHub returns the relay's hub for connection management and tests.
func (r *Relay) GetHub() *Hub {
	return r.hub
}

// GetGateway returns the relay's dispatch gateway.
func (r *Relay) GetGateway() *Gateway {
	return r.gateway
}

// GetRegistry returns the relay's connection registry.
func (r *Relay) GetRegistry() *Registry {
	return r.registry
}

// GetRouter returns the relay's message router.
func (r *Relay) GetRouter() *Router {
	return r.router
}

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	fmt.Printf("Server listening on port %s\n", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active connections.
// It waits for active connections to close or until the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}
