// Package server coordinates connection registration, event fan-out, and
// connection cleanup for the chat relay via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// Hub owns the set of live WebSocket connections keyed by connection id and
// performs all outbound delivery. It maintains client registration and
// unregistration through its run loop and ensures thread-safe fan-out through
// mutex protection. The hub knows nothing about users or chat semantics; the
// gateway owns those.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	gateway    *Gateway
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary
// channels and the connection map. Wire a gateway with setGateway before
// running it.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

func (h *Hub) setGateway(gateway *Gateway) {
	h.gateway = gateway
}

// GetRegisterChan returns the channel used for registering new connections.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering connections.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Run starts the hub's main event loop, handling connection registration and
// unregistration. This method should be called in a separate goroutine as it
// runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Connection %s opened from %s. Total connections: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				// Close the channel after releasing the lock
				close(client.send)
				log.Printf("Connection %s closed. Total connections: %d", client.id, clientCount)

				// The map check above makes cleanup run exactly once per
				// connection even when close races an in-flight frame.
				if h.gateway != nil {
					h.gateway.HandleDisconnect(client.id)
				}
			} else {
				h.mutex.Unlock()
			}
		}
	}
}

// SendTo enqueues an encoded event for a single connection. Unknown ids are
// dropped; a full send buffer closes the connection so the slow consumer is
// evicted through the normal disconnect path.
func (h *Hub) SendTo(connID string, payload []byte) {
	if payload == nil {
		return
	}

	h.mutex.RLock()
	client := h.clients[connID]
	h.mutex.RUnlock()
	if client == nil {
		return
	}
	if !h.trySend(client, payload) {
		h.evict(client)
	}
}

// SendToAll enqueues an encoded event for every live connection.
func (h *Hub) SendToAll(payload []byte) {
	h.SendToAllExcept("", payload)
}

// SendToAllExcept enqueues an encoded event for every live connection apart
// from the excluded one.
func (h *Hub) SendToAllExcept(exceptID string, payload []byte) {
	if payload == nil {
		return
	}

	var stalled []*Client
	for _, client := range h.clientSnapshot() {
		if client.id == exceptID {
			continue
		}
		if !h.trySend(client, payload) {
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		h.evict(client)
	}
}

func (h *Hub) trySend(client *Client, payload []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in trySend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent racing the
	// unregister path, which closes the send channel.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[client.id]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// evict force-closes the underlying connection of a client whose send buffer
// is full. The read pump then fails and drives the regular unregister path,
// so registry cleanup and the departure announcement still happen.
func (h *Hub) evict(client *Client) {
	log.Printf("Connection %s evicted due to full send buffer", client.id)
	client.close()
}

func (h *Hub) clientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	clients := h.clientSnapshot()
	for _, client := range clients {
		client.close()
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines
// to complete. It returns after all client connections are closed and
// goroutines have finished, or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
