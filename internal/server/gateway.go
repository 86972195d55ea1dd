// Package server dispatches inbound connection events into the relay core via
// the Gateway type, the single transport-agnostic boundary.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Gateway validates inbound frames and delegates to the registry, router,
// presence broadcaster, and typing coordinator. All dispatch runs under one
// mutex: registry mutation, routing with its history append, and the enqueue
// of outbound events form a single critical section, so operations are
// linearizable and history order matches delivery-attempt order. Handlers
// never block inside the lock; delivery is a non-blocking enqueue onto each
// connection's buffered send queue.
type Gateway struct {
	mutex    sync.Mutex
	registry *Registry
	router   *Router
	presence *Presence
	typing   *TypingCoordinator
	emitter  Emitter
}

// NewGateway wires the relay components behind a single dispatch boundary.
func NewGateway(registry *Registry, router *Router, presence *Presence, typing *TypingCoordinator, emitter Emitter) *Gateway {
	return &Gateway{
		registry: registry,
		router:   router,
		presence: presence,
		typing:   typing,
		emitter:  emitter,
	}
}

// HandleFrame decodes and dispatches one inbound frame from the connection.
// Malformed input is reported back to the originating connection only; a
// panic in dispatch is contained so one connection cannot take down the
// shared state or other sessions.
func (g *Gateway) HandleFrame(connID string, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic dispatching frame for %s: %v", connID, r)
			g.sendError(connID, errors.New("internal dispatch failure"))
		}
	}()

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		g.sendError(connID, fmt.Errorf("invalid JSON frame: %w", ErrMalformedPayload))
		return
	}

	switch frame.Type {
	case EventJoin:
		g.handleJoin(connID, frame)
	case EventSendMessage:
		g.handleSend(connID, frame)
	case EventTyping:
		g.handleTyping(connID, true)
	case EventStopTyping:
		g.handleTyping(connID, false)
	default:
		g.sendError(connID, fmt.Errorf("unknown event type %q: %w", frame.Type, ErrMalformedPayload))
	}
}

// HandleDisconnect runs the exactly-once cleanup for a closed connection:
// registry removal, an inferred typing stop, and the departure announcement.
func (g *Gateway) HandleDisconnect(connID string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	user := g.registry.Unregister(connID)
	g.typing.InferStop(connID, user)
	g.presence.OnLeave(user, g.registry.Count())
}

func (g *Gateway) handleJoin(connID string, frame inboundFrame) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	user, err := g.registry.Register(connID, frame.Username, frame.PublicKey)
	if err != nil {
		g.sendError(connID, err)
		return
	}

	replay := g.router.RecentHistory(ReplayCap)
	g.presence.OnJoin(user, g.registry.List(), replay, g.registry.Count())
	log.Printf("User %q joined on connection %s. Online users: %d", user.Username, connID, g.registry.Count())
}

func (g *Gateway) handleSend(connID string, frame inboundFrame) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if frame.Payload == "" {
		g.sendError(connID, fmt.Errorf("payload is required: %w", ErrMalformedPayload))
		return
	}

	msg, targets, err := g.router.Route(connID, frame.Payload, frame.RecipientID)
	if err != nil {
		g.sendError(connID, err)
		return
	}

	delivery := encodeEvent(ReceiveMessageEvent{
		Type:    EventReceiveMessage,
		Message: msg,
	})
	for _, target := range targets {
		g.emitter.SendTo(target, delivery)
	}
	g.emitter.SendTo(connID, encodeEvent(MessageSentEvent{
		Type:      EventMessageSent,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	}))
}

func (g *Gateway) handleTyping(connID string, started bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if started {
		g.typing.Start(connID)
	} else {
		g.typing.Stop(connID)
	}
}

// sendError reports a recoverable failure to the originating connection only.
// Errors are never broadcast to third parties.
func (g *Gateway) sendError(connID string, err error) {
	g.emitter.SendTo(connID, encodeEvent(ErrorEvent{
		Type:    EventError,
		Code:    errorCode(err),
		Message: err.Error(),
	}))
}
