// Package server decides unicast versus broadcast delivery via the Router
// type, which stamps messages with identity, id, and timestamp and enforces
// the bounded history.
package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Router resolves senders and recipients against the registry, constructs
// immutable messages, and appends them to history. Route calls are serialized
// by the router's own mutex so that history order always matches the order in
// which sends were accepted.
type Router struct {
	mutex    sync.Mutex
	registry *Registry
	history  *History
}

// NewRouter creates a router over the given registry and history.
func NewRouter(registry *Registry, history *History) *Router {
	return &Router{
		registry: registry,
		history:  history,
	}
}

// Route validates a send request and, on success, records the message and
// returns it together with the connection ids it must be delivered to.
// An empty recipientID selects broadcast delivery to every online connection,
// including the sender, whose own echo arrives through the same fan-out.
// Failed routes never mutate history.
func (rt *Router) Route(senderID, payload, recipientID string) (*Message, []string, error) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()

	sender, ok := rt.registry.Get(senderID)
	if !ok {
		return nil, nil, ErrSenderNotRegistered
	}

	var targets []string
	kind := KindBroadcast
	if recipientID != "" {
		if _, ok := rt.registry.Get(recipientID); !ok {
			return nil, nil, ErrRecipientNotFound
		}
		kind = KindDirect
		targets = []string{recipientID}
	} else {
		targets = rt.registry.IDs()
	}

	msg := &Message{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.Username,
		Payload:     payload,
		RecipientID: recipientID,
		Timestamp:   time.Now().UTC(),
		Kind:        kind,
	}
	rt.history.Append(msg)
	return msg, targets, nil
}

// RecentHistory returns the most recent limit messages, oldest first.
func (rt *Router) RecentHistory(limit int) []*Message {
	return rt.history.Recent(limit)
}
