// Package server relays ephemeral typing signals via the TypingCoordinator.
// Typing state is never persisted and never enters the message history.
package server

import (
	"sync"
	"time"
)

// TypingExpiry is the quiet interval after which clients auto-clear a typing
// indicator. The server relays raw start/stop signals and keeps no timer of
// its own; the receiving side owns the timeout.
const TypingExpiry = 3 * time.Second

// TypingCoordinator fans typing signals out to the other connections. The
// channel is at-least-once, not exactly-once: every signal is relayed
// unconditionally and receivers de-duplicate via their own indicator timeout.
type TypingCoordinator struct {
	mutex    sync.Mutex
	registry *Registry
	emitter  Emitter
	active   map[string]bool
}

// NewTypingCoordinator creates a coordinator over the given registry and emitter.
func NewTypingCoordinator(registry *Registry, emitter Emitter) *TypingCoordinator {
	return &TypingCoordinator{
		registry: registry,
		emitter:  emitter,
		active:   make(map[string]bool),
	}
}

// Start relays a typing-started signal to all other connections. Signals from
// unregistered connections are dropped silently; typing is best-effort and
// racy by nature.
func (t *TypingCoordinator) Start(connID string) {
	user, ok := t.registry.Get(connID)
	if !ok {
		return
	}

	t.mutex.Lock()
	t.active[connID] = true
	t.mutex.Unlock()

	t.emitter.SendToAllExcept(connID, encodeEvent(UserTypingEvent{
		Type:     EventUserTyping,
		UserID:   user.ID,
		Username: user.Username,
	}))
}

// Stop relays a typing-stopped signal to all other connections. Unregistered
// connections are a silent no-op.
func (t *TypingCoordinator) Stop(connID string) {
	user, ok := t.registry.Get(connID)
	if !ok {
		return
	}

	t.mutex.Lock()
	delete(t.active, connID)
	t.mutex.Unlock()

	t.emitter.SendToAllExcept(connID, encodeEvent(UserStoppedTypingEvent{
		Type:   EventUserStoppedTyping,
		UserID: user.ID,
	}))
}

// InferStop emits a final typing-stopped signal when a user disconnects while
// last known typing, so peers never keep a stuck indicator. Called after the
// user has already been unregistered; user may be nil for a connection that
// never joined.
func (t *TypingCoordinator) InferStop(connID string, user *User) {
	t.mutex.Lock()
	wasTyping := t.active[connID]
	delete(t.active, connID)
	t.mutex.Unlock()

	if !wasTyping || user == nil {
		return
	}

	t.emitter.SendToAllExcept(connID, encodeEvent(UserStoppedTypingEvent{
		Type:   EventUserStoppedTyping,
		UserID: user.ID,
	}))
}
