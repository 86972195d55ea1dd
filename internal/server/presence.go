// Package server fans presence changes out to the right audience via the
// Presence type, a stateless reaction to registry mutation.
package server

// Emitter delivers encoded events to live connections. The hub implements it;
// tests substitute a recording fake.
type Emitter interface {
	SendTo(connID string, payload []byte)
	SendToAll(payload []byte)
	SendToAllExcept(connID string, payload []byte)
}

// Presence emits join and leave events. It holds no state of its own; the
// caller supplies the roster, replay slice, and total taken under the gateway
// lock so every observer sees presence changes in a consistent order.
type Presence struct {
	emitter Emitter
}

// NewPresence creates a presence broadcaster over the given emitter.
func NewPresence(emitter Emitter) *Presence {
	return &Presence{emitter: emitter}
}

// OnJoin announces a new user to everyone else and primes the joiner with the
// online roster and the history replay. The joiner's roster and replay are
// queued before any later message can be routed to it, so a new session always
// sees backlog before live traffic.
func (p *Presence) OnJoin(user *User, online []*User, replay []*Message, total int) {
	if user == nil {
		return
	}

	p.emitter.SendToAllExcept(user.ID, encodeEvent(UserConnectedEvent{
		Type:       EventUserConnected,
		UserID:     user.ID,
		Username:   user.Username,
		TotalUsers: total,
	}))
	p.emitter.SendTo(user.ID, encodeEvent(OnlineUsersEvent{
		Type:  EventOnlineUsers,
		Users: online,
	}))
	p.emitter.SendTo(user.ID, encodeEvent(MessageHistoryEvent{
		Type:     EventMessageHistory,
		Messages: replay,
	}))
}

// OnLeave announces a departure to all remaining connections. A nil user means
// the connection closed before ever joining, which is a no-op.
func (p *Presence) OnLeave(user *User, total int) {
	if user == nil {
		return
	}

	p.emitter.SendToAll(encodeEvent(UserDisconnectedEvent{
		Type:       EventUserDisconnected,
		UserID:     user.ID,
		Username:   user.Username,
		TotalUsers: total,
	}))
}
