// Package server retains a bounded in-memory message backlog via the History
// type. The backlog lives for the server process and resets on restart.
package server

import "sync"

// Retention limits for the message backlog.
const (
	// HistoryCap is the maximum number of messages kept in memory.
	HistoryCap = 100
	// ReplayCap is the slice of the backlog replayed to a newly joined user.
	ReplayCap = 30
	// SnapshotCap is the slice served by the HTTP history endpoint.
	SnapshotCap = 50
)

// History is a bounded FIFO of messages, oldest first. Insertion past the cap
// evicts the oldest entry.
type History struct {
	mutex    sync.Mutex
	cap      int
	messages []*Message
}

// NewHistory creates an empty history bounded at the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCap
	}
	return &History{
		cap:      capacity,
		messages: make([]*Message, 0, capacity),
	}
}

// Append adds a message to the tail, evicting the oldest entry when full.
func (h *History) Append(msg *Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.messages) == h.cap {
		copy(h.messages, h.messages[1:])
		h.messages = h.messages[:h.cap-1]
	}
	h.messages = append(h.messages, msg)
}

// Recent returns the most recent limit messages, oldest first. The returned
// slice is a copy; history entries themselves are immutable.
func (h *History) Recent(limit int) []*Message {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if limit <= 0 || limit > len(h.messages) {
		limit = len(h.messages)
	}
	recent := make([]*Message, limit)
	copy(recent, h.messages[len(h.messages)-limit:])
	return recent
}

// Len returns the current number of retained messages.
func (h *History) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.messages)
}
