// Package server defines the shared chat data model and utility helpers that
// are reused across registry, router, and hub logic.
package server

import (
	"strings"
	"time"
)

// Delivery classes for a routed message.
const (
	KindBroadcast = "broadcast"
	KindDirect    = "direct"
)

// User is a registered chat participant bound to exactly one live connection.
// The PublicKey blob is opaque to the relay; clients use it for their own
// end-to-end encryption handshake.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	PublicKey string    `json:"publicKey,omitempty"`
	JoinedAt  time.Time `json:"-"`

	seq uint64
}

// Message is an immutable record created by the router on a validated send.
// Payload is an uninterpreted blob; the relay never looks inside it.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	Payload     string    `json:"payload"`
	RecipientID string    `json:"recipientId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
