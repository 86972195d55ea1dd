// Package server declares the JSON wire protocol exchanged with chat clients
// over the WebSocket connection.
package server

import (
	"encoding/json"
	"log"
	"time"
)

// Inbound event types accepted from clients.
const (
	EventJoin        = "join"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
)

// Outbound event types emitted to clients.
const (
	EventUserConnected     = "user_connected"
	EventOnlineUsers       = "online_users"
	EventMessageHistory    = "message_history"
	EventReceiveMessage    = "receive_message"
	EventMessageSent       = "message_sent"
	EventUserDisconnected  = "user_disconnected"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventError             = "error"
)

// inboundFrame is the superset of all client-to-server frames. The Type field
// selects which of the remaining fields are meaningful.
type inboundFrame struct {
	Type        string `json:"type"`
	Username    string `json:"username,omitempty"`
	PublicKey   string `json:"publicKey,omitempty"`
	Payload     string `json:"payload,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
}

// UserConnectedEvent announces a freshly joined user to the other connections.
type UserConnectedEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	TotalUsers int    `json:"totalUsers"`
}

// OnlineUsersEvent carries the full online roster to a newly joined user.
type OnlineUsersEvent struct {
	Type  string  `json:"type"`
	Users []*User `json:"users"`
}

// MessageHistoryEvent replays the recent message backlog to a newly joined user.
type MessageHistoryEvent struct {
	Type     string     `json:"type"`
	Messages []*Message `json:"messages"`
}

// ReceiveMessageEvent delivers a routed message to its target connections.
type ReceiveMessageEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

// MessageSentEvent acknowledges an accepted send to the sender only.
type MessageSentEvent struct {
	Type      string    `json:"type"`
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

// UserDisconnectedEvent announces a departure to the remaining connections.
type UserDisconnectedEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	TotalUsers int    `json:"totalUsers"`
}

// UserTypingEvent relays a typing-started signal to the other connections.
type UserTypingEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// UserStoppedTypingEvent relays a typing-stopped signal to the other connections.
type UserStoppedTypingEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ErrorEvent reports a recoverable failure to the originating connection only.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// encodeEvent marshals an outbound event. Marshal failures indicate a
// programming error in the event structs, so they are logged and swallowed.
func encodeEvent(event any) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode outbound event %T: %v", event, err)
		return nil
	}
	return data
}
