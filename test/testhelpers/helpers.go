// Package testhelpers provides common utilities and helper functions for
// testing the chat relay server.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests. It provides a recording emitter for component tests,
// relay construction with test-friendly limits, and WebSocket helpers for
// driving the wire protocol in integration tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Soham172005/cns-project/internal/server"
)

// RecordedEvent captures one delivery made through the RecordingEmitter.
// Scope distinguishes targeted sends from fan-outs.
type RecordedEvent struct {
	Scope    string // "to", "all", or "except"
	ConnID   string // target for "to", excluded id for "except"
	RawEvent []byte
}

// Decoded unmarshals the recorded payload into a generic map.
func (e RecordedEvent) Decoded(t *testing.T) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(e.RawEvent, &decoded); err != nil {
		t.Fatalf("Failed to decode recorded event %q: %v", e.RawEvent, err)
	}
	return decoded
}

// Type returns the wire type of the recorded event.
func (e RecordedEvent) Type(t *testing.T) string {
	t.Helper()
	eventType, _ := e.Decoded(t)["type"].(string)
	return eventType
}

// RecordingEmitter implements the relay's delivery interface and records
// every emission for assertions. Safe for concurrent use.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// NewRecordingEmitter creates an empty recording emitter.
func NewRecordingEmitter() *RecordingEmitter {
	return &RecordingEmitter{}
}

// SendTo records a delivery targeted at one connection.
func (r *RecordingEmitter) SendTo(connID string, payload []byte) {
	r.record(RecordedEvent{Scope: "to", ConnID: connID, RawEvent: payload})
}

// SendToAll records a fan-out to every connection.
func (r *RecordingEmitter) SendToAll(payload []byte) {
	r.record(RecordedEvent{Scope: "all", RawEvent: payload})
}

// SendToAllExcept records a fan-out excluding one connection.
func (r *RecordingEmitter) SendToAllExcept(connID string, payload []byte) {
	r.record(RecordedEvent{Scope: "except", ConnID: connID, RawEvent: payload})
}

func (r *RecordingEmitter) record(event RecordedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a snapshot of everything recorded so far.
func (r *RecordingEmitter) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}

// Reset discards all recorded events.
func (r *RecordingEmitter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// NewTestConfig returns a relay configuration with limits loose enough that
// scenario tests never trip the per-connection rate limiter.
func NewTestConfig() *server.Config {
	cfg := server.NewConfig()
	cfg.RateLimit.Burst = 1000
	return cfg
}

// StartTestRelay constructs a running relay plus an HTTP test server exposing
// its routes. Both are torn down via t.Cleanup.
func StartTestRelay(t *testing.T) (*server.Relay, *httptest.Server) {
	t.Helper()
	return StartTestRelayWithConfig(t, NewTestConfig())
}

// StartTestRelayWithConfig is StartTestRelay with a caller-supplied config.
func StartTestRelayWithConfig(t *testing.T, cfg *server.Config) (*server.Relay, *httptest.Server) {
	t.Helper()

	relay := server.NewRelay(cfg)
	relay.Start()

	testServer := httptest.NewServer(server.SetupRoutes(relay))

	t.Cleanup(func() {
		testServer.Close()
		if err := relay.Shutdown(2 * time.Second); err != nil {
			t.Logf("Relay shutdown returned: %v", err)
		}
	})

	return relay, testServer
}

// WebSocketURL rewrites an httptest server URL into its ws:// endpoint.
func WebSocketURL(testServer *httptest.Server) string {
	return "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
}

// ConnectWebSocket creates a WebSocket connection to the specified URL and
// registers cleanup. It fails the test if the dial does not succeed.
func ConnectWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, err := DialWebSocket(url, "http://localhost:8080")
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// DialWebSocket dials the WebSocket endpoint with the given Origin header.
// An empty origin omits the header, as a non-browser client would.
func DialWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendFrame sends a JSON frame over the WebSocket connection.
func SendFrame(t *testing.T, conn *websocket.Conn, frame map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("Failed to send frame %v: %v", frame, err)
	}
}

// Join sends a join frame for the given display name.
func Join(t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()
	SendFrame(t, conn, map[string]any{"type": "join", "username": username})
}

// SendChat sends a send_message frame. An empty recipientID broadcasts.
func SendChat(t *testing.T, conn *websocket.Conn, payload, recipientID string) {
	t.Helper()
	frame := map[string]any{"type": "send_message", "payload": payload}
	if recipientID != "" {
		frame["recipientId"] = recipientID
	}
	SendFrame(t, conn, frame)
}

// ReadEvent reads the next JSON event from the connection with a deadline.
func ReadEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var event map[string]any
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return event
}

// WaitForEvent reads events until one of the wanted type arrives, failing the
// test if the read deadline expires first. Events of other types are skipped,
// which keeps scenario tests independent of presence/typing interleaving.
func WaitForEvent(t *testing.T, conn *websocket.Conn, eventType string) map[string]any {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		event := ReadEvent(t, conn)
		if event["type"] == eventType {
			return event
		}
	}
	t.Fatalf("Timed out waiting for %q event", eventType)
	return nil
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}
