// Package integration contains integration tests for the chat relay server.
package integration

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Soham172005/cns-project/test/testhelpers"
)

// TestPermissiveOriginPolicyByDefault verifies that the default configuration
// accepts any browser origin and connections without an Origin header.
func TestPermissiveOriginPolicyByDefault(t *testing.T) {
	_, testServer := testhelpers.StartTestRelay(t)
	wsURL := testhelpers.WebSocketURL(testServer)

	tests := []struct {
		name   string
		origin string
	}{
		{name: "arbitrary origin", origin: "http://anywhere.example.com"},
		{name: "no origin header", origin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := testhelpers.DialWebSocket(wsURL, tt.origin)
			if err != nil {
				t.Fatalf("Expected connection to succeed, got %v", err)
			}
			_ = conn.Close()
		})
	}
}

// TestRestrictedOriginPolicy verifies that a configured allow-list blocks
// disallowed browser origins while still admitting listed ones and
// non-browser clients.
func TestRestrictedOriginPolicy(t *testing.T) {
	cfg := testhelpers.NewTestConfig()
	cfg.AllowedOrigins = []string{"http://allowed.example.com"}

	_, testServer := testhelpers.StartTestRelayWithConfig(t, cfg)
	wsURL := testhelpers.WebSocketURL(testServer)

	if conn, err := testhelpers.DialWebSocket(wsURL, "http://allowed.example.com"); err != nil {
		t.Errorf("Expected allowed origin to connect, got %v", err)
	} else {
		_ = conn.Close()
	}

	if conn, err := testhelpers.DialWebSocket(wsURL, "http://evil.example.com"); err == nil {
		_ = conn.Close()
		t.Error("Expected disallowed origin to be rejected")
	}

	// Non-browser clients omit the Origin header and are always admitted.
	if conn, err := testhelpers.DialWebSocket(wsURL, ""); err != nil {
		t.Errorf("Expected originless client to connect, got %v", err)
	} else {
		_ = conn.Close()
	}
}

// TestOriginComparisonIsCaseInsensitive verifies origin normalization:
// scheme and host comparison must ignore case.
func TestOriginComparisonIsCaseInsensitive(t *testing.T) {
	cfg := testhelpers.NewTestConfig()
	cfg.AllowedOrigins = []string{"http://Allowed.Example.com"}

	_, testServer := testhelpers.StartTestRelayWithConfig(t, cfg)

	conn, err := testhelpers.DialWebSocket(testhelpers.WebSocketURL(testServer), "HTTP://ALLOWED.EXAMPLE.COM")
	if err != nil {
		t.Fatalf("Expected case-insensitive origin match, got %v", err)
	}
	_ = conn.Close()
}

// TestOversizedFrameClosesConnection verifies that a frame beyond the
// configured read limit terminates the offending connection without touching
// other sessions.
func TestOversizedFrameClosesConnection(t *testing.T) {
	cfg := testhelpers.NewTestConfig()
	cfg.MaxMessageSize = 64

	relay, testServer := testhelpers.StartTestRelayWithConfig(t, cfg)
	wsURL := testhelpers.WebSocketURL(testServer)

	victim := testhelpers.ConnectWebSocket(t, wsURL)
	testhelpers.Join(t, victim, "victim")
	testhelpers.WaitForEvent(t, victim, "online_users")

	offender := testhelpers.ConnectWebSocket(t, wsURL)
	oversized := make([]byte, 256)
	for i := range oversized {
		oversized[i] = 'a'
	}
	if err := offender.WriteMessage(websocket.TextMessage, oversized); err != nil {
		t.Fatalf("Failed to write oversized frame: %v", err)
	}

	// The offender's connection dies; the victim's session is untouched.
	if err := offender.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	closed := false
	for i := 0; i < 5; i++ {
		if _, _, err := offender.ReadMessage(); err != nil {
			closed = true
			break
		}
	}
	if !closed {
		t.Error("Expected oversized frame to close the connection")
	}

	if count := relay.GetRegistry().Count(); count != 1 {
		t.Errorf("Expected only the victim registered, got %d", count)
	}
}
