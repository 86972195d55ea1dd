// Package unit contains unit tests for individual components of the chat
// relay server.
//
// The hub tests keep the original plain-testing style since they exercise
// channel plumbing rather than component contracts.
package unit

import (
	"testing"
	"time"

	"github.com/Soham172005/cns-project/internal/server"
)

// TestNewHub tests the hub creation function.
// It verifies that NewHub returns a properly initialized Hub
// with all necessary channels and data structures.
func TestNewHub(t *testing.T) {
	hub := server.NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	select {
	case hub.GetRegisterChan() <- nil:
	case <-time.After(10 * time.Millisecond):
	}
}

// TestHubChannels tests that all hub channels are properly initialized.
// It verifies that the register and unregister channels are not nil and
// accessible through their getter methods.
func TestHubChannels(t *testing.T) {
	hub := server.NewHub()

	if hub.GetRegisterChan() == nil {
		t.Error("Register channel is nil")
	}
	if hub.GetUnregisterChan() == nil {
		t.Error("Unregister channel is nil")
	}
}

// TestHubRunStartsWithoutPanic tests that the hub's Run method starts without panicking.
// It verifies that the hub can be started in a goroutine and runs successfully
// for a short period without encountering runtime errors.
func TestHubRunStartsWithoutPanic(t *testing.T) {
	hub := server.NewHub()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Hub.Run() panicked: %v", r)
			}
			done <- true
		}()
		go hub.Run()
		time.Sleep(10 * time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Hub.Run() test timed out")
	}
}

// TestHubFanOutWithoutClients tests that fan-out to an empty hub is safe.
// Presence and typing emissions happen before any client connects during
// startup races, so this must never panic or block.
func TestHubFanOutWithoutClients(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Fan-out panicked: %v", r)
			}
			done <- true
		}()
		hub.SendToAll([]byte(`{"type":"user_connected"}`))
		hub.SendToAllExcept("nobody", []byte(`{"type":"user_typing"}`))
		hub.SendTo("unknown", []byte(`{"type":"error"}`))
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Fan-out test timed out")
	}
}

// TestHubSendNilPayloadIsDropped tests that a nil payload (a failed encode)
// is discarded instead of being written to connections.
func TestHubSendNilPayloadIsDropped(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	hub.SendToAll(nil)
	hub.SendTo("anyone", nil)
}

// TestNewClient tests the client creation function.
// It verifies that NewClient returns a properly initialized Client
// with all necessary fields and channels set up correctly.
func TestNewClient(t *testing.T) {
	hub := server.NewHub()

	client := server.NewClient(nil, hub, nil, "conn-1", "127.0.0.1:12345", server.NewConfig())

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}

	if client.ID() != "conn-1" {
		t.Errorf("Expected connection id %q, got %q", "conn-1", client.ID())
	}

	if client.GetSendChan() == nil {
		t.Error("Client send channel is nil")
	}
}

// TestClientSendChannel tests the client's send channel functionality.
// It verifies that the client's send channel is properly initialized
// and accessible through the GetSendChan method.
func TestClientSendChannel(t *testing.T) {
	hub := server.NewHub()
	client := server.NewClient(nil, hub, nil, "conn-1", "127.0.0.1:12345", server.NewConfig())

	select {
	case <-client.GetSendChan():
		t.Error("Expected empty send channel but received a message")
	case <-time.After(10 * time.Millisecond):
	}
}

// TestConcurrentHubFanOut tests that the hub handles concurrent fan-out safely.
// It verifies that multiple goroutines can emit simultaneously without
// causing race conditions or panics.
func TestConcurrentHubFanOut(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Goroutine %d panicked: %v", id, r)
				}
				done <- true
			}()

			hub.SendToAll([]byte(`{"type":"receive_message"}`))
		}(i)
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(200 * time.Millisecond):
			t.Error("Concurrent fan-out test timed out")
			return
		}
	}
}
