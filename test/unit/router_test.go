// Package unit contains unit tests for individual components of the chat
// relay server.
package unit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Soham172005/cns-project/internal/server"
)

func newRoutingFixture(t *testing.T) (*server.Registry, *server.History, *server.Router) {
	t.Helper()
	registry := server.NewRegistry()
	history := server.NewHistory(server.HistoryCap)
	return registry, history, server.NewRouter(registry, history)
}

func TestRouteBroadcastTargetsEveryoneIncludingSender(t *testing.T) {
	registry, history, router := newRoutingFixture(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := registry.Register(id, "user-"+id, "")
		require.NoError(t, err)
	}

	msg, targets, err := router.Route("a", "hello", "")
	require.NoError(t, err)

	assert.Equal(t, server.KindBroadcast, msg.Kind)
	assert.Equal(t, "a", msg.SenderID)
	assert.Equal(t, "user-a", msg.SenderName)
	assert.Equal(t, "hello", msg.Payload)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, targets)
	assert.Equal(t, 1, history.Len())
}

func TestRouteDirectTargetsRecipientOnly(t *testing.T) {
	registry, history, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)
	_, err = registry.Register("b", "bob", "")
	require.NoError(t, err)

	msg, targets, err := router.Route("a", "psst", "b")
	require.NoError(t, err)

	assert.Equal(t, server.KindDirect, msg.Kind)
	assert.Equal(t, "b", msg.RecipientID)
	assert.Equal(t, []string{"b"}, targets)
	assert.Equal(t, 1, history.Len())
}

func TestRouteFromUnregisteredSenderFails(t *testing.T) {
	_, history, router := newRoutingFixture(t)

	_, _, err := router.Route("ghost", "boo", "")
	require.ErrorIs(t, err, server.ErrSenderNotRegistered)
	assert.Equal(t, 0, history.Len())
}

func TestRouteToUnknownRecipientFails(t *testing.T) {
	registry, history, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)

	_, _, err = router.Route("a", "hello?", "xyz")
	require.ErrorIs(t, err, server.ErrRecipientNotFound)
	assert.Equal(t, 0, history.Len())
}

func TestRouteAfterUnregisterFails(t *testing.T) {
	registry, history, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)
	registry.Unregister("a")

	_, _, err = router.Route("a", "too late", "")
	require.ErrorIs(t, err, server.ErrSenderNotRegistered)
	assert.Equal(t, 0, history.Len())
}

func TestSequentialRoutesAppearInSendOrder(t *testing.T) {
	registry, _, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)

	const n = 7
	sent := make([]string, 0, n)
	for i := 0; i < n; i++ {
		msg, _, err := router.Route("a", fmt.Sprintf("message %d", i), "")
		require.NoError(t, err)
		sent = append(sent, msg.ID)
	}

	recent := router.RecentHistory(n)
	require.Len(t, recent, n)
	for i, msg := range recent {
		assert.Equal(t, sent[i], msg.ID)
	}
}

func TestRouteMessageIDsAreUnique(t *testing.T) {
	registry, _, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		msg, _, err := router.Route("a", "x", "")
		require.NoError(t, err)
		assert.False(t, seen[msg.ID], "duplicate message id %s", msg.ID)
		seen[msg.ID] = true
	}
}

func TestRouteSenderNameIsSnapshot(t *testing.T) {
	registry, _, router := newRoutingFixture(t)

	_, err := registry.Register("a", "alice", "")
	require.NoError(t, err)

	msg, _, err := router.Route("a", "hi", "")
	require.NoError(t, err)

	// Sender leaves; the stored message keeps its identity snapshot.
	registry.Unregister("a")
	recent := router.RecentHistory(1)
	require.Len(t, recent, 1)
	assert.Equal(t, msg.ID, recent[0].ID)
	assert.Equal(t, "alice", recent[0].SenderName)
}
