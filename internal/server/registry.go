// Package server tracks which users are online via the Registry type, the
// single source of truth mapping connection ids to registered users.
package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// MaxUsernameLength bounds a display name after whitespace trimming.
const MaxUsernameLength = 30

// Registry maps connection ids to registered users. It performs no I/O and
// emits no notifications; callers drive the presence broadcaster after each
// mutation so the registry stays independently testable.
type Registry struct {
	mutex   sync.RWMutex
	users   map[string]*User
	nextSeq uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]*User),
	}
}

// Register validates the display name and binds a new user to the connection.
// A second join on the same connection is rejected, not silently replaced.
func (r *Registry) Register(connID, username, publicKey string) (*User, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxUsernameLength {
		return nil, ErrInvalidName
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[connID]; exists {
		return nil, fmt.Errorf("connection already joined: %w", ErrInvalidName)
	}

	user := &User{
		ID:        connID,
		Username:  trimmed,
		PublicKey: publicKey,
		JoinedAt:  time.Now().UTC(),
		seq:       r.nextSeq,
	}
	r.nextSeq++
	r.users[connID] = user
	return user, nil
}

// Unregister removes and returns the departing user, or nil if the connection
// never completed a join. Disconnect before join is a no-op, not an error.
func (r *Registry) Unregister(connID string) *User {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, exists := r.users[connID]
	if !exists {
		return nil
	}
	delete(r.users, connID)
	return user
}

// Get returns the user registered for the connection, if any.
func (r *Registry) Get(connID string) (*User, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.users[connID]
	return user, exists
}

// List returns a snapshot of all online users in join order.
func (r *Registry) List() []*User {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]*User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].seq < users[j].seq
	})
	return users
}

// IDs returns a snapshot of the online connection ids in join order.
func (r *Registry) IDs() []string {
	users := r.List()
	ids := make([]string, len(users))
	for i, user := range users {
		ids[i] = user.ID
	}
	return ids
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.users)
}
