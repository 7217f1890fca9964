// Package realtime tracks live websocket connections per user and pushes
// forced-logout events to them when an administrator revokes access.
package realtime

import "sync"

// Registry maps user IDs to their live connections. Handshakes and
// disconnects arrive on independent goroutines, so all mutation is locked.
// The registry is rebuilt from scratch on restart; tokens, not registry
// membership, gate access.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]map[*Client]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]map[*Client]struct{})}
}

// Add records a connection for the user.
func (r *Registry) Add(userID uint64, client *Client) {
	if userID == 0 || client == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if set == nil {
		set = make(map[*Client]struct{})
		r.conns[userID] = set
	}
	set[client] = struct{}{}
}

// Remove drops a connection for the user, deleting the set when it empties.
func (r *Registry) Remove(userID uint64, client *Client) {
	if userID == 0 || client == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.conns[userID]
	if set == nil {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// Connections returns a snapshot of the user's live connections.
func (r *Registry) Connections(userID uint64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	return clients
}

// Count returns the number of live connections for the user.
func (r *Registry) Count(userID uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}
