package hub

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the concurrent-safe set of live connections, keyed by connection
// id. Writes are mutually exclusive; snapshots never block each other.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*Conn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*Conn)}
}

// Add inserts the connection into the live set.
func (r *Registry) Add(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
}

// Remove deletes the entry with the given id and reports whether it was
// present. Removing an absent id is a no-op, which keeps disconnect races
// (session teardown vs. broadcast reaping) safe.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	return true
}

// Snapshot returns a point-in-time copy of the live set, safe to iterate
// without holding any lock during slow operations.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
