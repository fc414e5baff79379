package ws

import "sync"

// Channel is one live real-time destination. *Conn is the production
// implementation, tests substitute doubles.
type Channel interface {
	WriteJSON(v any) error
	IsOpen() bool
	Close() error
}

// Registry maps a user to at most one live channel. Register is
// last-writer-wins: a second login replaces the entry without closing the
// superseded channel, that connection removes itself when its own read
// loop ends.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]Channel),
	}
}

func (r *Registry) Register(userID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[userID] = ch
}

// Unregister removes the mapping only if it still points at the given
// channel. A plain delete would let a stale close callback evict the
// connection that replaced it.
func (r *Registry) Unregister(userID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.connections[userID]; ok && current == ch {
		delete(r.connections, userID)
	}
}

// Lookup returns the user's channel only while it reports open.
func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.connections[userID]
	if !ok || !ch.IsOpen() {
		return nil, false
	}
	return ch, true
}

func (r *Registry) HasActiveConnection(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// SweepClosed drops entries whose channel reports closed.
func (r *Registry) SweepClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, ch := range r.connections {
		if !ch.IsOpen() {
			delete(r.connections, userID)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
