package transport

import (
	"context"
	"sync"
)

// InFlightRegistry tracks in-flight exchanges for explicit cancellation.
// It maps exchange IDs to their cancel functions, allowing a DELETE
// request to cancel a stream that is still in progress.
//
// All methods are safe for concurrent access.
type InFlightRegistry struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

// NewInFlightRegistry creates a new empty registry.
func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		entries: make(map[string]context.CancelFunc),
	}
}

// Register adds an in-flight exchange to the registry. The cancel function
// will be called if the exchange is explicitly cancelled via DELETE.
func (r *InFlightRegistry) Register(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = cancel
}

// Cancel cancels an in-flight exchange by calling its cancel function.
// Returns true if the exchange was found and cancelled, false if the ID
// was not registered (either already finished or never existed).
func (r *InFlightRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.entries[id]
	if !ok {
		return false
	}
	cancel()
	delete(r.entries, id)
	return true
}

// Remove removes an exchange from the registry without cancelling it.
// Called when a stream ends normally.
func (r *InFlightRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}
