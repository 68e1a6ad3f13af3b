// Package refresh fans tab refresh requests out to connected clients.
//
// Each client stream registers a callback under a name of the form
// "<userID>:<streamID>". A refresh for a user triggers every stream whose
// name carries that user's prefix.
package refresh

import (
	"strings"
	"sync"
)

const (
	TabCalendar = "calendar"
	TabShared   = "shared"
)

type Callback func(tab string)

type Registry struct {
	mu        sync.RWMutex
	callbacks map[string]Callback
}

func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[string]Callback)}
}

// Register stores cb under name, replacing any previous callback.
func (r *Registry) Register(name string, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks[name] = cb
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.callbacks, name)
}

// Trigger calls the callback registered under name. It reports false when
// nothing is registered.
func (r *Registry) Trigger(name, tab string) bool {
	r.mu.RLock()
	cb, ok := r.callbacks[name]
	r.mu.RUnlock()

	if !ok {
		return false
	}

	cb(tab)
	return true
}

// TriggerPrefix calls every callback whose name starts with prefix and
// returns how many were called.
func (r *Registry) TriggerPrefix(prefix, tab string) int {
	r.mu.RLock()
	var cbs []Callback
	for name, cb := range r.callbacks {
		if strings.HasPrefix(name, prefix) {
			cbs = append(cbs, cb)
		}
	}
	r.mu.RUnlock()

	for _, cb := range cbs {
		cb(tab)
	}

	return len(cbs)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.callbacks)
}

// StreamName builds the registry name for one client stream of userID.
func StreamName(userID, streamID string) string {
	return userID + ":" + streamID
}

// UserPrefix matches every stream of userID.
func UserPrefix(userID string) string {
	return userID + ":"
}
