package listener

import (
	"github.com/google/uuid"
	"sync"
)

// Handler is a listener callback. It receives the triggered value, the context
// passed to Trigger (e.g. the peer handle) and its own subscription.
type Handler[V any, C any] func(value V, ctx C, sub *Subscription)

// entry is a single registration under a key
type entry[V any, C any] struct {
	id      string
	handler Handler[V, C]
	sub     *Subscription
}

// Manager is a keyed publish/subscribe registry with cancelable registrations.
// Handlers under a key are invoked in registration order. Trigger iterates over a
// snapshot, so handlers registered or cancelled during a trigger do not affect it.
type Manager[K comparable, V any, C any] struct {
	mu       sync.RWMutex
	handlers map[K][]*entry[V, C]
}

// NewManager creates an empty registry
func NewManager[K comparable, V any, C any]() *Manager[K, V, C] {
	return &Manager[K, V, C]{
		handlers: make(map[K][]*entry[V, C]),
	}
}

// Register appends a handler under key and returns its subscription
func (m *Manager[K, V, C]) Register(key K, handler Handler[V, C]) *Subscription {
	id := uuid.NewString()
	e := &entry[V, C]{
		id:      id,
		handler: handler,
		sub:     NewSubscription(id, func() { m.remove(key, id) }),
	}

	m.mu.Lock()
	m.handlers[key] = append(m.handlers[key], e)
	m.mu.Unlock()

	return e.sub
}

// Once registers a handler that cancels its own subscription after the first invocation
func (m *Manager[K, V, C]) Once(key K, handler Handler[V, C]) *Subscription {
	return m.Register(key, func(value V, ctx C, sub *Subscription) {
		handler(value, ctx, sub)
		sub.Cancel()
	})
}

// Trigger invokes every handler currently registered under key.
// A key without registrations is a no-op.
func (m *Manager[K, V, C]) Trigger(key K, value V, ctx C) {
	m.mu.RLock()
	entries := m.handlers[key]
	snapshot := make([]*entry[V, C], len(entries))
	copy(snapshot, entries)
	m.mu.RUnlock()

	for _, e := range snapshot {
		e.handler(value, ctx, e.sub)
	}
}

// Count returns the number of registrations under key
func (m *Manager[K, V, C]) Count(key K) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[key])
}

// Clear removes every registration under key
func (m *Manager[K, V, C]) Clear(key K) {
	m.mu.Lock()
	delete(m.handlers, key)
	m.mu.Unlock()
}

// ClearAll removes every registration
func (m *Manager[K, V, C]) ClearAll() {
	m.mu.Lock()
	m.handlers = make(map[K][]*entry[V, C])
	m.mu.Unlock()
}

// remove deletes a single registration
func (m *Manager[K, V, C]) remove(key K, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.handlers[key]
	for i, e := range entries {
		if e.id == id {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(m.handlers, key)
	} else {
		m.handlers[key] = entries
	}
}
