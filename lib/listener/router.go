package listener

import (
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"sync"
	"sync/atomic"
)

// Guard decides whether a message belongs to a source
type Guard[T any] func(msg T) bool

// RouteHandler consumes a message routed to a source
type RouteHandler[T any] func(msg T)

// Source is a routing slot owned by one consumer (e.g. a peer handle) for its whole
// lifetime. Its guard and handler may be swapped at any time.
// A fresh source matches nothing and its handler is a no-op.
type Source[T any] struct {
	id     uint64
	router *Router[T]

	mu      sync.RWMutex
	guard   Guard[T]
	handler RouteHandler[T]
}

// ID returns the stable slot id
func (s *Source[T]) ID() uint64 {
	return s.id
}

// SetGuard replaces the guard of the slot
func (s *Source[T]) SetGuard(guard Guard[T]) {
	s.mu.Lock()
	s.guard = guard
	s.mu.Unlock()
}

// SetHandler replaces the handler of the slot
func (s *Source[T]) SetHandler(handler RouteHandler[T]) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Destroy removes the slot from its router. Idempotent.
func (s *Source[T]) Destroy() {
	s.router.slots.Delete(s.id)
}

// snapshot returns the current guard and handler
func (s *Source[T]) snapshot() (Guard[T], RouteHandler[T]) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guard, s.handler
}

// Router demultiplexes messages to every source whose guard matches.
// If no source matches, the fallback handler is invoked exactly once.
type Router[T any] struct {
	slots    *xsync.MapOf[uint64, *Source[T]]
	nextID   atomic.Uint64
	fallback RouteHandler[T]
}

// NewRouter creates a router with the given fallback. A nil fallback drops unmatched messages.
func NewRouter[T any](fallback RouteHandler[T]) *Router[T] {
	if fallback == nil {
		fallback = func(T) {}
	}
	return &Router[T]{
		slots:    xsync.NewMapOf[uint64, *Source[T]](),
		fallback: fallback,
	}
}

// CreateSource allocates a new routing slot
func (r *Router[T]) CreateSource() *Source[T] {
	s := &Source[T]{
		id:      r.nextID.Add(1),
		router:  r,
		guard:   func(T) bool { return false },
		handler: func(T) {},
	}
	r.slots.Store(s.id, s)
	return s
}

// Distribute evaluates every slot's guard and invokes the handler of each match,
// in slot creation order. Returns the number of matching slots.
func (r *Router[T]) Distribute(msg T) int {
	sources := make([]*Source[T], 0, r.slots.Size())
	r.slots.Range(func(_ uint64, s *Source[T]) bool {
		sources = append(sources, s)
		return true
	})
	sort.Slice(sources, func(i, j int) bool { return sources[i].id < sources[j].id })

	matched := 0
	for _, s := range sources {
		guard, handler := s.snapshot()
		if guard == nil || !guard(msg) {
			continue
		}
		if handler != nil {
			handler(msg)
		}
		matched++
	}

	if matched == 0 {
		r.fallback(msg)
	}
	return matched
}

// Len returns the number of live slots
func (r *Router[T]) Len() int {
	return r.slots.Size()
}
