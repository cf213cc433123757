package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// mpscNode is a single element of the linked list. The head always points to a sentinel,
// the first queued value lives in head.next.
type mpscNode[T any] struct {
	value T
	next  atomic.Pointer[mpscNode[T]]
}

// MPSC is an unbounded lock-free multi-producer single-consumer queue.
// Producers append with Push, the single consumer reads from Recv.
// Values pushed by one goroutine are delivered in the order they were pushed.
// The connection uses it as its outbound buffer: frames accumulate while the
// transport is (re)connecting and are written once it is ready.
type MPSC[T any] struct {
	head   atomic.Pointer[mpscNode[T]]
	tail   atomic.Pointer[mpscNode[T]]
	out    chan T
	closed atomic.Bool

	// condition variable the consumer sleeps on while the list is empty
	mu   sync.Mutex
	cond *sync.Cond
}

// NewMPSC creates a new queue and starts its delivery goroutine
func NewMPSC[T any]() *MPSC[T] {
	// head and tail start at a dummy node
	sentinel := &mpscNode[T]{}

	q := &MPSC[T]{
		out: make(chan T),
	}
	q.cond = sync.NewCond(&q.mu)

	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.deliver()

	return q
}

// Push appends a value to the queue.
// Returns false if the queue is closed.
//
// Thread-safety: Push can be called from any number of goroutines concurrently.
func (q *MPSC[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &mpscNode[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			// the tail has no successor yet, try to link our node
			if tailNode.next.CompareAndSwap(nil, newNode) {
				/*
				 Linked, now try to move the tail.
				 The CAS fails if another producer already helped moving it,
				 the tail ends up at our node either way.
				*/
				q.tail.CompareAndSwap(tailNode, newNode)

				// signal under the lock, otherwise the wakeup can be lost between the
				// consumer's empty check and its Wait
				q.mu.Lock()
				q.cond.Signal()
				q.mu.Unlock()
				return true
			}
		} else {
			// help a producer that appended but did not move the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		/*
		 Exponential backoff under contention:
		  - the first retries yield a growing number of times, which is cheaper than parking the goroutine
		  - after 10 retries every attempt yields once
		  - growing delays keep the producers that lost the CAS from retrying in lockstep
		*/
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// deliver moves values from the linked list to the output channel
func (q *MPSC[T]) deliver() {
	defer close(q.out)

	for {
		delivered := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}

			delivered = true

			// capture the value before next becomes the sentinel
			value := next.value
			q.head.Store(next)
			q.out <- value

			// release the reference held by the new sentinel
			var zero T
			next.value = zero
		}

		if !delivered && q.closed.Load() {
			return
		}

		if !delivered {
			q.mu.Lock()
			// check again while holding the lock, Push signals under it
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the single consumer reads from.
// The channel is closed after Close once all pending values were delivered.
func (q *MPSC[T]) Recv() <-chan T {
	return q.out
}

// Close stops accepting new values. Values already queued are still delivered.
func (q *MPSC[T]) Close() {
	q.closed.Store(true)

	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed returns true if the queue is closed
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns an approximate count of queued values. O(n), for debugging only.
func (q *MPSC[T]) Len() int {
	count := 0
	current := q.head.Load()
	for {
		next := current.next.Load()
		if next == nil {
			return count
		}
		count++
		current = next
	}
}
