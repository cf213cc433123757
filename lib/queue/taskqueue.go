package queue

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

// Task is a unit of work run by the TaskQueue
type Task func()

// queueItem is a task together with its completion slot
type queueItem struct {
	task Task
	done chan struct{}
	err  error // set before done is closed
}

// TaskQueue serializes asynchronous exchanges. At most one task runs at any time,
// tasks start in submission order and a running task is never preempted.
// When the running task returns the next queued task is started immediately.
//
// Stop pauses dequeuing without discarding queued work. Submissions are still
// accepted while stopped, they simply do not start until Continue is called.
type TaskQueue struct {
	mu      sync.Mutex
	items   []*queueItem
	running *queueItem
	stopped bool
	logger  logger.ILogger
}

// NewTaskQueue creates an empty running queue. A nil logger selects the package logger.
func NewTaskQueue(log logger.ILogger) *TaskQueue {
	if log == nil {
		log = logger.GetLogger(common.LoggerQueue)
	}
	return &TaskQueue{logger: log}
}

// Submit appends a task and returns a channel that is closed once the task completed
func (q *TaskQueue) Submit(task Task) <-chan struct{} {
	return q.push(task).done
}

// Execute appends a task that produces a value and blocks until it ran.
// If ctx is cancelled while the task is still waiting for its turn, it is removed
// from the queue and ctx.Err() is returned. A task that already started is awaited;
// it has to observe the context itself.
func Execute[T any](ctx context.Context, q *TaskQueue, task func() T) (T, error) {
	var result T
	item := q.push(func() { result = task() })

	select {
	case <-item.done:
		return result, item.err
	case <-ctx.Done():
		if q.cancel(item) {
			var zero T
			return zero, ctx.Err()
		}
		<-item.done
		return result, item.err
	}
}

// Stop pauses dequeuing. The running task is not affected.
func (q *TaskQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.logger.Debugf("queue stopped")
}

// Continue resumes dequeuing and starts the head of the queue if nothing is running
func (q *TaskQueue) Continue() {
	q.mu.Lock()
	q.stopped = false
	q.mu.Unlock()
	q.logger.Debugf("queue continued")
	q.tryExecute()
}

// Len returns the number of tasks waiting for their turn (the running task excluded)
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Busy reports whether a task is currently running
func (q *TaskQueue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running != nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (q *TaskQueue) push(task Task) *queueItem {
	item := &queueItem{task: task, done: make(chan struct{})}

	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.tryExecute()
	return item
}

// cancel removes a task that has not started yet. Returns false if it already started.
func (q *TaskQueue) cancel(item *queueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, it := range q.items {
		if it == item {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// tryExecute starts the head of the queue unless a task runs or the queue is stopped
func (q *TaskQueue) tryExecute() {
	q.mu.Lock()
	if q.running != nil || q.stopped || len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	next := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.running = next
	q.mu.Unlock()

	go q.run(next)
}

// run executes a single task, then hands over to the next one
func (q *TaskQueue) run(item *queueItem) {
	defer func() {
		if r := recover(); r != nil {
			item.err = fmt.Errorf("task panicked: %v", r)
			q.logger.Errorf("%v", item.err)
		}
		close(item.done)

		q.mu.Lock()
		q.running = nil
		q.mu.Unlock()

		q.tryExecute()
	}()

	item.task()
}
