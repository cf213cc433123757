package queue

import (
	"context"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestQueue() *TaskQueue {
	return NewTaskQueue(common.NopLogger())
}

// TestExecuteReturnsResult tests that Execute hands back the task's value
func TestExecuteReturnsResult(t *testing.T) {
	q := newTestQueue()

	result, err := Execute(context.Background(), q, func() string { return "done" })
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.False(t, q.Busy())
}

// TestFIFOAndSingleFlight verifies that tasks start in submission order and never overlap
func TestFIFOAndSingleFlight(t *testing.T) {
	q := newTestQueue()

	const numTasks = 50
	var active int32
	var mu sync.Mutex
	order := make([]int, 0, numTasks)

	// hold the queue so all tasks are submitted before the first one starts
	q.Stop()

	dones := make([]<-chan struct{}, 0, numTasks)
	for i := 0; i < numTasks; i++ {
		i := i
		dones = append(dones, q.Submit(func() {
			if atomic.AddInt32(&active, 1) != 1 {
				t.Errorf("task %d started while another task was running", i)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&active, -1)
		}))
	}
	assert.Equal(t, numTasks, q.Len())

	q.Continue()
	for _, done := range dones {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for tasks")
		}
	}

	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

// TestRunningTaskIsNotPreempted tests that a new submission waits for the running task
func TestRunningTaskIsNotPreempted(t *testing.T) {
	q := newTestQueue()
	release := make(chan struct{})
	started := make(chan struct{})

	first := q.Submit(func() {
		close(started)
		<-release
	})
	<-started

	var secondRan atomic.Bool
	second := q.Submit(func() { secondRan.Store(true) })

	time.Sleep(20 * time.Millisecond)
	assert.False(t, secondRan.Load(), "second task must wait for the first")
	assert.True(t, q.Busy())

	close(release)
	<-first
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second task never ran")
	}
	assert.True(t, secondRan.Load())
}

// TestStopKeepsQueuedWork verifies that stopping accepts work without starting it
func TestStopKeepsQueuedWork(t *testing.T) {
	q := newTestQueue()
	q.Stop()

	done := q.Submit(func() {})
	select {
	case <-done:
		t.Fatal("task ran while the queue was stopped")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, q.Len())

	q.Continue()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run after continue")
	}
	assert.Equal(t, 0, q.Len())
}

// TestExecuteCancelledWhileQueued tests that a queued task is removed when its context ends
func TestExecuteCancelledWhileQueued(t *testing.T) {
	q := newTestQueue()
	q.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	errCh := make(chan error, 1)
	go func() {
		_, err := Execute(ctx, q, func() bool { ran.Store(true); return true })
		errCh <- err
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("execute did not return after cancel")
	}

	q.Continue()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())
	assert.Equal(t, 0, q.Len())
}

// TestPanickingTaskDoesNotStallQueue tests that a panic is reported and the next task runs
func TestPanickingTaskDoesNotStallQueue(t *testing.T) {
	q := newTestQueue()

	_, err := Execute(context.Background(), q, func() int { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	result, err := Execute(context.Background(), q, func() int { return 42 })
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}
