package queue

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

// TestMPSCOrder tests that values from a single producer arrive in push order
func TestMPSCOrder(t *testing.T) {
	q := NewMPSC[string]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		require.True(t, q.Push(fmt.Sprintf("frame-%d", i)))
	}

	for i := 0; i < 10; i++ {
		select {
		case v := <-q.Recv():
			assert.Equal(t, fmt.Sprintf("frame-%d", i), v)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for item %d", i)
		}
	}

	select {
	case v := <-q.Recv():
		t.Errorf("queue should be empty, got %v", v)
	case <-time.After(10 * time.Millisecond):
	}
}

// TestMPSCConcurrentProducers verifies that every value of many producers is delivered exactly once
func TestMPSCConcurrentProducers(t *testing.T) {
	q := NewMPSC[int]()
	defer q.Close()

	const numProducers = 8
	const perProducer = 500
	total := numProducers * perProducer

	var wg sync.WaitGroup
	for p := 0; p < numProducers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	seen := make(map[int]bool, total)
	timeout := time.After(5 * time.Second)
	for len(seen) < total {
		select {
		case v := <-q.Recv():
			require.False(t, seen[v], "duplicate value %d", v)
			seen[v] = true
		case <-timeout:
			t.Fatalf("timeout, received %d of %d", len(seen), total)
		}
	}
	wg.Wait()
}

// TestMPSCCloseDrains tests that queued values are delivered after Close and the channel is closed
func TestMPSCCloseDrains(t *testing.T) {
	q := NewMPSC[int]()
	q.Push(1)
	q.Push(2)
	q.Close()

	assert.True(t, q.IsClosed())
	assert.False(t, q.Push(3))

	var got []int
	for v := range q.Recv() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
}
