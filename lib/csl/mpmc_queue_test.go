package csl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMpmcQueue_FIFOOrder(t *testing.T) {
	q := newMpmcQueue[int, int]()
	_, ok := q.dequeue()
	require.False(t, ok)

	want := []*node[int, int]{{key: 1}, {key: 2}, {key: 3}}
	for _, n := range want {
		q.enqueue(n)
	}
	for _, n := range want {
		got, ok := q.dequeue()
		require.True(t, ok)
		assert.Same(t, n, got)
	}
	_, ok = q.dequeue()
	assert.False(t, ok)
}

func TestMpmcQueue_ConcurrentEnqueueDequeue(t *testing.T) {
	q := newMpmcQueue[int, int]()
	const producers = 8
	const perProducer = 2_000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.enqueue(&node[int, int]{key: p*perProducer + i})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for {
		n, ok := q.dequeue()
		if !ok {
			break
		}
		assert.False(t, seen[n.key], "key %d dequeued twice", n.key)
		seen[n.key] = true
	}
	assert.Len(t, seen, producers*perProducer)
}
