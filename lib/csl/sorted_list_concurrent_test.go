package csl

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/csl/lib/kv"
)

// S5: two producers insert disjoint key ranges concurrently; a serial drain
// afterward must yield the sorted union.
func TestSortedList_S5_TwoProducersSerialDrain(t *testing.T) {
	sl := New[int, int]()
	const perProducer = 10_000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perProducer; i++ {
			sl.Insert(i, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perProducer; i++ {
			sl.Insert(20_000+i, 20_000+i)
		}
	}()
	wg.Wait()

	require.Equal(t, int64(2*perProducer), sl.Size())

	prev := -1
	count := 0
	for {
		k, ok := sl.TryPop()
		if !ok {
			break
		}
		assert.GreaterOrEqual(t, k, prev)
		prev = k
		count++
	}
	assert.Equal(t, 2*perProducer, count)
}

// S6 (scaled down for routine `go test` runs; cmd/stress runs a larger
// 8x50000 workload by default): producers and consumers race; every popped
// id is unique and the multiset of popped-plus-remaining keys equals the
// multiset of inserted keys (properties 9 and 10).
func TestSortedList_S6_ProducersConsumersNoPhantomsNoDuplicates(t *testing.T) {
	sl := New[int, int]()
	producers := 8
	perProducer := 2_000
	if testing.Short() {
		producers = 2
		perProducer = 200
	}
	consumers := 8

	var insertedSum atomic.Int64
	var poppedSum atomic.Int64
	var poppedCount atomic.Int64
	var idSeq atomic.Int64

	seen := kv.NewThreadSafeMap[int, struct{}]()

	var producerWg sync.WaitGroup
	producerWg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer producerWg.Done()
			for i := 0; i < perProducer; i++ {
				id := int(idSeq.Add(1))
				key := p*perProducer + i
				sl.Insert(key, id)
				insertedSum.Add(int64(key))
			}
		}(p)
	}

	producersDone := make(chan struct{})
	go func() {
		producerWg.Wait()
		close(producersDone)
	}()

	record := func(k, id int) {
		_, dup := seen.Get(id)
		assert.False(t, dup, "id %d popped more than once", id)
		seen.AddOrUpdate(id, struct{}{})
		poppedSum.Add(int64(k))
		poppedCount.Add(1)
	}

	var consumerWg sync.WaitGroup
	consumerWg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer consumerWg.Done()
			for {
				if k, id, ok := sl.TryPopKey(); ok {
					record(k, id)
					continue
				}
				select {
				case <-producersDone:
					return
				default:
				}
			}
		}()
	}
	consumerWg.Wait()

	for {
		k, id, ok := sl.TryPopKey()
		if !ok {
			break
		}
		record(k, id)
	}

	assert.Equal(t, int64(producers*perProducer), poppedCount.Load())
	assert.Equal(t, insertedSum.Load(), poppedSum.Load())
	assert.Equal(t, int64(0), sl.Size())
}

// Property 11 (min-key ordering): once two inserts with distinct keys have
// linearized, a pop that has not been preceded by any other pop must yield
// the smaller key.
func TestSortedList_MinKeyOrdering(t *testing.T) {
	sl := New[int, string]()
	sl.Insert(5, "k1")
	sl.Insert(9, "k2")
	k, _, ok := sl.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 5, k)
}

// Property 12 (liveness): with producers and consumers running for a fixed
// window, both operations' success counts keep growing — no deadlock, no
// permanent livelock.
func TestSortedList_Liveness(t *testing.T) {
	sl := New[int, int]()
	var stop atomic.Bool
	var inserts, pops atomic.Int64

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			i := 0
			for !stop.Load() {
				sl.Insert(p*1_000_000+i, i)
				inserts.Add(1)
				i++
			}
		}(p)
	}
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if _, ok := sl.TryPop(); ok {
					pops.Add(1)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	stop.Store(true)
	wg.Wait()

	assert.Greater(t, inserts.Load(), int64(0))
	assert.Greater(t, pops.Load(), int64(0))
}
