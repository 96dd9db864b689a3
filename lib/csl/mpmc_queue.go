package csl

import (
	"sync/atomic"

	"github.com/benz9527/csl/lib/infra"
)

// mpmcQueue is a Michael & Scott lock-free FIFO, generic over the pooled
// node pointers it carries. Go's garbage collector removes the need for the
// original algorithm's hazard pointers or deferred-free scheme — a popped
// qnode is simply left for the GC once nothing points at it anymore.
type mpmcQueue[K infra.NumericKey, V any] struct {
	head atomic.Pointer[qnode[K, V]]
	tail atomic.Pointer[qnode[K, V]]
}

type qnode[K infra.NumericKey, V any] struct {
	value *node[K, V]
	next  atomic.Pointer[qnode[K, V]]
}

func newMpmcQueue[K infra.NumericKey, V any]() *mpmcQueue[K, V] {
	q := &mpmcQueue[K, V]{}
	dummy := &qnode[K, V]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

func (q *mpmcQueue[K, V]) enqueue(v *node[K, V]) {
	n := &qnode[K, V]{value: v}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(tail, n)
				return
			}
			continue
		}
		// tail lagged behind a completed enqueue; help advance it.
		q.tail.CompareAndSwap(tail, next)
	}
}

func (q *mpmcQueue[K, V]) dequeue() (*node[K, V], bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return nil, false
		}
		if head == tail {
			// tail lagged behind a completed enqueue; help advance it.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			return v, true
		}
	}
}
