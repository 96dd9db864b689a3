package csl

import (
	"errors"
	"sync"

	"github.com/benz9527/csl/lib/infra"
)

// defaultPoolBlockSize mirrors concurrent_object_pool.h's block granularity:
// nodes are allocated and kept type-stable in batches rather than one at a
// time, amortizing the allocator and keeping recycled nodes close together.
const defaultPoolBlockSize = 128

// nodePool hands out type-stable *node[K,V] storage. Nodes are never freed
// back to the Go allocator once a list has touched them — they only move
// between "in the chain" and "on the free queue" — which is what makes the
// optimistic refcount validation in loadNext safe: a recycled node is
// always a live *node[K,V], never a dangling pointer.
//
// Only a *node[K,V] held by a real pointer field or variable is visible to
// the GC; a node reachable solely through a chain cell's packed uint64
// (dword.ptr) is not. blocks retains every allocated []node[K,V] backing
// array for the pool's lifetime so every node stays GC-reachable regardless
// of whether it is currently spliced into a chain, on the free queue, or
// held by a local handle.
type nodePool[K infra.NumericKey, V any] struct {
	free      *mpmcQueue[K, V]
	blockSize int
	blocksMu  sync.Mutex
	blocks    [][]node[K, V]
}

func newNodePool[K infra.NumericKey, V any](blockSize int) *nodePool[K, V] {
	if blockSize <= 0 {
		blockSize = defaultPoolBlockSize
	}
	return &nodePool[K, V]{
		free:      newMpmcQueue[K, V](),
		blockSize: blockSize,
	}
}

func (p *nodePool[K, V]) allocBlock() {
	nodes := make([]node[K, V], p.blockSize)
	cells := allocAlignedDwords(p.blockSize)

	p.blocksMu.Lock()
	p.blocks = append(p.blocks, nodes)
	p.blocksMu.Unlock()

	for i := range nodes {
		n := &nodes[i]
		n.next = cells[i]
		n.refs.Store(0)
		p.free.enqueue(n)
	}
}

// acquire returns a node with refs set to 1, representing the single
// retain the caller holds; Insert keeps it across failed publish attempts
// and, once the node is published, it becomes the predecessor cell's
// structural reference.
func (p *nodePool[K, V]) acquire(key K, value V) *node[K, V] {
	n, ok := p.free.dequeue()
	if !ok {
		p.allocBlock()
		n, ok = p.free.dequeue()
		if !ok {
			panic(newPoolAllocationError(errors.New("nodePool.acquire: block allocation did not yield a free node")))
		}
	}
	n.key = key
	n.value = value
	n.refs.Store(1)
	storeNextUnsync(n, nil, false)
	return n
}

// release returns n to the free queue. Callers must never call this while
// any other goroutine could still hold a handle to n — it is only safe once
// node.release's refs.Add(-1) has observed zero.
func (p *nodePool[K, V]) release(n *node[K, V]) {
	var zero V
	n.value = zero
	p.free.enqueue(n)
}
