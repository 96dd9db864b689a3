package csl

import (
	"sync/atomic"

	"github.com/benz9527/csl/lib/infra"
)

// node is one (key, value) record in the chain. refs counts every shared
// reference currently held to this node: the predecessor's next cell plus
// every in-flight handle returned by a load/loadAndSetTag call. When refs
// drops to zero the node returns to its pool.
type node[K infra.NumericKey, V any] struct {
	key   K
	value V
	refs  atomic.Int64
	next  *dword
}

func (n *node[K, V]) retain() {
	n.refs.Add(1)
}

// release drops one shared reference; when the count reaches zero the node
// is returned to pool for recycling. Safe to call with a nil pool only for
// the permanent sentinel, which is never retained/released.
func (n *node[K, V]) release(pool *nodePool[K, V]) {
	if n.refs.Add(-1) == 0 && pool != nil {
		pool.release(n)
	}
}
