package queue

import (
	"github.com/benz9527/csl/lib/infra"
)

// PriorityStructure is the surface shared by KeyedPriorityQueue and
// csl.SortedList, so callers and benchmarks can swap one for the other
// without touching call sites.
type PriorityStructure[K infra.NumericKey, V any] interface {
	Insert(key K, value V)
	TryPop() (value V, ok bool)
	TryPopKey() (key K, value V, ok bool)
	CompareTryPop(expected K) (value V, observed K, ok bool)
	TryPeekTopKey() (key K, ok bool)
	Size() int64
}

type keyedItem[K infra.NumericKey, V any] struct {
	key   K
	value V
}

// KeyedPriorityQueue is a single-threaded (optionally mutex-guarded) binary
// heap over container/heap, generalized from ArrayPriorityQueue to carry a
// (key, value) pair instead of an opaque int64 priority. It is the
// single-threaded collaborator with the same operation surface as the
// lock-free sorted list.
type KeyedPriorityQueue[K infra.NumericKey, V any] struct {
	pq        *ArrayPriorityQueue[*keyedItem[K, V]]
	lt        func(i, j K) bool
	arrayOpts []ArrayPriorityQueueOption[*keyedItem[K, V]]
}

type KeyedPriorityQueueOption[K infra.NumericKey, V any] func(*KeyedPriorityQueue[K, V])

func WithKeyedPriorityQueueCapacity[K infra.NumericKey, V any](capacity int) KeyedPriorityQueueOption[K, V] {
	return func(kpq *KeyedPriorityQueue[K, V]) {
		kpq.arrayOpts = append(kpq.arrayOpts, WithArrayPriorityQueueCapacity[*keyedItem[K, V]](capacity))
	}
}

func WithKeyedPriorityQueueEnableThreadSafe[K infra.NumericKey, V any]() KeyedPriorityQueueOption[K, V] {
	return func(kpq *KeyedPriorityQueue[K, V]) {
		kpq.arrayOpts = append(kpq.arrayOpts, WithArrayPriorityQueueEnableThreadSafe[*keyedItem[K, V]]())
	}
}

func WithKeyedPriorityQueueComparator[K infra.NumericKey, V any](lt func(i, j K) bool) KeyedPriorityQueueOption[K, V] {
	return func(kpq *KeyedPriorityQueue[K, V]) {
		kpq.lt = lt
	}
}

// NewKeyedPriorityQueue builds a min-heap over K by default (ascending, the
// same ordering csl.SortedList maintains).
func NewKeyedPriorityQueue[K infra.NumericKey, V any](opts ...KeyedPriorityQueueOption[K, V]) *KeyedPriorityQueue[K, V] {
	kpq := &KeyedPriorityQueue[K, V]{}
	for _, o := range opts {
		if o != nil {
			o(kpq)
		}
	}
	if kpq.lt == nil {
		kpq.lt = func(i, j K) bool { return i < j }
	}
	lt := kpq.lt
	comparator := WithArrayPriorityQueueComparator[*keyedItem[K, V]](func(i, j ReadOnlyPQItem[*keyedItem[K, V]]) CmpEnum {
		a, b := i.Value().key, j.Value().key
		switch {
		case lt(a, b):
			return iLTj
		case lt(b, a):
			return iGTj
		default:
			return iEQj
		}
	})
	kpq.arrayOpts = append(kpq.arrayOpts, comparator)
	raw := NewArrayPriorityQueue[*keyedItem[K, V]](kpq.arrayOpts...)
	kpq.pq = raw.(*ArrayPriorityQueue[*keyedItem[K, V]])
	return kpq
}

func (kpq *KeyedPriorityQueue[K, V]) Insert(key K, value V) {
	kpq.pq.Push(NewPriorityQueueItem[*keyedItem[K, V]](&keyedItem[K, V]{key: key, value: value}, 0))
}

func (kpq *KeyedPriorityQueue[K, V]) TryPop() (value V, ok bool) {
	_, value, ok = kpq.TryPopKey()
	return
}

func (kpq *KeyedPriorityQueue[K, V]) TryPopKey() (key K, value V, ok bool) {
	item := kpq.pq.Pop()
	if item == nil {
		return
	}
	kv := item.Value()
	return kv.key, kv.value, true
}

func (kpq *KeyedPriorityQueue[K, V]) CompareTryPop(expected K) (value V, observed K, ok bool) {
	top := kpq.pq.Peek()
	if top == nil {
		return
	}
	observed = top.Value().key
	if observed != expected {
		return
	}
	_, value, ok = kpq.TryPopKey()
	return
}

func (kpq *KeyedPriorityQueue[K, V]) TryPeekTopKey() (key K, ok bool) {
	top := kpq.pq.Peek()
	if top == nil {
		return
	}
	return top.Value().key, true
}

func (kpq *KeyedPriorityQueue[K, V]) Size() int64 {
	return kpq.pq.Len()
}

var _ PriorityStructure[int, struct{}] = (*KeyedPriorityQueue[int, struct{}])(nil)
