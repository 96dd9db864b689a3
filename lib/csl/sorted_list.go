package csl

import (
	"sync/atomic"

	"github.com/benz9527/csl/lib/infra"
)

// SortedList is a lock-free, sentinel-headed, ascending-key singly linked
// list. The zero value is not usable; construct one with New.
type SortedList[K infra.NumericKey, V any] struct {
	head       *node[K, V]
	pool       *nodePool[K, V]
	cmp        Comparator[K]
	sizeApprox atomic.Int64
	recorder   metricsRecorder
}

// Option configures a SortedList at construction time.
type Option[K infra.NumericKey, V any] func(*SortedList[K, V])

// WithComparator overrides the default ascending (a < b) ordering.
func WithComparator[K infra.NumericKey, V any](cmp Comparator[K]) Option[K, V] {
	return func(sl *SortedList[K, V]) { sl.cmp = cmp }
}

// WithPoolBlockSize overrides the node pool's allocation block size.
func WithPoolBlockSize[K infra.NumericKey, V any](blockSize int) Option[K, V] {
	return func(sl *SortedList[K, V]) { sl.pool = newNodePool[K, V](blockSize) }
}

// WithMetricsRecorder wires a caller-supplied metricsRecorder; the zero
// value (noopMetricsRecorder) is used when no metrics option is given.
func WithMetricsRecorder[K infra.NumericKey, V any](r metricsRecorder) Option[K, V] {
	return func(sl *SortedList[K, V]) { sl.recorder = r }
}

// WithOtelMetrics wires an OpenTelemetry-backed recorder under the given
// meter name, polling this list's own Size for the advisory gauge.
func WithOtelMetrics[K infra.NumericKey, V any](name string) Option[K, V] {
	return func(sl *SortedList[K, V]) { sl.recorder = NewOtelMetricsRecorder(name, sl.Size) }
}

// New constructs an empty SortedList.
func New[K infra.NumericKey, V any](opts ...Option[K, V]) *SortedList[K, V] {
	sentinelCells := allocAlignedDwords(1)
	sl := &SortedList[K, V]{
		head:     &node[K, V]{next: sentinelCells[0]},
		pool:     newNodePool[K, V](defaultPoolBlockSize),
		cmp:      ascending[K](),
		recorder: noopMetricsRecorder{},
	}
	for _, opt := range opts {
		opt(sl)
	}
	return sl
}

// find locates the insertion boundary for key: the last node whose key does
// not sort after key (prev, possibly the sentinel) and the first node whose
// key sorts strictly after it (curr, possibly nil at the tail). Both returned
// handles are retained by the caller (prev's only if prev != sl.head) and
// must eventually be released. Nodes found retired along the way are
// helped unlinked in passing. prevPtr/prevVer report the raw (ptr, ver) of
// prev.next validated to be pointing at curr — untouched by any later read —
// so a caller's own publish CAS on prev can use it as "expected" instead of
// re-reading prev.next just before the CAS, which could already reflect an
// intervening mutation and make that CAS succeed against a stale
// assumption instead of failing cleanly.
func (sl *SortedList[K, V]) find(key K) (prev, curr *node[K, V], prevPtr, prevVer uint64) {
	for {
		prev = sl.head
		var tagged bool
		curr, tagged, prevPtr, prevVer = loadNext(prev, sl.pool)
		_ = tagged // the sentinel cell itself is never tagged
		retry := false

		for curr != nil {
			next, nextTagged, nextPtr, nextVer := loadNext(curr, sl.pool)
			if nextTagged {
				if next != nil {
					next.retain()
				}
				if _, _, ok := casNext(prev, prevPtr, prevVer, next, false); ok {
					curr.release(sl.pool) // prev's old structural ref to curr
					if next != nil {
						next.release(sl.pool) // curr's stale structural ref to next
					}
					curr.release(sl.pool) // this iteration's local loadNext handle
					curr = next
					prevPtr, prevVer = packTaggedPtr(next, false), prevVer+1
					continue
				}
				if next != nil {
					next.release(sl.pool) // undo the retain; the swing lost the race
					next.release(sl.pool) // this iteration's local loadNext handle
				}
				curr.release(sl.pool)
				if prev != sl.head {
					prev.release(sl.pool)
				}
				retry = true
				break
			}

			// Stop only once curr sorts strictly after key, so that a new
			// duplicate is spliced after every existing node with an equal
			// key: duplicates pop in FIFO order (oldest first).
			if sl.cmp(key, curr.key) {
				if next != nil {
					next.release(sl.pool)
				}
				return prev, curr, prevPtr, prevVer
			}

			if prev != sl.head {
				prev.release(sl.pool)
			}
			prev, curr = curr, next
			prevPtr, prevVer = nextPtr, nextVer
		}

		if !retry {
			return prev, curr, prevPtr, prevVer
		}
	}
}

// Insert adds (key, value) into the list, preserving ascending key order.
// Duplicate keys are permitted and resolved in insertion-attempt order:
// the node that wins its publish CAS first ends up closer to the head.
func (sl *SortedList[K, V]) Insert(key K, value V) {
	n := sl.pool.acquire(key, value)
	for {
		prev, curr, prevPtr, prevVer := sl.find(key)
		if curr != nil {
			curr.retain() // new structural reference: n.next -> curr
		}
		storeNextUnsync(n, curr, false)

		// prevPtr/prevVer are the raw pair find() validated prev.next against
		// when it chose curr, not a fresh read: if prev was concurrently
		// retired since then, this CAS fails cleanly and we retry via find()
		// instead of linking onto an already-unlinked predecessor.
		if _, _, ok := casNext(prev, prevPtr, prevVer, n, false); ok {
			// prev.next now structurally references n; n's pool-acquire
			// reference serves that role, so n needs no further bookkeeping.
			if curr != nil {
				curr.release(sl.pool) // find()'s local handle
			}
			if prev != sl.head {
				prev.release(sl.pool)
			}
			sl.sizeApprox.Add(1)
			sl.recorder.onInsert()
			return
		}

		if curr != nil {
			curr.release(sl.pool) // undo the n.next -> curr structural retain
			curr.release(sl.pool) // find()'s local handle
		}
		if prev != sl.head {
			prev.release(sl.pool)
		}
		sl.recorder.onInsertRetry()
	}
}

// tryPopInternal is shared by TryPop, TryPopKey and CompareTryPop. When
// expected is non-nil, the pop only proceeds if the current top key
// compares equal to *expected under sl.cmp; observed always reports the
// top key seen at the linearization point, even on a mismatch or an empty
// list (zero value in the latter case).
func (sl *SortedList[K, V]) tryPopInternal(expected *K) (value V, observed K, ok bool) {
	// A negative count after the decrement means no counted element was
	// present: undo it and report empty without walking the chain.
	if sl.sizeApprox.Add(-1) < 0 {
		sl.sizeApprox.Add(1)
		return value, observed, false
	}
	for {
		// headPtr/headVer are the raw pair validated here, at the moment
		// sentinel.next was observed to point at head: the unlink CAS below
		// must use this captured pair rather than a fresh read, otherwise a
		// smaller key concurrently spliced in front of head between this
		// load and the CAS would go undetected and be dropped from the
		// chain along with head.
		head, _, headPtr, headVer := loadNext(sl.head, sl.pool)
		if head == nil {
			sl.sizeApprox.Add(1)
			var zero K
			return value, zero, false
		}

		observed = head.key
		if expected != nil && !equalUnderComparator(sl.cmp, head.key, *expected) {
			head.release(sl.pool)
			sl.sizeApprox.Add(1)
			return value, observed, false
		}

		// Whether or not this call won the retirement, it tries to unlink
		// head; only the caller that set the tag returns head's value, even
		// when another thread's unlink (or a splice in front of head) made
		// this CAS fail.
		splice, claimed, _, _ := loadNextAndSetTag(head, sl.pool)
		if splice != nil {
			splice.retain() // new structural reference: sentinel.next -> splice
		}
		if _, _, ok2 := casNext(sl.head, headPtr, headVer, splice, false); ok2 {
			head.release(sl.pool) // sentinel's old structural ref to head
			if splice != nil {
				splice.release(sl.pool) // head's stale structural ref to splice
			}
		} else if splice != nil {
			splice.release(sl.pool) // undo the retain; the swing lost the race
		}
		if splice != nil {
			splice.release(sl.pool) // this call's loadNextAndSetTag handle
		}

		if claimed {
			value = head.value
			head.release(sl.pool) // this call's loadNext handle
			sl.recorder.onPop()
			return value, observed, true
		}
		head.release(sl.pool)
		sl.recorder.onPopRetry()
	}
}

// TryPop removes and returns the minimum-keyed value, if any.
func (sl *SortedList[K, V]) TryPop() (value V, ok bool) {
	value, _, ok = sl.tryPopInternal(nil)
	return value, ok
}

// TryPopKey removes and returns the minimum key and its value, if any.
func (sl *SortedList[K, V]) TryPopKey() (key K, value V, ok bool) {
	value, observed, ok := sl.tryPopInternal(nil)
	return observed, value, ok
}

// CompareTryPop removes and returns the minimum-keyed value only if its key
// compares equal to expected, always reporting the key actually observed.
// NaN-valued keys never compare equal to anything, including themselves;
// callers that insert float keys and need exact-match semantics should
// avoid NaN.
func (sl *SortedList[K, V]) CompareTryPop(expected K) (value V, observed K, ok bool) {
	return sl.tryPopInternal(&expected)
}

// TryPeekTopKey reports the minimum key without removing it. The result is
// advisory: by the time the caller observes it, the key may already have
// been popped or a smaller key inserted.
func (sl *SortedList[K, V]) TryPeekTopKey() (key K, ok bool) {
	head, _, _, _ := loadNext(sl.head, sl.pool)
	if head == nil {
		var zero K
		return zero, false
	}
	key = head.key
	head.release(sl.pool)
	return key, true
}

// Size returns an eventually-consistent estimate of the number of elements.
func (sl *SortedList[K, V]) Size() int64 {
	return sl.sizeApprox.Load()
}

// UnsafeClear empties the list. Callers must guarantee no concurrent
// Insert/TryPop*/TryPeekTopKey/Size call is in flight; behavior is undefined
// otherwise.
func (sl *SortedList[K, V]) UnsafeClear() {
	curr, _ := unpackTaggedPtr[K, V](sl.head.next.ptr)
	storeNextUnsync(sl.head, nil, false)
	for curr != nil {
		next, _ := unpackTaggedPtr[K, V](curr.next.ptr)
		curr.refs.Store(0)
		sl.pool.release(curr)
		curr = next
	}
	sl.sizeApprox.Store(0)
}
