package csl

import "github.com/benz9527/csl/lib/infra"

// Every node's refs field counts the number of pointer slots currently
// pointing at it: a predecessor's next cell, or a local handle returned by
// loadNext/loadNextAndSetTag. Installing a pointer into a slot (a cell or a
// local variable) retains; clearing or overwriting a slot releases. A
// handle returned by the functions below is owned by the caller exactly
// once — release it via node.release(pool) when done, or transfer its
// single retain into a cell with casNext/storeNextUnsync without any extra
// increment.

// loadNext returns a retained handle to n.next's current target (nil if
// n.next is nil) together with whether the retired tag is set, and the raw
// (ptr, ver) pair of n.next that was validated to produce succ. Callers that
// later CAS a predecessor cell conditioned on it still pointing at succ must
// use this returned pair as "expected" rather than re-reading n.next: a
// fresh read right before the CAS may already reflect an intervening
// mutation, which would make the CAS succeed against a stale assumption
// instead of failing cleanly and forcing a retry.
//
// Safe against concurrent recycling of the target's storage via optimistic
// increment-then-validate: if the cell changed underneath us, the increment
// is rolled back and the read retried.
func loadNext[K infra.NumericKey, V any](n *node[K, V], pool *nodePool[K, V]) (succ *node[K, V], tagged bool, ptr, ver uint64) {
	for {
		p, v := loadDwordRaw(n.next)
		target, tag := unpackTaggedPtr[K, V](p)
		if target == nil {
			return nil, tag, p, v
		}
		target.retain()
		p2, v2 := loadDwordRaw(n.next)
		if p2 == p && v2 == v {
			return target, tag, p, v
		}
		target.release(pool)
	}
}

// loadNextAndSetTag atomically sets the retired tag on n.next (also when it
// points at nil) and returns a retained handle to the node it points at (nil
// for a tail node), together with the raw (ptr, ver)
// pair of n.next after the transition (tagged, pointing at succ). claimed
// reports whether this call performed the untagged-to-tagged transition
// (true) or merely observed a tag some other popper had already set (false).
func loadNextAndSetTag[K infra.NumericKey, V any](n *node[K, V], pool *nodePool[K, V]) (succ *node[K, V], claimed bool, ptr, ver uint64) {
	for {
		p, v := loadDwordRaw(n.next)
		target, tagged := unpackTaggedPtr[K, V](p)
		if tagged {
			if target == nil {
				return nil, false, p, v
			}
			target.retain()
			p2, v2 := loadDwordRaw(n.next)
			if p2 != p || v2 != v {
				target.release(pool)
				continue
			}
			return target, false, p2, v2
		}

		newPtr := packTaggedPtr(target, true)
		var actualPtr, actualVer uint64
		if cas128(n.next, p, v, newPtr, v+1, &actualPtr, &actualVer) {
			if target != nil {
				target.retain()
			}
			return target, true, newPtr, v + 1
		}
	}
}

// casNext attempts to move n.next from (expectedPtr, expectedVer) to point
// at newTarget with the given tag. It performs no refcounting of its own —
// callers retain newTarget before the call and release whatever the cell
// previously pointed at after a successful swap, exactly as if this were a
// plain pointer assignment guarded by a CAS.
func casNext[K infra.NumericKey, V any](n *node[K, V], expectedPtr, expectedVer uint64, newTarget *node[K, V], tag bool) (actualPtr, actualVer uint64, ok bool) {
	newPtr := packTaggedPtr(newTarget, tag)
	var aPtr, aVer uint64
	if cas128(n.next, expectedPtr, expectedVer, newPtr, expectedVer+1, &aPtr, &aVer) {
		return 0, 0, true
	}
	return aPtr, aVer, false
}

// storeNextUnsync is the non-atomic counterpart used only where no
// concurrent observer can exist: initializing a freshly acquired node,
// setting a not-yet-published node's successor, and clearing the sentinel in
// UnsafeClear. Like casNext, it performs no refcounting of its own.
func storeNextUnsync[K infra.NumericKey, V any](n *node[K, V], target *node[K, V], tag bool) {
	n.next.ptr = packTaggedPtr(target, tag)
	n.next.ver++
}
