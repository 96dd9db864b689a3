package csl

import (
	"unsafe"

	"github.com/benz9527/csl/lib/infra"
)

// retiredTag marks a node's successor link as belonging to a node that has
// been logically popped but not yet physically unlinked.
const retiredTag uint64 = 1

func packTaggedPtr[K infra.NumericKey, V any](n *node[K, V], tagged bool) uint64 {
	p := uint64(uintptr(unsafe.Pointer(n)))
	if tagged {
		p |= retiredTag
	}
	return p
}

func unpackTaggedPtr[K infra.NumericKey, V any](raw uint64) (n *node[K, V], tagged bool) {
	tagged = raw&retiredTag != 0
	n = (*node[K, V])(unsafe.Pointer(uintptr(raw &^ retiredTag)))
	return n, tagged
}
