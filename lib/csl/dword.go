package csl

import (
	"sync/atomic"
	"unsafe"
)

// dword is a 128-bit cell: a tagged node pointer plus a monotonic version
// counter, updated only by the hardware cas128 in dword_cas_*.go. It must
// sit at a 16-byte-aligned address for CMPXCHG16B/CASP to be legal; plain Go
// allocation only guarantees 8-byte alignment for a value's first word (see
// https://pkg.go.dev/sync/atomic#pkg-note-BUG), so every dword in this
// package is carved out of a buffer over-allocated and aligned by
// allocAlignedDwords.
type dword struct {
	ptr uint64
	ver uint64
}

// allocAlignedDwords returns n *dword values, each at a 16-byte-aligned
// address, backed by one shared over-allocated buffer. The buffer is kept
// alive by the Go garbage collector for as long as any returned pointer (or
// any pointer derived from it) remains reachable, since each is an interior
// pointer into the same backing array.
func allocAlignedDwords(n int) []*dword {
	if n <= 0 {
		return nil
	}
	const size = unsafe.Sizeof(dword{})
	raw := make([]byte, uintptr(n)*size+size)
	base := uintptr(unsafe.Pointer(&raw[0]))
	offset := (size - base%size) % size
	start := unsafe.Pointer(&raw[offset])
	out := make([]*dword, n)
	for i := 0; i < n; i++ {
		out[i] = (*dword)(unsafe.Add(start, uintptr(i)*size))
	}
	return out
}

func loadDwordRaw(cell *dword) (ptr, ver uint64) {
	// cas128 with matching expected/new values is a no-op on success and,
	// on failure, writes the true current contents back through actualPtr/
	// actualVer — the same "compare-exchange as a read" trick atomic_oword's
	// load() uses, implemented directly instead of relying on a lucky guess.
	p := atomic.LoadUint64(&cell.ptr)
	v := atomic.LoadUint64(&cell.ver)
	for {
		var actualPtr, actualVer uint64
		if cas128(cell, p, v, p, v, &actualPtr, &actualVer) {
			return p, v
		}
		p, v = actualPtr, actualVer
	}
}
