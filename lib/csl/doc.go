// Package csl implements a lock-free concurrent sorted list: a linearizable
// priority queue supporting many concurrent inserters and many concurrent
// poppers of the minimum-keyed entry.
//
// The chain is a singly-linked list of nodes in ascending key order, fronted
// by a permanent sentinel. Every mutation proceeds through compare-and-swap
// on a tagged, versioned, reference-counted shared reference to a node
// (ref.go, tagged_ptr.go, dword_cas_*.go); node storage itself is recycled
// by a slab-style pool (pool.go) backed by a lock-free MPMC FIFO
// (mpmc_queue.go). There are no locks, no hazard pointers, and no epochs.
package csl
