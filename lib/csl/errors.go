package csl

import "github.com/benz9527/csl/lib/infra"

// PoolAllocationError is panicked by a node pool when growing it (allocating
// a fresh block) fails. The list is always left untouched by this failure:
// allocation always happens before a node is published into the chain, so
// no invariant can have been violated.
type PoolAllocationError struct {
	infra.ErrorStack
	Cause error
}

func newPoolAllocationError(cause error) *PoolAllocationError {
	es, _ := infra.NewErrorStack("csl: node pool block allocation failed").(infra.ErrorStack)
	return &PoolAllocationError{ErrorStack: es, Cause: cause}
}

func (e *PoolAllocationError) Error() string {
	if e.Cause == nil {
		return "csl: node pool block allocation failed"
	}
	return "csl: node pool block allocation failed: " + e.Cause.Error()
}

func (e *PoolAllocationError) Unwrap() error { return e.Cause }

// UnsupportedArchError is the panic raised at package init on a platform
// with no hand-written cas128 implementation. There is deliberately no
// degraded software fallback — see dword_cas_other.go.
type UnsupportedArchError struct {
	GOARCH string
}

func (e *UnsupportedArchError) Error() string {
	return "csl: no 16-byte atomic CAS available for GOARCH=" + e.GOARCH
}
