//go:build amd64 && !purego

package csl

// cas128 atomically compares cell's 16 bytes against (expectedPtr,
// expectedVer) and, if equal, stores (newPtr, newVer) and reports true.
// On failure it writes the cell's true current contents into *actualPtr
// and *actualVer and reports false. Implemented in dword_cas_amd64.s via
// LOCK CMPXCHG16B; generated with the same github.com/mmcloughlin/avo
// toolchain as the teacher's lib/kv/simd/asm.go — see
// internal/asmgen/asm.go.
//
//go:noescape
func cas128(cell *dword, expectedPtr, expectedVer, newPtr, newVer uint64, actualPtr, actualVer *uint64) bool
