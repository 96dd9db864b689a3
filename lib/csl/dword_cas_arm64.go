//go:build arm64 && !purego

package csl

// cas128 on arm64 is a LDAXP/STLXP (load/store-exclusive pair, available
// since ARMv8.0 — CASP needs the ARMv8.1 LSE extension this avoids
// depending on) retry loop in dword_cas_arm64.s, with the same contract as
// the amd64 version: true and no write on match, false plus the real
// current value written to *actualPtr/*actualVer on mismatch.
//
//go:noescape
func cas128(cell *dword, expectedPtr, expectedVer, newPtr, newVer uint64, actualPtr, actualVer *uint64) bool
