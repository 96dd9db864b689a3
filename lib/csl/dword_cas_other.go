//go:build !amd64 && !arm64 || purego

package csl

import "runtime"

// No portable software loop stands in here: a CAS-retry loop built from two
// independent 64-bit CASes cannot provide the atomicity the version counter
// depends on to defeat ABA, which is the entire point of cas128. Platforms
// without a hardware double-width CAS simply can't run this package.
func init() {
	panic(&UnsupportedArchError{GOARCH: runtime.GOARCH})
}

func cas128(cell *dword, expectedPtr, expectedVer, newPtr, newVer uint64, actualPtr, actualVer *uint64) bool {
	panic(&UnsupportedArchError{GOARCH: runtime.GOARCH})
}
