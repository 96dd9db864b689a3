// Command asmgen emits dword_cas_amd64.s and its Go stub, the same way
// lib/kv/simd/asm.go in the teacher repo emits match_metadata.s. Run it with:
//
//	go run ./internal/asmgen -out ../dword_cas_amd64.s -stubs ../dword_cas_amd64.go
//
// The output is committed directly (see DESIGN.md): unlike the SIMD
// hash-match case this package has no slower-but-portable fallback, so
// there is no reason to regenerate it on every build.
package main

import (
	. "github.com/mmcloughlin/avo/build"
	. "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

func main() {
	ConstraintExpr("amd64")
	ConstraintExpr("!purego")

	TEXT("cas128", NOSPLIT, "func(cell *dword, expectedPtr, expectedVer, newPtr, newVer uint64, actualPtr, actualVer *uint64) bool")
	Doc("cas128 performs a 16-byte compare-and-swap via LOCK CMPXCHG16B.")

	cell := Load(Param("cell"), GP64())
	expectedPtr := Load(Param("expectedPtr"), GP64())
	expectedVer := Load(Param("expectedVer"), GP64())
	newPtr := Load(Param("newPtr"), GP64())
	newVer := Load(Param("newVer"), GP64())

	Comment("AX:DX hold the expected low:high words, BX:CX the desired ones")
	MOVQ(expectedPtr, RAX)
	MOVQ(expectedVer, RDX)
	MOVQ(newPtr, RBX)
	MOVQ(newVer, RCX)

	Comment("On mismatch CMPXCHG16B reloads the true memory value into DX:AX")
	cx := CMPXCHG16B(Mem{Base: cell})
	cx.Lock()

	actualPtr := Load(Param("actualPtr"), GP64())
	MOVQ(RAX, Mem{Base: actualPtr})
	actualVer := Load(Param("actualVer"), GP64())
	MOVQ(RDX, Mem{Base: actualVer})

	ok := GP8()
	SETEQ(ok)
	Store(ok, ReturnIndex(0))
	RET()

	Generate()
}
