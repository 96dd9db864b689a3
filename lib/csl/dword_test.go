package csl

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAlignedDwords_Alignment(t *testing.T) {
	cells := allocAlignedDwords(37)
	require.Len(t, cells, 37)
	for i, c := range cells {
		addr := uintptr(unsafe.Pointer(c))
		assert.Zerof(t, addr%16, "cell %d not 16-byte aligned: %#x", i, addr)
	}
}

func TestAllocAlignedDwords_Empty(t *testing.T) {
	assert.Nil(t, allocAlignedDwords(0))
	assert.Nil(t, allocAlignedDwords(-1))
}

func TestCas128_SuccessAndFailure(t *testing.T) {
	cell := allocAlignedDwords(1)[0]
	cell.ptr = 100
	cell.ver = 1

	var actualPtr, actualVer uint64
	ok := cas128(cell, 100, 1, 200, 2, &actualPtr, &actualVer)
	require.True(t, ok)
	assert.Equal(t, uint64(200), cell.ptr)
	assert.Equal(t, uint64(2), cell.ver)

	// stale expectation: cell has already moved on to (200, 2).
	ok = cas128(cell, 100, 1, 300, 3, &actualPtr, &actualVer)
	assert.False(t, ok)
	assert.Equal(t, uint64(200), actualPtr)
	assert.Equal(t, uint64(2), actualVer)
	assert.Equal(t, uint64(200), cell.ptr)
	assert.Equal(t, uint64(2), cell.ver)
}

func TestLoadDwordRaw(t *testing.T) {
	cell := allocAlignedDwords(1)[0]
	cell.ptr = 42
	cell.ver = 9
	p, v := loadDwordRaw(cell)
	assert.Equal(t, uint64(42), p)
	assert.Equal(t, uint64(9), v)
}
