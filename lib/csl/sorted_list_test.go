package csl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedList_S1_ThreeInsertsThreePops(t *testing.T) {
	sl := New[int, string]()
	sl.Insert(5, "a")
	sl.Insert(3, "b")
	sl.Insert(7, "c")

	v, ok := sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = sl.TryPop()
	assert.False(t, ok)
}

func TestSortedList_S2_DuplicateKeysPopFIFO(t *testing.T) {
	sl := New[int, string]()
	sl.Insert(2, "first")
	sl.Insert(2, "second")

	k, v, ok := sl.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 2, k)
	assert.Equal(t, "first", v)

	k, v, ok = sl.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 2, k)
	assert.Equal(t, "second", v)

	_, ok = sl.TryPop()
	assert.False(t, ok)
}

func TestSortedList_S3_PeekTopKey(t *testing.T) {
	sl := New[int, string]()

	_, ok := sl.TryPeekTopKey()
	assert.False(t, ok)

	sl.Insert(9, "q")

	k, ok := sl.TryPeekTopKey()
	require.True(t, ok)
	assert.Equal(t, 9, k)

	k2, v, ok := sl.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 9, k2)
	assert.Equal(t, "q", v)

	_, ok = sl.TryPeekTopKey()
	assert.False(t, ok)
}

func TestSortedList_S4_CompareTryPop(t *testing.T) {
	sl := New[int, string]()
	sl.Insert(10, "u")

	_, observed, ok := sl.CompareTryPop(11)
	assert.False(t, ok)
	assert.Equal(t, 10, observed)

	v, observed, ok := sl.CompareTryPop(10)
	require.True(t, ok)
	assert.Equal(t, "u", v)
	assert.Equal(t, 10, observed)
}

func TestSortedList_InsertThenPopOnEmpty(t *testing.T) {
	sl := New[int, string]()
	sl.Insert(1, "x")
	v, ok := sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = sl.TryPop()
	assert.False(t, ok)
}

func TestSortedList_SequentialInsertsPopInAscendingOrder(t *testing.T) {
	sl := New[int, int]()
	keys := []int{42, -7, 0, 100, 13, 99, -100, 5}
	for _, k := range keys {
		sl.Insert(k, k)
	}

	want := append([]int(nil), keys...)
	for i := 1; i < len(want); i++ {
		for j := i; j > 0 && want[j-1] > want[j]; j-- {
			want[j-1], want[j] = want[j], want[j-1]
		}
	}

	for _, k := range want {
		got, ok := sl.TryPop()
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := sl.TryPop()
	assert.False(t, ok)
}

func TestSortedList_TryPopOnEmptyIsIdempotentFalse(t *testing.T) {
	sl := New[int, string]()
	for i := 0; i < 5; i++ {
		_, ok := sl.TryPop()
		assert.False(t, ok)
	}
	assert.Equal(t, int64(0), sl.Size())
}

func TestSortedList_SizeTracksInsertsAndPops(t *testing.T) {
	sl := New[int, int]()
	assert.Equal(t, int64(0), sl.Size())
	for i := 0; i < 10; i++ {
		sl.Insert(i, i)
	}
	assert.Equal(t, int64(10), sl.Size())
	for i := 0; i < 4; i++ {
		_, ok := sl.TryPop()
		require.True(t, ok)
	}
	assert.Equal(t, int64(6), sl.Size())
}

func TestSortedList_UnsafeClear(t *testing.T) {
	sl := New[int, int]()
	for i := 0; i < 20; i++ {
		sl.Insert(i, i*i)
	}
	sl.UnsafeClear()
	assert.Equal(t, int64(0), sl.Size())
	_, ok := sl.TryPop()
	assert.False(t, ok)

	sl.Insert(1, 1)
	v, ok := sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestSortedList_CustomComparatorDescending(t *testing.T) {
	sl := New[int, int](WithComparator[int, int](func(a, b int) bool { return a > b }))
	sl.Insert(1, 1)
	sl.Insert(3, 3)
	sl.Insert(2, 2)

	first, ok := sl.TryPop()
	require.True(t, ok)
	assert.Equal(t, 3, first)
}
