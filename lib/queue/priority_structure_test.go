package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedPriorityQueue_PopsInAscendingKeyOrder(t *testing.T) {
	kpq := NewKeyedPriorityQueue[int, string]()
	kpq.Insert(5, "a")
	kpq.Insert(3, "b")
	kpq.Insert(7, "c")

	assert.Equal(t, int64(3), kpq.Size())

	k, v, ok := kpq.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 3, k)
	assert.Equal(t, "b", v)

	v, ok = kpq.TryPop()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = kpq.TryPop()
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = kpq.TryPop()
	assert.False(t, ok)
}

func TestKeyedPriorityQueue_PeekAndCompareTryPop(t *testing.T) {
	kpq := NewKeyedPriorityQueue[int, string]()
	_, ok := kpq.TryPeekTopKey()
	assert.False(t, ok)

	kpq.Insert(10, "u")
	k, ok := kpq.TryPeekTopKey()
	require.True(t, ok)
	assert.Equal(t, 10, k)

	_, observed, ok := kpq.CompareTryPop(11)
	assert.False(t, ok)
	assert.Equal(t, 10, observed)

	v, observed, ok := kpq.CompareTryPop(10)
	require.True(t, ok)
	assert.Equal(t, "u", v)
	assert.Equal(t, 10, observed)
}

func TestKeyedPriorityQueue_CustomComparatorDescending(t *testing.T) {
	kpq := NewKeyedPriorityQueue[int, int](
		WithKeyedPriorityQueueComparator[int, int](func(i, j int) bool { return i > j }),
		WithKeyedPriorityQueueCapacity[int, int](8),
	)
	kpq.Insert(1, 1)
	kpq.Insert(3, 3)
	kpq.Insert(2, 2)

	k, _, ok := kpq.TryPopKey()
	require.True(t, ok)
	assert.Equal(t, 3, k)
}

func TestKeyedPriorityQueue_ThreadSafeOption(t *testing.T) {
	kpq := NewKeyedPriorityQueue[int, int](WithKeyedPriorityQueueEnableThreadSafe[int, int]())
	kpq.Insert(1, 100)
	v, ok := kpq.TryPop()
	require.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestKeyedPriorityQueue_ImplementsPriorityStructure(t *testing.T) {
	var _ PriorityStructure[int, int] = NewKeyedPriorityQueue[int, int]()
}
