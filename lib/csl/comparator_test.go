package csl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAscending(t *testing.T) {
	less := ascending[int]()
	assert.True(t, less(1, 2))
	assert.False(t, less(2, 1))
	assert.False(t, less(2, 2))
}

func TestEqualUnderComparator(t *testing.T) {
	less := ascending[int]()
	assert.True(t, equalUnderComparator(less, 5, 5))
	assert.False(t, equalUnderComparator(less, 5, 6))
}

func TestEqualUnderComparator_NaNNeverEqual(t *testing.T) {
	less := ascending[float64]()
	nan := math.NaN()
	assert.False(t, equalUnderComparator(less, nan, nan))
	assert.False(t, equalUnderComparator(less, nan, 1.0))
}
