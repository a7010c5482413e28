package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseSet_ContainsInvariant(t *testing.T) {
	s := NewSparseSet[uint32]()
	for _, k := range []uint32{3, 1, 4, 1, 5, 9} {
		s.Insert(k)
	}
	assert.Equal(t, 5, s.Count()) // 1 inserted twice

	for i, k := range s.Keys() {
		idx, ok := s.IndexOf(k)
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestSparseSet_RemoveIsNoOpOnContains_RoundTrip(t *testing.T) {
	s := NewSparseSet[uint32]()
	s.Insert(42)
	assert.True(t, s.Has(42))
	s.Remove(42)
	assert.False(t, s.Has(42))
}

func TestSparseSet_StabilityUnderRemove_S6(t *testing.T) {
	s := NewSparseSet[uint32]()
	for _, k := range []uint32{1, 4, 2, 7, 9} {
		s.Insert(k)
	}
	s.Remove(4)

	assert.Equal(t, []uint32{1, 9, 2, 7}, s.Keys())
}

func TestSparseSet_TryInsertReportsNovelty(t *testing.T) {
	s := NewSparseSet[uint32]()
	assert.True(t, s.TryInsert(1))
	assert.False(t, s.TryInsert(1))
}

func TestSparseSet_TryRemoveReportsPresence(t *testing.T) {
	s := NewSparseSet[uint32]()
	assert.False(t, s.TryRemove(1))
	s.Insert(1)
	assert.True(t, s.TryRemove(1))
}

func TestSparseSet_ClearEmptiesButKeepsBacking(t *testing.T) {
	s := NewSparseSet[uint32]()
	s.Insert(1)
	s.Insert(2)
	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Has(1))
	s.Insert(1)
	assert.True(t, s.Has(1))
}
