package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseMap_InsertGetRemove(t *testing.T) {
	m := NewSparseMap[uint32, string]()
	m.Insert(10, "ten")
	m.Insert(20, "twenty")

	v, ok := m.Get(10)
	require.True(t, ok)
	assert.Equal(t, "ten", v)

	m.Remove(10)
	_, ok = m.Get(10)
	assert.False(t, ok)

	v, ok = m.Get(20)
	require.True(t, ok)
	assert.Equal(t, "twenty", v)
}

func TestSparseMap_InsertOverwritesExisting(t *testing.T) {
	m := NewSparseMap[uint32, int]()
	m.Insert(1, 100)
	m.Insert(1, 200)
	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, 200, v)
	assert.Equal(t, 1, m.Count())
}

func TestSparseMap_GetPtrAliasesStorage(t *testing.T) {
	m := NewSparseMap[uint32, int]()
	m.Insert(5, 1)
	p := m.GetPtr(5)
	require.NotNil(t, p)
	*p = 42
	v, _ := m.Get(5)
	assert.Equal(t, 42, v)
}

func TestSparseMap_KeysAndValuesStayInLockStep(t *testing.T) {
	m := NewSparseMap[uint32, string]()
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(3, "c")
	m.Remove(1)

	keys := m.Keys()
	values := m.Values()
	require.Equal(t, len(keys), len(values))
	for i, k := range keys {
		v, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, v, values[i])
	}
}

func TestTagSparseMap_NoElementsArray(t *testing.T) {
	m := NewTagSparseMap[uint32]()
	m.Insert(7)
	assert.True(t, m.Has(7))
	m.Remove(7)
	assert.False(t, m.Has(7))
}
