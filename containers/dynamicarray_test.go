package containers

import (
	"testing"

	"github.com/andewx/forgevk/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *memory.Manager {
	t.Helper()
	m, err := memory.NewManager(memory.MemoryManagerDesc{FramesInFlight: 1})
	require.NoError(t, err)
	return m
}

func TestDynamicArray_PushGrowsAcrossPoolClasses(t *testing.T) {
	mgr := newTestManager(t)
	arr := NewDynamicArray[int](mgr, 0)

	for i := 0; i < 500; i++ {
		arr.Push(i)
	}
	require.Equal(t, 500, arr.Len())
	for i := 0; i < 500; i++ {
		assert.Equal(t, i, *arr.At(i))
	}
}

func TestDynamicArray_PopReturnsLastElement(t *testing.T) {
	mgr := newTestManager(t)
	arr := NewDynamicArray[int](mgr, 4)
	arr.Push(1)
	arr.Push(2)
	assert.Equal(t, 2, arr.Pop())
	assert.Equal(t, 1, arr.Len())
}

func TestDynamicArray_ClearKeepsCapacity(t *testing.T) {
	mgr := newTestManager(t)
	arr := NewDynamicArray[int](mgr, 8)
	arr.Push(1)
	cap := arr.Cap()
	arr.Clear()
	assert.Equal(t, 0, arr.Len())
	assert.Equal(t, cap, arr.Cap())
}
