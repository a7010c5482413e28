package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocator_ContainsAndBoundary(t *testing.T) {
	p := NewPoolAllocator(64, 4)

	addr, err := p.Allocate()
	require.NoError(t, err)
	assert.True(t, p.Contains(addr))
	assert.True(t, p.AtBoundary(addr))
	assert.False(t, p.AtBoundary(addr+1))
	assert.False(t, p.Contains(addr+p.TotalCapacity()))
}

func TestPoolAllocator_FreeListLIFO(t *testing.T) {
	p := NewPoolAllocator(32, 3)

	a1, _ := p.Allocate()
	a2, _ := p.Allocate()
	p.Free(a1)
	p.Free(a2)

	// last freed (a2) should come back first.
	next, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, a2, next)
}

func TestPoolAllocator_ExhaustionReturnsError(t *testing.T) {
	p := NewPoolAllocator(16, 2)
	_, err := p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestPoolAllocator_BlockSizeRoundedToAlignment(t *testing.T) {
	p := NewPoolAllocator(20, 1)
	assert.Equal(t, uintptr(32), p.BlockSize())
}

func TestPoolAllocator_BytesViewSizedToBlock(t *testing.T) {
	p := NewPoolAllocator(64, 1)
	addr, err := p.Allocate()
	require.NoError(t, err)
	assert.Len(t, p.Bytes(addr), 64)
}
