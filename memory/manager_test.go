package memory

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintptrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

func TestPoolRoundTrip_S1(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{FramesInFlight: 1})
	require.NoError(t, err)

	before := m.AllocatedSize()
	addr, blockSize, err := m.AllocateSized(1000)
	require.NoError(t, err)
	assert.Equal(t, uintptr(1024), blockSize)
	assert.True(t, m.CheckManaged(addr))
	assert.True(t, m.CanFree(addr))
	assert.Greater(t, m.AllocatedSize(), before)

	m.Free(addr)
	assert.Equal(t, before, m.AllocatedSize())
}

func TestManager_PoolIndexStableAcrossFreeThenAllocate(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{FramesInFlight: 1})
	require.NoError(t, err)

	addr, err := m.Allocate(40)
	require.NoError(t, err)
	idx := m.PoolIndexFor(addr)
	m.Free(addr)

	addr2, err := m.Allocate(40)
	require.NoError(t, err)
	assert.Equal(t, idx, m.PoolIndexFor(addr2))
}

func TestManager_OutOfMemoryWhenPoolExhausted(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{
		FramesInFlight: 1,
		PoolTable:      []PoolDescriptor{{BlockSize: 64, BlockCount: 2}},
	})
	require.NoError(t, err)

	_, err = m.Allocate(64)
	require.NoError(t, err)
	_, err = m.Allocate(64)
	require.NoError(t, err)
	_, err = m.Allocate(64)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestManager_AllocateLargerThanLargestPoolFails(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{
		FramesInFlight: 1,
		PoolTable:      []PoolDescriptor{{BlockSize: 64, BlockCount: 2}},
	})
	require.NoError(t, err)

	_, err = m.Allocate(128)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestManager_CheckManagedRejectsForeignPointer(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{FramesInFlight: 1})
	require.NoError(t, err)

	foreign := make([]byte, 8)
	var addr uintptr = uintptrOf(foreign)
	assert.False(t, m.CheckManaged(addr))
}

func TestManager_FreeOfUnmanagedPointerPanics(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{FramesInFlight: 1})
	require.NoError(t, err)

	foreign := make([]byte, 8)
	assert.Panics(t, func() {
		m.Free(uintptrOf(foreign))
	})
}

func TestManager_BadFrameArenaSizeRejected(t *testing.T) {
	_, err := NewManager(MemoryManagerDesc{FramesInFlight: 1, FrameArenaSize: 100})
	assert.ErrorIs(t, err, ErrBadDesc)
}

func TestManager_FrameArenaBumpAllocation(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{FramesInFlight: 2, FrameArenaSize: 256})
	require.NoError(t, err)

	a, ok := m.AllocateFromArena(0, 100)
	require.True(t, ok)
	assert.Len(t, a, 100)

	_, ok = m.AllocateFromArena(0, 200)
	assert.False(t, ok, "arena should be exhausted past its capacity")

	m.ResetFrameArena(0)
	_, ok = m.AllocateFromArena(0, 200)
	assert.True(t, ok, "reset should reclaim the arena")
}

func TestManager_StatsAggregatesPools(t *testing.T) {
	m, err := NewManager(MemoryManagerDesc{
		FramesInFlight: 1,
		PoolTable: []PoolDescriptor{
			{BlockSize: 32, BlockCount: 4},
			{BlockSize: 64, BlockCount: 2},
		},
	})
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 2, stats.PoolCount)
	assert.Equal(t, uintptr(32*4+64*2), stats.TotalCapacity)
	assert.Equal(t, uintptr(0), stats.Allocated)

	_, err = m.Allocate(32)
	require.NoError(t, err)
	assert.Equal(t, uintptr(32), m.Stats().Allocated)
}
