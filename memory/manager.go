package memory

import (
	"errors"
	"sync"
)

const (
	_KiB = 1024
	_MiB = 1024 * _KiB

	// defaultArenaCapacity mirrors the reference allocator's default frame-arena size.
	defaultArenaCapacity = 128 * _MiB
)

// PoolDescriptor is one entry of the static pool table: blocks of BlockSize
// bytes, BlockCount of them, reserved up front.
type PoolDescriptor struct {
	BlockSize  uintptr
	BlockCount uintptr
}

// defaultPoolTable spans 32B to 128MiB in ascending block size, the same
// envelope the reference allocator's default table covers.
var defaultPoolTable = []PoolDescriptor{
	{BlockSize: 32, BlockCount: 4096},
	{BlockSize: 64, BlockCount: 4096},
	{BlockSize: 128, BlockCount: 2048},
	{BlockSize: 256, BlockCount: 2048},
	{BlockSize: 512, BlockCount: 1024},
	{BlockSize: 1024, BlockCount: 1024},
	{BlockSize: 4 * _KiB, BlockCount: 512},
	{BlockSize: 16 * _KiB, BlockCount: 256},
	{BlockSize: 64 * _KiB, BlockCount: 128},
	{BlockSize: 256 * _KiB, BlockCount: 64},
	{BlockSize: 1 * _MiB, BlockCount: 32},
	{BlockSize: 4 * _MiB, BlockCount: 16},
	{BlockSize: 16 * _MiB, BlockCount: 8},
	{BlockSize: 32 * _MiB, BlockCount: 4},
	{BlockSize: 128 * _MiB, BlockCount: 1},
}

// MemoryManagerDesc configures a Manager at construction.
type MemoryManagerDesc struct {
	// FramesInFlight governs the number of frame arenas kept resident.
	FramesInFlight uint32
	// FrameArenaSize is the byte size of one frame arena; must be a power of two.
	FrameArenaSize uintptr
	// PoolTable overrides the default pool table when non-nil.
	PoolTable []PoolDescriptor
}

// Stats summarizes the manager's aggregate pool usage.
type Stats struct {
	TotalCapacity uintptr
	Allocated     uintptr
	PoolCount     int
}

// Manager owns a set of PoolAllocators ordered by ascending block size plus a
// ring of frame arenas. It is not safe for concurrent use; callers that need
// concurrent allocation must serialize externally (see distilled spec §5).
type Manager struct {
	pools  []*PoolAllocator
	arenas [][]byte
	cursor []uintptr
}

// ErrBadDesc is returned when MemoryManagerDesc fails a precondition.
var ErrBadDesc = errors.New("memory: invalid MemoryManagerDesc")

// NewManager builds an explicit-handle Manager. Containers and the ECS
// registry should generally take a *Manager explicitly rather than reach for
// Default(), per the "global allocator replacement" open question resolution
// recorded in DESIGN.md.
func NewManager(desc MemoryManagerDesc) (*Manager, error) {
	if desc.FrameArenaSize != 0 && desc.FrameArenaSize&(desc.FrameArenaSize-1) != 0 {
		return nil, ErrBadDesc
	}
	table := desc.PoolTable
	if table == nil {
		table = defaultPoolTable
	}
	m := &Manager{}
	for _, entry := range table {
		m.pools = append(m.pools, NewPoolAllocator(entry.BlockSize, entry.BlockCount))
	}

	arenaSize := desc.FrameArenaSize
	if arenaSize == 0 {
		arenaSize = defaultArenaCapacity
	}
	frames := desc.FramesInFlight
	if frames == 0 {
		frames = 1
	}
	m.arenas = make([][]byte, frames)
	m.cursor = make([]uintptr, frames)
	for i := range m.arenas {
		m.arenas[i] = make([]byte, arenaSize)
	}
	return m, nil
}

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default lazily constructs a process-wide Manager with the default pool
// table and a single frame arena. It exists for callers that accept a little
// global state in exchange for not threading a *Manager everywhere; anything
// that cares about testability or multiple independent managers should use
// NewManager directly.
func Default() *Manager {
	defaultOnce.Do(func() {
		m, err := NewManager(MemoryManagerDesc{FramesInFlight: 1})
		if err != nil {
			panic(err)
		}
		defaultMgr = m
	})
	return defaultMgr
}

// poolForSize returns the first pool (in ascending order) whose block size
// can satisfy a request of n bytes.
func (m *Manager) poolForSize(n uintptr) (*PoolAllocator, int) {
	for i, p := range m.pools {
		if p.BlockSize() >= n {
			return p, i
		}
	}
	return nil, -1
}

// poolForAddr returns the pool owning addr, identified purely by address
// range — no allocation carries a metadata header.
func (m *Manager) poolForAddr(addr uintptr) (*PoolAllocator, int) {
	for i, p := range m.pools {
		if p.Contains(addr) {
			return p, i
		}
	}
	return nil, -1
}

// Allocate returns a pointer whose containing block has capacity >= size.
func (m *Manager) Allocate(size uintptr) (uintptr, error) {
	pool, _ := m.poolForSize(size)
	if pool == nil {
		return 0, ErrOutOfMemory
	}
	return pool.Allocate()
}

// AllocateSized behaves like Allocate but also reports the full block size
// back to the caller, so they can use the entire block rather than just the
// requested span.
func (m *Manager) AllocateSized(size uintptr) (uintptr, uintptr, error) {
	pool, _ := m.poolForSize(size)
	if pool == nil {
		return 0, 0, ErrOutOfMemory
	}
	addr, err := pool.Allocate()
	if err != nil {
		return 0, 0, err
	}
	return addr, pool.BlockSize(), nil
}

// Bytes returns a byte-slice view over the block owning addr, for callers
// that allocated through Manager and want to write into the block directly.
func (m *Manager) Bytes(addr uintptr) []byte {
	pool, _ := m.poolForAddr(addr)
	if pool == nil {
		return nil
	}
	return pool.Bytes(addr)
}

// Free releases a previously allocated pointer. It is a no-op on the zero
// value. Freeing a pointer that is not CheckManaged+CanFree is a precondition
// violation and panics, matching the "undefined in release, abort in debug"
// contract from distilled spec §4.1.
func (m *Manager) Free(addr uintptr) {
	if addr == 0 {
		return
	}
	pool, _ := m.poolForAddr(addr)
	if pool == nil || !pool.AtBoundary(addr) {
		panic("memory: free of unmanaged or misaligned pointer")
	}
	pool.Free(addr)
}

// CheckManaged reports whether addr lies within this manager's reservation.
func (m *Manager) CheckManaged(addr uintptr) bool {
	_, idx := m.poolForAddr(addr)
	return idx >= 0
}

// CanFree reports whether addr is both managed and a valid free target.
func (m *Manager) CanFree(addr uintptr) bool {
	pool, _ := m.poolForAddr(addr)
	return pool != nil && pool.AtBoundary(addr)
}

// PoolIndexFor returns the index into the pool table serving addr, or -1.
func (m *Manager) PoolIndexFor(addr uintptr) int {
	_, idx := m.poolForAddr(addr)
	return idx
}

// TotalCapacity sums the byte capacity of every pool.
func (m *Manager) TotalCapacity() uintptr {
	var total uintptr
	for _, p := range m.pools {
		total += p.TotalCapacity()
	}
	return total
}

// AllocatedSize sums the bytes currently in use across every pool.
func (m *Manager) AllocatedSize() uintptr {
	var total uintptr
	for _, p := range m.pools {
		total += p.CurrentUsage()
	}
	return total
}

// Stats reports an aggregate snapshot of the manager's pools.
func (m *Manager) Stats() Stats {
	return Stats{
		TotalCapacity: m.TotalCapacity(),
		Allocated:     m.AllocatedSize(),
		PoolCount:     len(m.pools),
	}
}

// FrameArena returns the bump-allocated byte arena for the given frame slot.
// The caller is responsible for resetting ResetFrameArena at the start of
// its use; the manager does not auto-reset across frames.
func (m *Manager) FrameArena(slot int) []byte {
	return m.arenas[slot%len(m.arenas)]
}

// ResetFrameArena rewinds the bump cursor for a frame slot to zero.
func (m *Manager) ResetFrameArena(slot int) {
	m.cursor[slot%len(m.cursor)] = 0
}

// AllocateFromArena bump-allocates n bytes from the frame arena at slot,
// returning a sub-slice, or false if the arena is exhausted.
func (m *Manager) AllocateFromArena(slot int, n uintptr) ([]byte, bool) {
	i := slot % len(m.arenas)
	arena := m.arenas[i]
	cur := m.cursor[i]
	if cur+n > uintptr(len(arena)) {
		return nil, false
	}
	m.cursor[i] = cur + n
	return arena[cur : cur+n], true
}
