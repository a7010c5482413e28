// Package memory implements a fixed block-size pool allocator. Within this
// module only containers.DynamicArray draws blocks from it; the sparse
// containers and the ecs component stores use ordinary Go slices.
package memory

import (
	"errors"
	"unsafe"
)

// ErrOutOfMemory is returned when a pool has no free block left to serve an allocation.
var ErrOutOfMemory = errors.New("memory: pool exhausted")

// ErrNotManaged describes a pointer that does not belong to the allocator it
// was passed to. No function in this package returns it; Manager.Free panics
// in that case.
var ErrNotManaged = errors.New("memory: pointer not managed by this pool")

// ErrMisaligned describes a pointer that does not land on a block boundary.
// No function in this package returns it; Manager.Free panics in that case.
var ErrMisaligned = errors.New("memory: pointer is not a block boundary")

// blockAlignment is the minimum alignment guaranteed for every pool base and stride.
const blockAlignment = 16

// PoolAllocator serves fixed-size blocks out of one contiguous reservation.
// Free blocks form an intrusive singly-linked list: the next-pointer is written
// into the first machine word of the block itself, so a free block carries no
// separate metadata header.
type PoolAllocator struct {
	blockSize  uintptr
	blockCount uintptr
	storage    []byte
	base       uintptr
	freeHead   uintptr // 0 means empty; otherwise an address within storage
	freeCount  uintptr
}

// NewPoolAllocator reserves blockCount blocks of blockSize bytes, rounding
// blockSize up to the allocator's alignment requirement.
func NewPoolAllocator(blockSize, blockCount uintptr) *PoolAllocator {
	stride := alignUp(blockSize, blockAlignment)
	storage := make([]byte, stride*blockCount+blockAlignment)
	base := alignUp(uintptr(unsafe.Pointer(&storage[0])), blockAlignment)

	p := &PoolAllocator{
		blockSize:  stride,
		blockCount: blockCount,
		storage:    storage,
		base:       base,
	}
	p.reset()
	return p
}

func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// reset rebuilds the free-list so every block is free, head-to-tail in address order.
func (p *PoolAllocator) reset() {
	p.freeHead = 0
	for i := p.blockCount; i > 0; i-- {
		addr := p.base + (i-1)*p.blockSize
		p.writeNext(addr, p.freeHead)
		p.freeHead = addr
	}
	p.freeCount = p.blockCount
}

func (p *PoolAllocator) writeNext(addr, next uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = next
}

func (p *PoolAllocator) readNext(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

// BlockSize is the size in bytes of every block this allocator serves.
func (p *PoolAllocator) BlockSize() uintptr { return p.blockSize }

// TotalBlocks is the fixed number of blocks this allocator reserved.
func (p *PoolAllocator) TotalBlocks() uintptr { return p.blockCount }

// FreeBlocks is the number of blocks currently unallocated.
func (p *PoolAllocator) FreeBlocks() uintptr { return p.freeCount }

// TotalCapacity is the total byte span this allocator reserves.
func (p *PoolAllocator) TotalCapacity() uintptr { return p.blockCount * p.blockSize }

// CurrentUsage is the number of bytes currently handed out.
func (p *PoolAllocator) CurrentUsage() uintptr {
	return (p.blockCount - p.freeCount) * p.blockSize
}

// Contains reports whether addr falls within this pool's address range.
func (p *PoolAllocator) Contains(addr uintptr) bool {
	return addr >= p.base && addr < p.base+p.blockCount*p.blockSize
}

// AtBoundary reports whether addr both belongs to this pool and lands exactly
// on a block start, i.e. is a valid argument to Free.
func (p *PoolAllocator) AtBoundary(addr uintptr) bool {
	if !p.Contains(addr) {
		return false
	}
	return (addr-p.base)%p.blockSize == 0
}

// Allocate removes one block from the free-list and returns its address.
func (p *PoolAllocator) Allocate() (uintptr, error) {
	if p.freeHead == 0 {
		return 0, ErrOutOfMemory
	}
	addr := p.freeHead
	p.freeHead = p.readNext(addr)
	p.freeCount--
	return addr, nil
}

// Free returns a previously allocated block to the free-list. The caller must
// have already established AtBoundary(addr); Free does not re-check it.
func (p *PoolAllocator) Free(addr uintptr) {
	p.writeNext(addr, p.freeHead)
	p.freeHead = addr
	p.freeCount++
}

// Bytes returns a byte slice view of the block at addr, sized to BlockSize.
// addr must be a value previously returned by Allocate.
func (p *PoolAllocator) Bytes(addr uintptr) []byte {
	offset := addr - p.base
	return p.storage[offset : offset+p.blockSize]
}
