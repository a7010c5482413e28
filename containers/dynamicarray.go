package containers

import (
	"unsafe"

	"github.com/andewx/forgevk/memory"
)

// DynamicArray is a contiguous, growable array whose capacity is reserved as
// a *memory.Manager pool block. Growth takes a new block from the next pool
// class that fits, so the array's capacity is always a pool block size
// divided by sizeof(T), which may exceed what was actually requested. The
// elements themselves live in an ordinary Go slice of that capacity, not in
// the pool block's bytes.
type DynamicArray[T any] struct {
	mgr      *memory.Manager
	addr     uintptr
	blockLen uintptr
	items    []T
}

// NewDynamicArray constructs an array backed by mgr with room for at least
// initialCap elements.
func NewDynamicArray[T any](mgr *memory.Manager, initialCap int) *DynamicArray[T] {
	d := &DynamicArray[T]{mgr: mgr}
	if initialCap > 0 {
		d.grow(initialCap)
	}
	return d
}

func sizeOfT[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (d *DynamicArray[T]) grow(minCap int) {
	elemSize := sizeOfT[T]()
	if elemSize == 0 {
		elemSize = 1
	}
	needed := elemSize * uintptr(minCap)

	addr, blockSize, err := d.mgr.AllocateSized(needed)
	if err != nil {
		panic(err)
	}

	// The pool block only reserves capacity bookkeeping; T may hold pointers,
	// so the live elements stay in a GC-visible slice rather than the raw
	// block bytes themselves.
	cap := int(blockSize / elemSize)
	grown := make([]T, len(d.items), cap)
	copy(grown, d.items)

	if d.addr != 0 {
		d.mgr.Free(d.addr)
	}
	d.addr = addr
	d.blockLen = blockSize
	d.items = grown
}

// Len returns the number of live elements.
func (d *DynamicArray[T]) Len() int { return len(d.items) }

// Cap returns the pool-class capacity currently backing the array.
func (d *DynamicArray[T]) Cap() int { return cap(d.items) }

// At returns a pointer to the element at i.
func (d *DynamicArray[T]) At(i int) *T { return &d.items[i] }

// Push appends v, growing the backing pool block if the current one is full.
func (d *DynamicArray[T]) Push(v T) {
	if len(d.items) == cap(d.items) {
		d.grow(cap(d.items) + 1)
	}
	d.items = append(d.items, v)
}

// Pop removes and returns the last element. Pop on an empty array panics.
func (d *DynamicArray[T]) Pop() T {
	n := len(d.items) - 1
	v := d.items[n]
	var zero T
	d.items[n] = zero
	d.items = d.items[:n]
	return v
}

// Clear drops every element (in reverse order, matching the reference
// destructor-run order) without releasing the backing block.
func (d *DynamicArray[T]) Clear() {
	var zero T
	for i := len(d.items) - 1; i >= 0; i-- {
		d.items[i] = zero
	}
	d.items = d.items[:0]
}

// Slice returns the live elements as a slice aliasing internal storage.
func (d *DynamicArray[T]) Slice() []T { return d.items }

// Release returns the backing block to the manager. The array must not be
// used afterward.
func (d *DynamicArray[T]) Release() {
	if d.addr != 0 {
		d.mgr.Free(d.addr)
		d.addr = 0
	}
	d.items = nil
}
