// Package containers implements the dynamic array, sparse set, sparse map,
// and view primitives every component store in the engine is layered on.
package containers

import "golang.org/x/exp/constraints"

// tombstone marks a sparse slot that has never been assigned a dense index.
const tombstone = ^uint32(0)

// SparseSet stores a set of keys with O(1) insert, remove, and contains,
// guaranteeing dense, contiguous iteration over the live keys. Removal swaps
// the removed key's slot with the last live key (insertion order is not
// preserved), matching the reference AxSparseSet implementation.
type SparseSet[K constraints.Unsigned] struct {
	sparse []uint32
	dense  []K
}

// NewSparseSet returns an empty SparseSet with no preallocated capacity.
func NewSparseSet[K constraints.Unsigned]() *SparseSet[K] {
	return &SparseSet[K]{}
}

func (s *SparseSet[K]) growSparse(k K) {
	need := int(k) + 1
	if need <= len(s.sparse) {
		return
	}
	if doubled := 2 * len(s.sparse); doubled > need {
		need = doubled
	}
	grown := make([]uint32, need)
	copy(grown, s.sparse)
	for i := len(s.sparse); i < need; i++ {
		grown[i] = tombstone
	}
	s.sparse = grown
}

// Has reports whether k is currently in the set.
func (s *SparseSet[K]) Has(k K) bool {
	if int(k) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[k]
	return idx != tombstone && idx < uint32(len(s.dense)) && s.dense[idx] == k
}

// Insert adds k to the set. Inserting an already-present key is a no-op.
func (s *SparseSet[K]) Insert(k K) {
	if s.Has(k) {
		return
	}
	s.growSparse(k)
	s.sparse[k] = uint32(len(s.dense))
	s.dense = append(s.dense, k)
}

// TryInsert behaves like Insert but reports whether the key was newly added.
func (s *SparseSet[K]) TryInsert(k K) bool {
	if s.Has(k) {
		return false
	}
	s.Insert(k)
	return true
}

// Remove deletes k from the set via swap-with-last. Removing an absent key is a no-op.
func (s *SparseSet[K]) Remove(k K) {
	s.TryRemove(k)
}

// TryRemove behaves like Remove but reports whether the key was present.
func (s *SparseSet[K]) TryRemove(k K) bool {
	if !s.Has(k) {
		return false
	}
	idx := s.sparse[k]
	last := uint32(len(s.dense)) - 1
	lastKey := s.dense[last]

	s.dense[idx] = lastKey
	s.sparse[lastKey] = idx
	s.dense = s.dense[:last]
	s.sparse[k] = tombstone
	return true
}

// Count returns the number of live keys.
func (s *SparseSet[K]) Count() int { return len(s.dense) }

// Keys returns the dense backing array of live keys. The returned slice
// aliases internal storage and is invalidated by the next Insert/Remove.
func (s *SparseSet[K]) Keys() []K { return s.dense }

// IndexOf returns the dense index of k, or false if absent. Exposed so
// SparseMap can keep a parallel elements array in lock-step.
func (s *SparseSet[K]) IndexOf(k K) (int, bool) {
	if !s.Has(k) {
		return 0, false
	}
	return int(s.sparse[k]), true
}

// Clear empties the set without releasing the sparse backing array.
func (s *SparseSet[K]) Clear() {
	for _, k := range s.dense {
		s.sparse[k] = tombstone
	}
	s.dense = s.dense[:0]
}
