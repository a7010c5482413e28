package containers

import "golang.org/x/exp/constraints"

// SparseMap is a SparseSet with a parallel dense array of values, giving
// O(1) keyed lookup plus dense iteration over both keys and values.
type SparseMap[K constraints.Unsigned, V any] struct {
	set      SparseSet[K]
	elements []V
}

// NewSparseMap returns an empty SparseMap.
func NewSparseMap[K constraints.Unsigned, V any]() *SparseMap[K, V] {
	return &SparseMap[K, V]{}
}

// Has reports whether k has an associated value.
func (m *SparseMap[K, V]) Has(k K) bool { return m.set.Has(k) }

// Insert associates value with k, overwriting any existing association.
func (m *SparseMap[K, V]) Insert(k K, value V) {
	if idx, ok := m.set.IndexOf(k); ok {
		m.elements[idx] = value
		return
	}
	m.set.Insert(k)
	m.elements = append(m.elements, value)
}

// Get returns the value for k and whether it was present.
func (m *SparseMap[K, V]) Get(k K) (V, bool) {
	idx, ok := m.set.IndexOf(k)
	if !ok {
		var zero V
		return zero, false
	}
	return m.elements[idx], true
}

// GetPtr returns a pointer to the dense slot for k, or nil. The pointer is
// invalidated by the next Insert/Remove on this map.
func (m *SparseMap[K, V]) GetPtr(k K) *V {
	idx, ok := m.set.IndexOf(k)
	if !ok {
		return nil
	}
	return &m.elements[idx]
}

// Remove deletes k's association, swapping the last element into its slot.
func (m *SparseMap[K, V]) Remove(k K) {
	idx, ok := m.set.IndexOf(k)
	if !ok {
		return
	}
	last := len(m.elements) - 1
	m.elements[idx] = m.elements[last]
	m.elements = m.elements[:last]
	m.set.Remove(k)
}

// Count returns the number of keyed values currently stored.
func (m *SparseMap[K, V]) Count() int { return m.set.Count() }

// Keys returns the dense key array (aliases internal storage).
func (m *SparseMap[K, V]) Keys() []K { return m.set.Keys() }

// Values returns the dense value array (aliases internal storage), in the
// same order as Keys.
func (m *SparseMap[K, V]) Values() []V { return m.elements }

// Clear empties the map.
func (m *SparseMap[K, V]) Clear() {
	m.set.Clear()
	m.elements = m.elements[:0]
}

// TagSparseMap is the empty-value specialization: it stores no elements
// array at all, matching AxSparseMap<Key, apex::empty Type> in the reference
// implementation. Used for marker/tag components.
type TagSparseMap[K constraints.Unsigned] struct {
	set SparseSet[K]
}

// NewTagSparseMap returns an empty TagSparseMap.
func NewTagSparseMap[K constraints.Unsigned]() *TagSparseMap[K] {
	return &TagSparseMap[K]{}
}

func (m *TagSparseMap[K]) Has(k K) bool    { return m.set.Has(k) }
func (m *TagSparseMap[K]) Insert(k K)      { m.set.Insert(k) }
func (m *TagSparseMap[K]) Remove(k K)      { m.set.Remove(k) }
func (m *TagSparseMap[K]) Count() int      { return m.set.Count() }
func (m *TagSparseMap[K]) Keys() []K       { return m.set.Keys() }
func (m *TagSparseMap[K]) Clear()          { m.set.Clear() }
