package ecs

import "github.com/andewx/forgevk/containers"

// componentPoolInterface is the type-erased surface every component pool
// exposes to the registry and to view driver-selection, regardless of
// whether the pool carries a value per entity or is a bare tag.
type componentPoolInterface interface {
	Has(Entity) bool
	Remove(Entity)
	Count() int
	Keys() []Entity
}

// componentPool stores one value of T per entity, keyed by entity id.
type componentPool[T any] struct {
	data *containers.SparseMap[Entity, T]
}

func newComponentPool[T any]() componentPoolInterface {
	return &componentPool[T]{data: containers.NewSparseMap[Entity, T]()}
}

func (p *componentPool[T]) Has(e Entity) bool   { return p.data.Has(e) }
func (p *componentPool[T]) Remove(e Entity)     { p.data.Remove(e) }
func (p *componentPool[T]) Count() int          { return p.data.Count() }
func (p *componentPool[T]) Keys() []Entity      { return p.data.Keys() }

func (p *componentPool[T]) add(e Entity, v T) *T {
	p.data.Insert(e, v)
	return p.data.GetPtr(e)
}

func (p *componentPool[T]) get(e Entity) (*T, bool) {
	ptr := p.data.GetPtr(e)
	if ptr == nil {
		return nil, false
	}
	return ptr, true
}

// tagPool stores presence only, for zero-sized marker components. Matches
// the reference AxSparseMap<Key, apex::empty Type> specialization: no
// elements array at all.
type tagPool struct {
	data *containers.TagSparseMap[Entity]
}

func newTagPool() componentPoolInterface {
	return &tagPool{data: containers.NewTagSparseMap[Entity]()}
}

func (p *tagPool) Has(e Entity) bool   { return p.data.Has(e) }
func (p *tagPool) Remove(e Entity)     { p.data.Remove(e) }
func (p *tagPool) Count() int          { return p.data.Count() }
func (p *tagPool) Keys() []Entity      { return p.data.Keys() }
func (p *tagPool) Insert(e Entity)     { p.data.Insert(e) }
