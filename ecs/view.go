package ecs

// View1 iterates every entity holding a single component type.
type View1[A any] struct {
	poolA *componentPool[A]
}

// View1Of returns a view over every entity carrying component A.
func View1Of[A any](r *Registry) *View1[A] {
	return &View1[A]{poolA: assureDataPool[A](r)}
}

// Each visits every entity with component A, in the pool's dense order.
func (v *View1[A]) Each(fn func(Entity, *A)) {
	for _, e := range v.poolA.data.Keys() {
		fn(e, v.poolA.data.GetPtr(e))
	}
}

// Count reports how many entities this view currently matches.
func (v *View1[A]) Count() int { return v.poolA.Count() }

// View2 iterates every entity holding both A and B, driven by whichever pool
// is currently smaller (distilled spec §4.6 "smallest pool" selection).
type View2[A, B any] struct {
	poolA *componentPool[A]
	poolB *componentPool[B]
}

// View2Of returns a view over every entity carrying both A and B.
func View2Of[A, B any](r *Registry) *View2[A, B] {
	return &View2[A, B]{
		poolA: assureDataPool[A](r),
		poolB: assureDataPool[B](r),
	}
}

// Each visits every entity with both A and B exactly once.
func (v *View2[A, B]) Each(fn func(Entity, *A, *B)) {
	if v.poolA.Count() <= v.poolB.Count() {
		for _, e := range v.poolA.data.Keys() {
			if v.poolB.Has(e) {
				fn(e, v.poolA.data.GetPtr(e), v.poolB.data.GetPtr(e))
			}
		}
		return
	}
	for _, e := range v.poolB.data.Keys() {
		if v.poolA.Has(e) {
			fn(e, v.poolA.data.GetPtr(e), v.poolB.data.GetPtr(e))
		}
	}
}

// Contains reports whether e carries both A and B.
func (v *View2[A, B]) Contains(e Entity) bool {
	return v.poolA.Has(e) && v.poolB.Has(e)
}

// View3 iterates every entity holding A, B, and C, driven by the smallest
// of the three pools.
type View3[A, B, C any] struct {
	poolA *componentPool[A]
	poolB *componentPool[B]
	poolC *componentPool[C]
}

// View3Of returns a view over every entity carrying A, B, and C.
func View3Of[A, B, C any](r *Registry) *View3[A, B, C] {
	return &View3[A, B, C]{
		poolA: assureDataPool[A](r),
		poolB: assureDataPool[B](r),
		poolC: assureDataPool[C](r),
	}
}

// Each visits every entity with A, B, and C exactly once.
func (v *View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	n := v.poolA.Count()
	driver := 0
	if v.poolB.Count() < n {
		n = v.poolB.Count()
		driver = 1
	}
	if v.poolC.Count() < n {
		driver = 2
	}

	switch driver {
	case 0:
		for _, e := range v.poolA.data.Keys() {
			if v.poolB.Has(e) && v.poolC.Has(e) {
				fn(e, v.poolA.data.GetPtr(e), v.poolB.data.GetPtr(e), v.poolC.data.GetPtr(e))
			}
		}
	case 1:
		for _, e := range v.poolB.data.Keys() {
			if v.poolA.Has(e) && v.poolC.Has(e) {
				fn(e, v.poolA.data.GetPtr(e), v.poolB.data.GetPtr(e), v.poolC.data.GetPtr(e))
			}
		}
	default:
		for _, e := range v.poolC.data.Keys() {
			if v.poolA.Has(e) && v.poolB.Has(e) {
				fn(e, v.poolA.data.GetPtr(e), v.poolB.data.GetPtr(e), v.poolC.data.GetPtr(e))
			}
		}
	}
}

// ViewDataTag iterates every entity holding data component A and tag Tag,
// driven by whichever side is smaller. This is the shape scenario S2 in
// distilled spec §8 exercises ("view<A,C>" where C is a tag).
type ViewDataTag[A, Tag any] struct {
	poolA *componentPool[A]
	tag   *tagPool
}

// ViewDataTagOf returns a view over every entity carrying both component A
// and tag Tag.
func ViewDataTagOf[A, Tag any](r *Registry) *ViewDataTag[A, Tag] {
	return &ViewDataTag[A, Tag]{
		poolA: assureDataPool[A](r),
		tag:   assureTagPool[Tag](r),
	}
}

// Each visits every entity carrying both A and the tag.
func (v *ViewDataTag[A, Tag]) Each(fn func(Entity, *A)) {
	if v.poolA.Count() <= v.tag.Count() {
		for _, e := range v.poolA.data.Keys() {
			if v.tag.Has(e) {
				fn(e, v.poolA.data.GetPtr(e))
			}
		}
		return
	}
	for _, e := range v.tag.Keys() {
		if v.poolA.Has(e) {
			fn(e, v.poolA.data.GetPtr(e))
		}
	}
}
