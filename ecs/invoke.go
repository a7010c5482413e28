package ecs

// EachEntity visits every entity matched by the view without touching
// component storage, the Go analogue of the reference's invoke<Func, ...>
// taking a Func(Entity) callback — the signature the reference dispatches
// to when is_invocable_v<Func, Entity> holds. The other callback shapes
// (entity+components, components-only) are expressed as distinct ViewN
// types rather than runtime signature inspection; see DESIGN.md.
func (v *View1[A]) EachEntity(fn func(Entity)) {
	for _, e := range v.poolA.data.Keys() {
		fn(e)
	}
}

func (v *View2[A, B]) EachEntity(fn func(Entity)) {
	v.Each(func(e Entity, _ *A, _ *B) { fn(e) })
}

func (v *View3[A, B, C]) EachEntity(fn func(Entity)) {
	v.Each(func(e Entity, _ *A, _ *B, _ *C) { fn(e) })
}
