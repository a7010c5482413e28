package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView1_VisitsEveryHolder(t *testing.T) {
	r := NewRegistry()
	var ids []int
	for i := 0; i < 5; i++ {
		e := r.CreateEntity()
		Set(r, e, position{X: float32(i)})
		ids = append(ids, int(e.ID()))
	}

	var got []int
	View1Of[position](r).Each(func(e Entity, p *position) {
		got = append(got, int(e.ID()))
		assert.Equal(t, float32(e.ID()), p.X)
	})
	assert.ElementsMatch(t, ids, got)
}

func TestView3_DriverSelectionVisitsIntersectionOnly(t *testing.T) {
	type tagA struct{}
	_ = tagA{}
	r := NewRegistry()

	type c1 struct{ V int }
	type c2 struct{ V int }
	type c3 struct{ V int }

	// c3 is the smallest pool: only entities 0 and 5 get it.
	for i := 0; i < 10; i++ {
		e := r.CreateEntity()
		Set(r, e, c1{V: i})
		Set(r, e, c2{V: i})
		if i == 0 || i == 5 {
			Set(r, e, c3{V: i})
		}
	}

	var got []int
	View3Of[c1, c2, c3](r).Each(func(e Entity, _ *c1, _ *c2, _ *c3) {
		got = append(got, int(e.ID()))
	})
	assert.ElementsMatch(t, []int{0, 5}, got)
}
