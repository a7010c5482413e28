package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }
type respawnTag struct{}

func TestRegistry_AddThenGetYieldsSamePoolStorage_Invariant3(t *testing.T) {
	r := NewRegistry()
	e := r.CreateEntity()

	p := Set(r, e, position{X: 1, Y: 2})
	got, ok := Get[position](r, e)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Equal(t, position{X: 1, Y: 2}, *got)
}

func TestRegistry_RemoveThenGetIsAbsent(t *testing.T) {
	r := NewRegistry()
	e := r.CreateEntity()
	Set(r, e, position{})

	Remove[position](r, e)
	_, ok := Get[position](r, e)
	assert.False(t, ok)
}

func TestRegistry_View_S2(t *testing.T) {
	r := NewRegistry()
	entities := make([]Entity, 20)
	for i := range entities {
		e := r.CreateEntity()
		entities[i] = e
		Set(r, e, position{})
		if i%2 == 0 {
			Set(r, e, velocity{})
		}
		if i%3 == 0 {
			AddTag[respawnTag](r, e)
		}
	}

	var gotAB []int
	View2Of[position, velocity](r).Each(func(e Entity, _ *position, _ *velocity) {
		gotAB = append(gotAB, int(e.ID()))
	})
	assert.ElementsMatch(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, gotAB)

	var gotAC []int
	ViewDataTagOf[position, respawnTag](r).Each(func(e Entity, _ *position) {
		gotAC = append(gotAC, int(e.ID()))
	})
	assert.ElementsMatch(t, []int{0, 3, 6, 9, 12, 15, 18}, gotAC)
}

func TestRegistry_View2_VisitsEveryMatchExactlyOnce_Invariant4(t *testing.T) {
	r := NewRegistry()
	const n = 50
	want := map[int]bool{}
	for i := 0; i < n; i++ {
		e := r.CreateEntity()
		Set(r, e, position{})
		if i%4 == 0 {
			Set(r, e, velocity{})
			want[i] = true
		}
	}

	seen := map[int]int{}
	View2Of[position, velocity](r).Each(func(e Entity, _ *position, _ *velocity) {
		seen[int(e.ID())]++
	})

	for i := 0; i < n; i++ {
		if want[i] {
			assert.Equal(t, 1, seen[i], "entity %d should be visited exactly once", i)
		} else {
			assert.Equal(t, 0, seen[i], "entity %d should not be visited", i)
		}
	}
}

func TestRegistry_AddTagElidesElementsArray(t *testing.T) {
	r := NewRegistry()
	e := r.CreateEntity()
	AddTag[respawnTag](r, e)
	assert.True(t, HasTag[respawnTag](r, e))
	RemoveTag[respawnTag](r, e)
	assert.False(t, HasTag[respawnTag](r, e))
}

func TestGrowPoolRegistry_MonotonicAndSufficient(t *testing.T) {
	for _, need := range []int{1, 2, 5, 100} {
		got := growPoolRegistry(0, need)
		assert.GreaterOrEqual(t, got, need)
	}
}
