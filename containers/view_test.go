package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView_FiltersAndIterates(t *testing.T) {
	src := []int{1, 2, 3, 4, 5, 6}
	v := NewView(src, func(i *int) bool { return *i%2 == 0 })

	var got []int
	v.Each(func(i *int) { got = append(got, *i) })

	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestView_NilPredicateVisitsAll(t *testing.T) {
	src := []int{1, 2, 3}
	v := NewView(src, nil)
	var count int
	v.Each(func(i *int) { count++ })
	assert.Equal(t, 3, count)
}
