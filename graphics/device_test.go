package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueIndices_DedupesPreservingOrder(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, uniqueIndices(0, 1, 2))
	assert.Equal(t, []int{0, 1}, uniqueIndices(0, 0, 1, 1, 0))
	assert.Equal(t, []int{3}, uniqueIndices(3, 3, 3))
}
