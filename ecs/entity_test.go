package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntity_PackingRoundTrip(t *testing.T) {
	e := newEntity(12345, 7)
	assert.Equal(t, uint32(12345), e.ID())
	assert.Equal(t, uint32(7), e.Version())
}

func TestEntity_NullSentinel(t *testing.T) {
	assert.True(t, NullEntity.IsNull())
	assert.False(t, Entity(0).IsNull())
}
