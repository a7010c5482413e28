package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsage_LinkedChain(t *testing.T) {
	base := NewUsage("Render", 4)
	base.String["Display"] = "Window"

	ext := NewUsage("Extensions", 2)
	ext.Bool["Debug"] = true
	base.Linked = ext

	assert.True(t, base.HasLinked())
	linked, err := base.GetLinked()
	require.NoError(t, err)
	assert.Equal(t, "Extensions", linked.Name)
	assert.True(t, linked.Bool["Debug"])
}

func TestUsage_NoLinkedReturnsError(t *testing.T) {
	base := NewUsage("Render", 1)
	_, err := base.GetLinked()
	assert.Error(t, err)
}
