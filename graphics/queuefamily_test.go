package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQueueFamilies_DedicatedTransferQueue(t *testing.T) {
	families := []familyInfo{
		{flags: queueGraphics | queueCompute, supportsPresent: true},
		{flags: queueCompute},
		{flags: queueTransfer},
	}
	sel, err := selectQueueFamilies(families)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Graphics)
	assert.Equal(t, 1, sel.Compute)
	assert.Equal(t, 2, sel.Transfer)
	assert.False(t, sel.TransferIsGraphics)
}

func TestSelectQueueFamilies_FallsBackToGraphicsForTransfer(t *testing.T) {
	families := []familyInfo{
		{flags: queueGraphics | queueCompute | queueTransfer, supportsPresent: true},
		{flags: queueCompute},
	}
	sel, err := selectQueueFamilies(families)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Graphics)
	assert.Equal(t, 0, sel.Transfer)
	assert.True(t, sel.TransferIsGraphics)
}

func TestSelectQueueFamilies_ErrorsWithoutGraphicsPresent(t *testing.T) {
	families := []familyInfo{
		{flags: queueGraphics, supportsPresent: false},
		{flags: queueCompute, supportsPresent: true},
	}
	_, err := selectQueueFamilies(families)
	assert.ErrorIs(t, err, errNoSuitableGraphicsQueue)
}

func TestSelectQueueFamilies_ErrorsWithoutComputeQueue(t *testing.T) {
	families := []familyInfo{
		{flags: queueGraphics, supportsPresent: true},
	}
	_, err := selectQueueFamilies(families)
	assert.ErrorIs(t, err, errNoComputeQueue)
}

func TestSelectQueueFamilies_ComputeDistinctFromGraphics(t *testing.T) {
	families := []familyInfo{
		{flags: queueGraphics | queueCompute, supportsPresent: true},
		{flags: queueCompute},
	}
	sel, err := selectQueueFamilies(families)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Graphics)
	assert.Equal(t, 1, sel.Compute, "compute should prefer a family distinct from graphics")
}
