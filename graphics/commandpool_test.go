package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandPoolTable_FamilyIndexMapsQueueType(t *testing.T) {
	table := &CommandPoolTable{families: queueFamilySelection{Graphics: 0, Compute: 1, Transfer: 2}}
	assert.Equal(t, uint32(0), table.familyIndex(QueueTypeGraphics))
	assert.Equal(t, uint32(1), table.familyIndex(QueueTypeCompute))
	assert.Equal(t, uint32(2), table.familyIndex(QueueTypeTransfer))
}

func TestCommandPoolTable_UnknownQueueTypePanics(t *testing.T) {
	table := &CommandPoolTable{}
	assert.Panics(t, func() { table.familyIndex(QueueType(99)) })
}
