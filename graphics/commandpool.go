package graphics

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// QueueType names one of the three queue roles command pools are keyed by.
type QueueType int

const (
	QueueTypeGraphics QueueType = iota
	QueueTypeCompute
	QueueTypeTransfer
)

// commandPoolKey identifies one command pool in the (queue_type, frame_slot,
// thread_id) table distilled spec §4.4 requires, so each rendering thread
// records into its own pool per frame-in-flight without locking.
type commandPoolKey struct {
	queue QueueType
	slot  uint32
	thread uint32
}

// CommandPoolTable owns one vk.CommandPool per (queue type, frame slot,
// thread id) combination, generalizing the teacher's single CorePool /
// CommandBufferManager pairing (one pool for the whole app) into a table
// sized for multi-threaded recording.
type CommandPoolTable struct {
	device   vk.Device
	families queueFamilySelection
	pools    map[commandPoolKey]vk.CommandPool
}

// NewCommandPoolTable creates an (initially empty) table against device;
// pools are created lazily on first PoolFor call so unused (queue, thread)
// combinations never allocate a pool.
func NewCommandPoolTable(device vk.Device, families queueFamilySelection) *CommandPoolTable {
	return &CommandPoolTable{
		device:   device,
		families: families,
		pools:    make(map[commandPoolKey]vk.CommandPool),
	}
}

func (t *CommandPoolTable) familyIndex(queue QueueType) uint32 {
	switch queue {
	case QueueTypeGraphics:
		return uint32(t.families.Graphics)
	case QueueTypeCompute:
		return uint32(t.families.Compute)
	case QueueTypeTransfer:
		return uint32(t.families.Transfer)
	default:
		panic("graphics: unknown queue type")
	}
}

// PoolFor returns the command pool for (queue, slot, thread), creating it on
// first use. Pools are created with RESET_COMMAND_BUFFER_BIT so individual
// command buffers can be reset without resetting the whole pool, matching
// the teacher's CommandBufferManager pool flags.
func (t *CommandPoolTable) PoolFor(queue QueueType, slot, thread uint32) (vk.CommandPool, error) {
	key := commandPoolKey{queue: queue, slot: slot, thread: thread}
	if pool, ok := t.pools[key]; ok {
		return pool, nil
	}
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(t.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: t.familyIndex(queue),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return 0, fmt.Errorf("graphics: create command pool %+v: %w", key, err)
	}
	t.pools[key] = pool
	return pool, nil
}

// ResetPool resets every command buffer allocated from the (queue, slot,
// thread) pool in one call, for reuse at the start of a new frame.
func (t *CommandPoolTable) ResetPool(queue QueueType, slot, thread uint32) error {
	key := commandPoolKey{queue: queue, slot: slot, thread: thread}
	pool, ok := t.pools[key]
	if !ok {
		return nil
	}
	ret := vk.ResetCommandPool(t.device, pool, vk.CommandPoolResetFlags(0))
	return NewError(ret)
}

// Allocate returns a fresh primary command buffer from the (queue, slot,
// thread) pool.
func (t *CommandPoolTable) Allocate(queue QueueType, slot, thread uint32) (vk.CommandBuffer, error) {
	pool, err := t.PoolFor(queue, slot, thread)
	if err != nil {
		return nil, err
	}
	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(t.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: allocate command buffer: %w", err)
	}
	return buffers[0], nil
}

// Destroy destroys every pool in the table.
func (t *CommandPoolTable) Destroy() {
	for _, pool := range t.pools {
		vk.DestroyCommandPool(t.device, pool, nil)
	}
	t.pools = make(map[commandPoolKey]vk.CommandPool)
}
