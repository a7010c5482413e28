package graphics

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// FrameSlot bundles the per-frame synchronization objects needed to pace one
// frame-in-flight: the semaphore the swapchain signals on acquire, the
// semaphore the graphics queue signals on submit completion, and the fence
// the CPU waits on before reusing this slot's command pool.
type FrameSlot struct {
	ImageAcquired  vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       vk.Fence
}

// FrameSync owns one FrameSlot per frame-in-flight. Grounded on the teacher's
// PerFrame struct (instance.go) and FenceManager (managers.go): each slot
// gets its own semaphore pair and a signaled-at-creation fence so the first
// wait never blocks, generalized from the teacher's hardcoded single-frame
// pool indexing to an explicit frame-count parameter.
type FrameSync struct {
	device vk.Device
	slots  []FrameSlot
	cursor uint32
}

// NewFrameSync creates framesInFlight FrameSlots against device.
func NewFrameSync(device vk.Device, framesInFlight uint32) (*FrameSync, error) {
	fs := &FrameSync{device: device, slots: make([]FrameSlot, framesInFlight)}
	for i := range fs.slots {
		var acquired, finished vk.Semaphore
		ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &acquired)
		if err := NewError(ret); err != nil {
			return nil, fmt.Errorf("graphics: create image-acquired semaphore: %w", err)
		}
		ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &finished)
		if err := NewError(ret); err != nil {
			return nil, fmt.Errorf("graphics: create render-finished semaphore: %w", err)
		}

		var fence vk.Fence
		ret = vk.CreateFence(device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &fence)
		if err := NewError(ret); err != nil {
			return nil, fmt.Errorf("graphics: create in-flight fence: %w", err)
		}

		fs.slots[i] = FrameSlot{ImageAcquired: acquired, RenderFinished: finished, InFlight: fence}
	}
	return fs, nil
}

// FramesInFlight returns the number of frame slots.
func (fs *FrameSync) FramesInFlight() int { return len(fs.slots) }

// Current returns the FrameSlot the cursor currently points to.
func (fs *FrameSync) Current() FrameSlot { return fs.slots[fs.cursor] }

// CurrentIndex returns the slot index the cursor currently points to.
func (fs *FrameSync) CurrentIndex() uint32 { return fs.cursor }

// WaitAndAdvance blocks on the current slot's in-flight fence, resets it, and
// advances the cursor to the next slot (mod framesInFlight). Call once per
// frame before recording new commands into that slot's command pool.
func (fs *FrameSync) WaitAndAdvance() error {
	slot := fs.slots[fs.cursor]
	ret := vk.WaitForFences(fs.device, 1, []vk.Fence{slot.InFlight}, vk.True, vk.MaxUint64)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("graphics: wait in-flight fence: %w", err)
	}
	ret = vk.ResetFences(fs.device, 1, []vk.Fence{slot.InFlight})
	if err := NewError(ret); err != nil {
		return fmt.Errorf("graphics: reset in-flight fence: %w", err)
	}
	fs.cursor = (fs.cursor + 1) % uint32(len(fs.slots))
	return nil
}

// Destroy releases every slot's semaphores and fence.
func (fs *FrameSync) Destroy() {
	for _, slot := range fs.slots {
		vk.DestroySemaphore(fs.device, slot.ImageAcquired, nil)
		vk.DestroySemaphore(fs.device, slot.RenderFinished, nil)
		vk.DestroyFence(fs.device, slot.InFlight, nil)
	}
}
