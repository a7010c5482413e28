package graphics

import (
	"context"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Queue wraps a vk.Queue and its family index. Generalized from the
// teacher's CoreQueue (which scans raw vk.QueueFamilyProperties to find and
// bind a queue by flag bits) into a thin handle over an already-resolved
// queue — the resolution itself now lives in selectQueueFamilies and Device.
type Queue struct {
	handle         vk.Queue
	familyIndex    uint32
	supportsPresent bool
}

// NewQueue wraps an already-retrieved vk.Queue.
func NewQueue(handle vk.Queue, familyIndex uint32, supportsPresent bool) *Queue {
	return &Queue{handle: handle, familyIndex: familyIndex, supportsPresent: supportsPresent}
}

// Handle returns the underlying vk.Queue.
func (q *Queue) Handle() vk.Queue { return q.handle }

// FamilyIndex returns the queue family this queue was retrieved from.
func (q *Queue) FamilyIndex() uint32 { return q.familyIndex }

// SupportsPresent reports whether this queue's family supports presenting to
// the surface it was selected against.
func (q *Queue) SupportsPresent() bool { return q.supportsPresent }

// Submit issues the minimal submission form: cb runs with no external
// synchronization and no fence signal.
func (q *Queue) Submit(cb *CommandBuffer) error {
	ret := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.handle},
	}}, vk.NullFence)
	return NewError(ret)
}

// SubmitFrame is the common per-frame submission form: cb waits on the
// current frame slot's image-acquired semaphore at waitStage and signals its
// render-complete semaphore, fencing completion with the slot's in-flight
// fence.
func (q *Queue) SubmitFrame(cb *CommandBuffer, slot FrameSlot, waitStage vk.PipelineStageFlagBits) error {
	ret := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{slot.ImageAcquired},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(waitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderFinished},
	}}, slot.InFlight)
	return NewError(ret)
}

// SubmitTimeline is the timeline-only form used for cross-queue compute
// pipelines: cb waits for fence to reach waitValue at waitStage and signals
// it to signalValue on completion, with no binary semaphores involved.
func (q *Queue) SubmitTimeline(cb *CommandBuffer, fence *TimelineFence, waitValue uint64, waitStage vk.PipelineStageFlagBits, signalValue uint64) error {
	timelineInfo := vk.TimelineSemaphoreSubmitInfo{
		SType:                     vk.StructureTypeTimelineSemaphoreSubmitInfo,
		WaitSemaphoreValueCount:   1,
		PWaitSemaphoreValues:      []uint64{waitValue},
		SignalSemaphoreValueCount: 1,
		PSignalSemaphoreValues:    []uint64{signalValue},
	}
	ret := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                unsafePointer(&timelineInfo),
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{fence.semaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(waitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{fence.semaphore},
	}}, vk.NullFence)
	return NewError(ret)
}

// SubmitDesc is the general submission form: multiple command buffers, a
// timeline fence wait+signal pair, and optional image-acquired wait /
// render-complete signal binary semaphores layered on top.
type SubmitDesc struct {
	CommandBuffers []*CommandBuffer

	Timeline    *TimelineFence
	WaitValue   uint64
	SignalValue uint64
	WaitStage   vk.PipelineStageFlagBits

	ImageAcquired  vk.Semaphore // vk.NullSemaphore to skip
	RenderComplete vk.Semaphore // vk.NullSemaphore to skip
	Fence          vk.Fence     // vk.NullFence to skip
}

// SubmitGeneral issues desc in one vkQueueSubmit call.
func (q *Queue) SubmitGeneral(desc SubmitDesc) error {
	buffers := make([]vk.CommandBuffer, len(desc.CommandBuffers))
	for i, cb := range desc.CommandBuffers {
		buffers[i] = cb.handle
	}

	waitSemaphores := make([]vk.Semaphore, 0, 2)
	waitStages := make([]vk.PipelineStageFlags, 0, 2)
	waitValues := make([]uint64, 0, 2)
	signalSemaphores := make([]vk.Semaphore, 0, 2)
	signalValues := make([]uint64, 0, 2)

	if desc.Timeline != nil {
		waitSemaphores = append(waitSemaphores, desc.Timeline.semaphore)
		waitStages = append(waitStages, vk.PipelineStageFlags(desc.WaitStage))
		waitValues = append(waitValues, desc.WaitValue)
		signalSemaphores = append(signalSemaphores, desc.Timeline.semaphore)
		signalValues = append(signalValues, desc.SignalValue)
	}
	if desc.ImageAcquired != vk.NullSemaphore {
		waitSemaphores = append(waitSemaphores, desc.ImageAcquired)
		waitStages = append(waitStages, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))
		waitValues = append(waitValues, 0)
	}
	if desc.RenderComplete != vk.NullSemaphore {
		signalSemaphores = append(signalSemaphores, desc.RenderComplete)
		signalValues = append(signalValues, 0)
	}

	timelineInfo := vk.TimelineSemaphoreSubmitInfo{
		SType:                     vk.StructureTypeTimelineSemaphoreSubmitInfo,
		WaitSemaphoreValueCount:   uint32(len(waitValues)),
		PWaitSemaphoreValues:      waitValues,
		SignalSemaphoreValueCount: uint32(len(signalValues)),
		PSignalSemaphoreValues:    signalValues,
	}

	ret := vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                unsafePointer(&timelineInfo),
		WaitSemaphoreCount:   uint32(len(waitSemaphores)),
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
		PSignalSemaphores:    signalSemaphores,
	}}, desc.Fence)
	return NewError(ret)
}

// WaitIdle blocks until every operation submitted to this queue completes,
// or ctx is done first. vkQueueWaitIdle takes no native timeout, so the
// underlying call runs on its own goroutine and is abandoned (left to finish
// in the background) if ctx wins the race.
func (q *Queue) WaitIdle(ctx context.Context) error {
	ret, err := runWithContext(ctx, func() vk.Result {
		return vk.QueueWaitIdle(q.handle)
	})
	if err != nil {
		return err
	}
	return NewError(ret)
}

// Present presents imageIndex from swapchain, waiting on waitSemaphore
// (normally the frame slot's render-complete semaphore). Requires
// SupportsPresent. A VK_ERROR_OUT_OF_DATE_KHR result is reported to the
// caller as ErrSwapchainOutOfDate so it can trigger a resize.
func (q *Queue) Present(swapchain *Swapchain, imageIndex uint32, waitSemaphore vk.Semaphore) error {
	if !q.supportsPresent {
		return fmt.Errorf("graphics: queue family %d does not support presentation", q.familyIndex)
	}
	handle := swapchain.handle
	ret := vk.QueuePresent(q.handle, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{waitSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{handle},
		PImageIndices:      []uint32{imageIndex},
	})
	if ret == vk.ErrorOutOfDate {
		return ErrSwapchainOutOfDate
	}
	return NewError(ret)
}

// ErrSwapchainOutOfDate signals that Present or AcquireNextImage observed
// VK_ERROR_OUT_OF_DATE_KHR and the caller should call Swapchain.Resize.
var ErrSwapchainOutOfDate = fmt.Errorf("graphics: swapchain out of date")
