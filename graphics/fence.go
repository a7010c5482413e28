package graphics

import (
	"context"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// TimelineFence wraps a VK_SEMAPHORE_TYPE_TIMELINE semaphore used as a
// monotonically increasing GPU-progress counter, per distilled spec §4.5's
// timeline-only submission form and §5's Fence::wait(v) blocking point. The
// teacher only uses binary vk.Fence objects (managers.go's FenceManager); this
// type is new code needed for the cross-queue compute/graphics handoff the
// distilled spec requires.
type TimelineFence struct {
	device    vk.Device
	semaphore vk.Semaphore
	nextValue uint64
}

// NewTimelineFence creates a timeline semaphore starting at value 0.
func NewTimelineFence(device vk.Device) (*TimelineFence, error) {
	typeInfo := vk.SemaphoreTypeCreateInfo{
		SType:         vk.StructureTypeSemaphoreTypeCreateInfo,
		SemaphoreType: vk.SemaphoreTypeTimeline,
		InitialValue:  0,
	}
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: unsafePointer(&typeInfo),
	}, nil, &sem)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: create timeline semaphore: %w", err)
	}
	return &TimelineFence{device: device, semaphore: sem}, nil
}

// Handle returns the underlying vk.Semaphore for use in submit wait/signal
// info structs.
func (f *TimelineFence) Handle() vk.Semaphore { return f.semaphore }

// NextSignalValue reserves and returns the next value a submission should
// signal this timeline to, so callers can wait for exactly that submission's
// completion later.
func (f *TimelineFence) NextSignalValue() uint64 {
	f.nextValue++
	return f.nextValue
}

// CurrentValue returns the timeline's current counter value as last observed
// by the GPU.
func (f *TimelineFence) CurrentValue() (uint64, error) {
	var value uint64
	ret := vk.GetSemaphoreCounterValue(f.device, f.semaphore, &value)
	if err := NewError(ret); err != nil {
		return 0, fmt.Errorf("graphics: get semaphore counter value: %w", err)
	}
	return value, nil
}

// Wait blocks the calling goroutine until the timeline reaches value, bounded
// by ctx's deadline or, absent one, a near-unbounded timeout (math.MaxInt64
// nanoseconds, about 292 years), matching distilled spec §5's Fence::wait(v) suspension point
// expressed as context deadlines/cancellation.
func (f *TimelineFence) Wait(ctx context.Context, value uint64) error {
	deadline := waitDeadline(ctx, unboundedWait)
	ret, err := pollUntil(ctx, deadline, func(timeoutNs uint64) vk.Result {
		return vk.WaitSemaphores(f.device, &vk.SemaphoreWaitInfo{
			SType:          vk.StructureTypeSemaphoreWaitInfo,
			SemaphoreCount: 1,
			PSemaphores:    []vk.Semaphore{f.semaphore},
			PValues:        []uint64{value},
		}, timeoutNs)
	})
	if err != nil {
		return fmt.Errorf("graphics: wait timeline semaphore: %w", err)
	}
	if err := NewError(ret); err != nil {
		return fmt.Errorf("graphics: wait timeline semaphore: %w", err)
	}
	return nil
}

// Signal advances the timeline to value from the CPU side (used to unblock a
// GPU wait without a corresponding queue submission, e.g. in tests) and sets
// the fence's counter to value.
func (f *TimelineFence) Signal(value uint64) error {
	ret := vk.SignalSemaphore(f.device, &vk.SemaphoreSignalInfo{
		SType:     vk.StructureTypeSemaphoreSignalInfo,
		Semaphore: f.semaphore,
		Value:     value,
	})
	if err := NewError(ret); err != nil {
		return err
	}
	f.nextValue = value
	return nil
}

// Destroy destroys the timeline semaphore.
func (f *TimelineFence) Destroy() {
	vk.DestroySemaphore(f.device, f.semaphore, nil)
}
