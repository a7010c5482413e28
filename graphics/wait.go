package graphics

import (
	"context"
	"math"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// pollInterval bounds how long a single native Vulkan wait call blocks
// before this package re-checks ctx for cancellation, since vk's blocking
// calls accept a timeout but not a context.
const pollInterval = 50 * time.Millisecond

// unboundedWait stands in for "no deadline" (math.MaxInt64 nanoseconds, about
// 292 years) on TimelineFence.Wait when the caller's context carries no
// deadline of its own.
const unboundedWait = time.Duration(math.MaxInt64)

// waitDeadline resolves the absolute deadline a context-bound wait polls
// against: ctx's own deadline when it has one, otherwise now+fallback.
func waitDeadline(ctx context.Context, fallback time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(fallback)
}

// pollUntil calls attempt repeatedly, each time with a native timeout no
// longer than pollInterval, until attempt reports anything other than
// vk.Timeout, ctx is done, or deadline passes. Grounded on the teacher's
// plain blocking vk.MaxUint64 waits, adapted so they are expressed as
// context deadlines/cancellation instead of unconditional blocking.
func pollUntil(ctx context.Context, deadline time.Time, attempt func(timeoutNs uint64) vk.Result) (vk.Result, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		step := pollInterval
		if remaining < step {
			step = remaining
		}
		ret := attempt(uint64(step.Nanoseconds()))
		if ret != vk.Timeout {
			return ret, nil
		}
	}
}

// runWithContext runs work on its own goroutine and returns its result,
// unblocking early with ctx.Err() if ctx is done first. Used for the Vulkan
// calls that take no native timeout parameter at all (vkQueueWaitIdle, via
// Queue.WaitIdle); the launched goroutine is left to finish in the
// background if ctx wins the race, since the underlying call cannot be
// cancelled.
func runWithContext(ctx context.Context, work func() vk.Result) (vk.Result, error) {
	done := make(chan vk.Result, 1)
	go func() { done <- work() }()
	select {
	case ret := <-done:
		return ret, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
