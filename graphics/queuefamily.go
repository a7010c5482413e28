package graphics

import "errors"

// queueFlags mirrors the Vulkan queue capability bits this package cares
// about, kept independent of the vk package so the selection algorithm below
// can be unit tested without a physical device.
type queueFlags uint32

const (
	queueGraphics queueFlags = 1 << iota
	queueCompute
	queueTransfer
)

func (f queueFlags) has(bit queueFlags) bool { return f&bit != 0 }

// familyInfo is the minimal per-queue-family information the selection
// algorithm needs.
type familyInfo struct {
	flags           queueFlags
	supportsPresent bool
}

// queueFamilySelection is the resolved set of family indices for the three
// queue roles this engine uses.
type queueFamilySelection struct {
	Graphics           int
	Compute            int
	Transfer           int
	TransferIsGraphics bool
}

var errNoSuitableGraphicsQueue = errors.New("graphics: no queue family supports graphics+present")
var errNoComputeQueue = errors.New("graphics: no queue family supports compute")

// selectQueueFamilies implements the policy from distilled spec §4.3:
//   - Graphics = first family with GRAPHICS that also supports present.
//   - Compute = first family with COMPUTE distinct from Graphics.
//   - Transfer = first family with TRANSFER and neither GRAPHICS nor COMPUTE
//     (dedicated); falls back to Graphics, marked transfer-capable, if none
//     exists.
func selectQueueFamilies(families []familyInfo) (queueFamilySelection, error) {
	var sel queueFamilySelection
	sel.Graphics = -1
	sel.Compute = -1
	sel.Transfer = -1

	for i, f := range families {
		if sel.Graphics == -1 && f.flags.has(queueGraphics) && f.supportsPresent {
			sel.Graphics = i
		}
	}
	if sel.Graphics == -1 {
		return sel, errNoSuitableGraphicsQueue
	}

	for i, f := range families {
		if i == sel.Graphics {
			continue
		}
		if f.flags.has(queueCompute) {
			sel.Compute = i
			break
		}
	}
	if sel.Compute == -1 {
		return sel, errNoComputeQueue
	}

	for i, f := range families {
		if f.flags.has(queueTransfer) && !f.flags.has(queueGraphics) && !f.flags.has(queueCompute) {
			sel.Transfer = i
			break
		}
	}
	if sel.Transfer == -1 {
		sel.Transfer = sel.Graphics
		sel.TransferIsGraphics = true
	}
	return sel, nil
}
