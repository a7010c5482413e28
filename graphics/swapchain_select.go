package graphics

import vk "github.com/vulkan-go/vulkan"

// preferredSurfaceFormat implements the format-selection rule from distilled
// spec §4.3: prefer B8G8R8A8_SRGB / SRGB_NONLINEAR, else the first reported
// capability.
func preferredSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// preferredPresentMode prefers MAILBOX, falling back to the always-available FIFO.
func preferredPresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, m := range available {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// clamp clamps v into [lo, hi].
func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chooseExtent implements distilled spec §4.3's extent rule: use the
// surface's current extent when it is well-defined (not vk.MaxUint32),
// otherwise clamp the requested width/height into the surface's bounds.
func chooseExtent(caps vk.SurfaceCapabilities, requestedWidth, requestedHeight uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(requestedWidth, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requestedHeight, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount implements distilled spec §4.3's image-count rule:
// max(framesInFlight, minImageCount+1), clamped by maxImageCount when it is
// nonzero (0 means "no upper bound" per the Vulkan spec).
func chooseImageCount(caps vk.SurfaceCapabilities, framesInFlight uint32) uint32 {
	desired := caps.MinImageCount + 1
	if framesInFlight > desired {
		desired = framesInFlight
	}
	if caps.MaxImageCount > 0 && desired > caps.MaxImageCount {
		desired = caps.MaxImageCount
	}
	return desired
}
