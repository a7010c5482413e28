package graphics

import (
	"context"
	"fmt"
	"time"

	vk "github.com/vulkan-go/vulkan"
)

// acquireTimeout bounds AcquireNextImage when ctx carries no earlier
// deadline, per distilled spec §5's "blocks up to 120s" acquire point.
const acquireTimeout = 120 * time.Second

// Swapchain owns the presentable image chain for a Device's surface, plus
// the per-image views used as dynamic-rendering color attachments.
type Swapchain struct {
	device *Device

	handle vk.Swapchain
	format vk.SurfaceFormat
	extent vk.Extent2D

	images     []vk.Image
	imageViews []vk.ImageView
}

// NewSwapchain builds a swapchain sized for (requestedWidth, requestedHeight)
// and framesInFlight buffered images. Grounded on the teacher's
// NewCoreSwapchain: query surface capabilities/formats, pick a format and
// extent, then vk.CreateSwapchain and image views — generalized to retire an
// existing swapchain (Resize) using the old-swapchain-handoff the teacher's
// context.go prepareSwapchain performs, instead of being construct-only.
func NewSwapchain(device *Device, requestedWidth, requestedHeight, framesInFlight uint32) (*Swapchain, error) {
	s := &Swapchain{device: device}
	if err := s.build(requestedWidth, requestedHeight, framesInFlight, vk.NullSwapchain); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Swapchain) build(requestedWidth, requestedHeight, framesInFlight uint32, old vk.Swapchain) error {
	surface := s.device.instance.surface
	gpu := s.device.gpu

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("graphics: query surface capabilities: %w", err)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	if formatCount == 0 {
		return fmt.Errorf("graphics: surface reports no formats")
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
	for i := range formats {
		formats[i].Deref()
	}
	format := preferredSurfaceFormat(formats)

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	modes := make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, modes)
	presentMode := preferredPresentMode(modes)

	extent := chooseExtent(caps, requestedWidth, requestedHeight)
	imageCount := chooseImageCount(caps, framesInFlight)

	preTransform := caps.CurrentTransform
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, candidate := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(candidate) != 0 {
			compositeAlpha = candidate
			break
		}
	}

	var handle vk.Swapchain
	ret = vk.CreateSwapchain(s.device.handle, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &handle)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("graphics: create swapchain: %w", err)
	}

	if old != vk.NullSwapchain {
		s.destroyImageViews()
		vk.DestroySwapchain(s.device.handle, old, nil)
	}

	s.handle = handle
	s.format = format
	s.extent = extent

	var count uint32
	vk.GetSwapchainImages(s.device.handle, handle, &count, nil)
	s.images = make([]vk.Image, count)
	vk.GetSwapchainImages(s.device.handle, handle, &count, s.images)

	s.imageViews = make([]vk.ImageView, count)
	for i, img := range s.images {
		var view vk.ImageView
		ret := vk.CreateImageView(s.device.handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		if err := NewError(ret); err != nil {
			return fmt.Errorf("graphics: create swapchain image view %d: %w", i, err)
		}
		s.imageViews[i] = view
	}
	return nil
}

// Resize retires the current swapchain (per distilled spec §4.3, transferring
// ownership to a fresh swapchain created with OldSwapchain set) and rebuilds
// it against the surface's current capabilities.
func (s *Swapchain) Resize(requestedWidth, requestedHeight, framesInFlight uint32) error {
	old := s.handle
	return s.build(requestedWidth, requestedHeight, framesInFlight, old)
}

// AcquireNextImage returns the index of the next presentable image and has
// the driver signal semaphore (and fence, if not null) once the image is
// ready, bounded by ctx's deadline or a 120s default per distilled spec §5.
// VK_ERROR_OUT_OF_DATE_KHR is reported as ErrSwapchainOutOfDate.
func (s *Swapchain) AcquireNextImage(ctx context.Context, semaphore vk.Semaphore, fence vk.Fence) (uint32, error) {
	var index uint32
	deadline := waitDeadline(ctx, acquireTimeout)
	ret, err := pollUntil(ctx, deadline, func(timeoutNs uint64) vk.Result {
		return vk.AcquireNextImage(s.device.handle, s.handle, timeoutNs, semaphore, fence, &index)
	})
	if err != nil {
		return 0, err
	}
	switch ret {
	case vk.Success, vk.Suboptimal:
		return index, nil
	case vk.ErrorOutOfDate:
		return 0, ErrSwapchainOutOfDate
	default:
		return 0, NewError(ret)
	}
}

// Extent returns the current swapchain extent.
func (s *Swapchain) Extent() vk.Extent2D { return s.extent }

// Format returns the current swapchain surface format.
func (s *Swapchain) Format() vk.SurfaceFormat { return s.format }

// Images returns the swapchain's presentable images.
func (s *Swapchain) Images() []vk.Image { return s.images }

// ImageViews returns the per-image color attachment views.
func (s *Swapchain) ImageViews() []vk.ImageView { return s.imageViews }

// Handle returns the underlying vk.Swapchain.
func (s *Swapchain) Handle() vk.Swapchain { return s.handle }

func (s *Swapchain) destroyImageViews() {
	for _, v := range s.imageViews {
		vk.DestroyImageView(s.device.handle, v, nil)
	}
	s.imageViews = nil
}

// Destroy releases the image views and the swapchain itself.
func (s *Swapchain) Destroy() {
	s.destroyImageViews()
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(s.device.handle, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
}
