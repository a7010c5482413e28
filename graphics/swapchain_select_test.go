package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestPreferredSurfaceFormat_PicksSRGBWhenAvailable(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := preferredSurfaceFormat(formats)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, got.Format)
}

func TestPreferredSurfaceFormat_FallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got := preferredSurfaceFormat(formats)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, got.Format)
}

func TestPreferredPresentMode_PrefersMailbox(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox,
		preferredPresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
}

func TestPreferredPresentMode_FallsBackToFifo(t *testing.T) {
	assert.Equal(t, vk.PresentModeFifo, preferredPresentMode([]vk.PresentMode{}))
}

func TestChooseExtent_UsesCurrentExtentWhenDefined(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 1366, Height: 768},
	}
	got := chooseExtent(caps, 800, 600)
	assert.Equal(t, uint32(1366), got.Width)
	assert.Equal(t, uint32(768), got.Height)
}

func TestChooseExtent_ClampsRequestedWhenUndefined_S3(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	got := chooseExtent(caps, 800, 600)
	assert.Equal(t, uint32(800), got.Width)
	assert.Equal(t, uint32(600), got.Height)

	clamped := chooseExtent(caps, 1, 1)
	assert.Equal(t, uint32(64), clamped.Width)
}

func TestChooseImageCount_RespectsFramesInFlightAndMax(t *testing.T) {
	caps := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 3}
	assert.Equal(t, uint32(3), chooseImageCount(caps, 2))

	caps.MaxImageCount = 0
	assert.Equal(t, uint32(4), chooseImageCount(caps, 4))
}
