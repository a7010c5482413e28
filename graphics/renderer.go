package graphics

import (
	"context"
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/forgevk/config"
)

// RendererDesc configures the top-level runtime.
type RendererDesc struct {
	AppName              string
	Width, Height         int
	Debug                bool
	FramesInFlight       uint32
	RenderThreads         uint32
	Usage                *config.Usage
}

// Renderer is the engine's single entry point: it owns the window/instance,
// device, swapchain, per-frame synchronization, command pool table, and
// bindless descriptor registry, and drives the acquire/record/submit/present
// cycle a frame-loop application calls once per tick. Grounded on the
// teacher's Platform/PerFrame pairing (platform.go, instance.go) generalized
// from a single hardcoded triangle loop to the package's split-out,
// independently testable components.
type Renderer struct {
	Instance *Instance
	Device   *Device
	Swapchain *Swapchain
	Frames   *FrameSync
	Pools    *CommandPoolTable
	Registry *BindlessRegistry

	sampler vk.Sampler

	renderThreads uint32
}

// NewRenderer opens a window, stands up a Vulkan 1.3 device and swapchain,
// and wires the frame-synchronization, command-pool, and bindless-descriptor
// components together.
func NewRenderer(desc RendererDesc) (*Renderer, error) {
	framesInFlight := desc.FramesInFlight
	if framesInFlight == 0 {
		framesInFlight = 2
	}
	renderThreads := desc.RenderThreads
	if renderThreads == 0 {
		renderThreads = 1
	}

	inst, err := NewInstance(InstanceDesc{
		AppName: desc.AppName,
		Width:   desc.Width,
		Height:  desc.Height,
		Debug:   desc.Debug,
		Usage:   desc.Usage,
	})
	if err != nil {
		return nil, err
	}

	device, err := NewDevice(inst, desc.Usage)
	if err != nil {
		inst.Destroy()
		return nil, err
	}

	swapchain, err := NewSwapchain(device, uint32(desc.Width), uint32(desc.Height), framesInFlight)
	if err != nil {
		device.Destroy()
		inst.Destroy()
		return nil, err
	}

	frames, err := NewFrameSync(device.handle, framesInFlight)
	if err != nil {
		swapchain.Destroy()
		device.Destroy()
		inst.Destroy()
		return nil, err
	}

	pools := NewCommandPoolTable(device.handle, device.families)

	var sampler vk.Sampler
	ret := vk.CreateSampler(device.handle, &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterNearest,
		MinFilter:    vk.FilterNearest,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: vk.SamplerAddressModeRepeat,
		AddressModeV: vk.SamplerAddressModeRepeat,
		AddressModeW: vk.SamplerAddressModeRepeat,
		MaxLod:       vk.LodClampNone,
	}, nil, &sampler)
	if err := NewError(ret); err != nil {
		frames.Destroy()
		swapchain.Destroy()
		device.Destroy()
		inst.Destroy()
		return nil, fmt.Errorf("graphics: create sampler: %w", err)
	}

	registry, err := NewBindlessRegistry(device.gpu, device.handle, sampler)
	if err != nil {
		vk.DestroySampler(device.handle, sampler, nil)
		frames.Destroy()
		swapchain.Destroy()
		device.Destroy()
		inst.Destroy()
		return nil, err
	}

	return &Renderer{
		Instance:      inst,
		Device:        device,
		Swapchain:     swapchain,
		Frames:        frames,
		Pools:         pools,
		Registry:      registry,
		sampler:       sampler,
		renderThreads: renderThreads,
	}, nil
}

// BeginFrame waits for the next frame slot to free up, acquires the next
// swapchain image (bounded by ctx, or a 120s default), and returns a
// ready-to-record command buffer from thread 0's graphics pool for that
// slot. A caller observing ErrSwapchainOutOfDate should call Resize and
// retry.
func (r *Renderer) BeginFrame(ctx context.Context) (*CommandBuffer, uint32, FrameSlot, error) {
	slot := r.Frames.Current()
	slotIndex := r.Frames.CurrentIndex()
	if err := r.Frames.WaitAndAdvance(); err != nil {
		return nil, 0, FrameSlot{}, err
	}

	imageIndex, err := r.Swapchain.AcquireNextImage(ctx, slot.ImageAcquired, vk.NullFence)
	if err != nil {
		return nil, 0, FrameSlot{}, err
	}

	if err := r.Pools.ResetPool(QueueTypeGraphics, slotIndex, 0); err != nil {
		return nil, 0, FrameSlot{}, err
	}
	handle, err := r.Pools.Allocate(QueueTypeGraphics, slotIndex, 0)
	if err != nil {
		return nil, 0, FrameSlot{}, err
	}
	cb := WrapCommandBuffer(handle, r.Registry)
	if err := cb.Begin(); err != nil {
		return nil, 0, FrameSlot{}, err
	}
	return cb, imageIndex, slot, nil
}

// EndFrame ends recording, submits cb against slot, and presents imageIndex.
// ErrSwapchainOutOfDate is returned unwrapped so the caller can Resize.
func (r *Renderer) EndFrame(cb *CommandBuffer, imageIndex uint32, slot FrameSlot) error {
	if err := cb.End(); err != nil {
		return err
	}
	queue := NewQueue(r.Device.graphicsQueue, uint32(r.Device.families.Graphics), true)
	if err := queue.SubmitFrame(cb, slot, vk.PipelineStageColorAttachmentOutputBit); err != nil {
		return err
	}
	return queue.Present(r.Swapchain, imageIndex, slot.RenderFinished)
}

// Resize rebuilds the swapchain for the window's current framebuffer size.
func (r *Renderer) Resize() error {
	width, height := r.Instance.FramebufferSize()
	return r.Swapchain.Resize(uint32(width), uint32(height), uint32(r.Frames.FramesInFlight()))
}

// Destroy waits for the device to idle and tears down every owned component
// in reverse construction order.
func (r *Renderer) Destroy() {
	vk.DeviceWaitIdle(r.Device.handle)
	r.Registry.Destroy()
	vk.DestroySampler(r.Device.handle, r.sampler, nil)
	r.Pools.Destroy()
	r.Frames.Destroy()
	r.Swapchain.Destroy()
	r.Device.Destroy()
	r.Instance.Destroy()
}
