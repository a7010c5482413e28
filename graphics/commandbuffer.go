package graphics

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer is a thin handle bound to one command pool. All methods
// after Begin are linear encoders over vkCmd* calls; the caller is
// responsible for ordering them correctly (this type does not validate
// state-machine transitions, matching the teacher's equally thin
// command-recording style).
type CommandBuffer struct {
	handle   vk.CommandBuffer
	registry *BindlessRegistry
}

// WrapCommandBuffer adapts an already-allocated vk.CommandBuffer (e.g. from
// CommandPoolTable.Allocate) into a CommandBuffer encoder bound to registry's
// global descriptor sets and pipeline layout.
func WrapCommandBuffer(handle vk.CommandBuffer, registry *BindlessRegistry) *CommandBuffer {
	return &CommandBuffer{handle: handle, registry: registry}
}

// Handle returns the underlying vk.CommandBuffer.
func (c *CommandBuffer) Handle() vk.CommandBuffer { return c.handle }

// Begin starts one-time-submit recording.
func (c *CommandBuffer) Begin() error {
	ret := vk.BeginCommandBuffer(c.handle, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	return NewError(ret)
}

// End stops recording.
func (c *CommandBuffer) End() error {
	return NewError(vk.EndCommandBuffer(c.handle))
}

// BindGlobalDescriptorSets binds the four bindless sets plus the sampler set
// at set indices 0..4 using the registry's shared pipeline layout. Must
// be called once per command buffer before any draw/dispatch that reads
// bindless resources.
func (c *CommandBuffer) BindGlobalDescriptorSets(bindPoint vk.PipelineBindPoint) {
	sets := c.registry.DescriptorSets()
	vk.CmdBindDescriptorSets(c.handle, bindPoint, c.registry.PipelineLayout(), 0, uint32(len(sets)), sets, 0, nil)
}

// BindGraphicsPipeline binds p for graphics draws.
func (c *CommandBuffer) BindGraphicsPipeline(p *GraphicsPipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointGraphics, p.handle)
}

// BindComputePipeline binds p for dispatches.
func (c *CommandBuffer) BindComputePipeline(p *ComputePipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointCompute, p.handle)
}

// PushConstants uploads data to offset 0 of the global 128-byte push-constant
// range, visible to all shader stages.
func (c *CommandBuffer) PushConstants(data []byte) {
	vk.CmdPushConstants(c.handle, c.registry.PipelineLayout(), vk.ShaderStageFlags(vk.ShaderStageAll), 0, uint32(len(data)), unsafePointer(&data[0]))
}

// SetViewport sets the single dynamic viewport. Required before the first
// draw in a pipeline built with VK_DYNAMIC_STATE_VIEWPORT.
func (c *CommandBuffer) SetViewport(v vk.Viewport) {
	vk.CmdSetViewport(c.handle, 0, 1, []vk.Viewport{v})
}

// SetScissor sets the single dynamic scissor rect.
func (c *CommandBuffer) SetScissor(r vk.Rect2D) {
	vk.CmdSetScissor(c.handle, 0, 1, []vk.Rect2D{r})
}

// BindVertexBuffer binds buf at binding 0, offset 0.
func (c *CommandBuffer) BindVertexBuffer(buf vk.Buffer) {
	vk.CmdBindVertexBuffers(c.handle, 0, 1, []vk.Buffer{buf}, []vk.DeviceSize{0})
}

// BindIndexBuffer binds buf as a UINT32 index buffer.
func (c *CommandBuffer) BindIndexBuffer(buf vk.Buffer) {
	vk.CmdBindIndexBuffer(c.handle, buf, 0, vk.IndexTypeUint32)
}

// Draw issues a non-indexed draw of n vertices, one instance.
func (c *CommandBuffer) Draw(n uint32) {
	vk.CmdDraw(c.handle, n, 1, 0, 0)
}

// DrawIndexed issues an indexed draw of n indices, one instance.
func (c *CommandBuffer) DrawIndexed(n uint32) {
	vk.CmdDrawIndexed(c.handle, n, 1, 0, 0, 0)
}

// Dispatch issues a compute dispatch over (gx, gy, gz) workgroups.
func (c *CommandBuffer) Dispatch(gx, gy, gz uint32) {
	vk.CmdDispatch(c.handle, gx, gy, gz)
}

// RenderingTarget names the color/depth attachments and extent for
// BeginRendering.
type RenderingTarget struct {
	ColorView vk.ImageView
	DepthView vk.ImageView
	Extent    vk.Extent2D
	Clear     bool
}

// clearColor and clearDepth are the engine-wide dynamic-rendering clear
// values: a near-black background and reverse-Z's 0.0 depth clear.
var clearColor = [4]float32{0.01, 0.01, 0.01, 1.0}

const clearDepth = float32(0.0)

// BeginRendering starts a dynamic-rendering pass (no VkRenderPass/Framebuffer)
// over target's attachments, per distilled spec §4.4: color clear
// (0.01,0.01,0.01,1), depth clear 0.0 for the engine's reverse-Z convention.
func (c *CommandBuffer) BeginRendering(target RenderingTarget) {
	colorAttachment := vk.RenderingAttachmentInfo{
		SType:       vk.StructureTypeRenderingAttachmentInfo,
		ImageView:   target.ColorView,
		ImageLayout: vk.ImageLayoutColorAttachmentOptimal,
		LoadOp:      vk.AttachmentLoadOpLoad,
		StoreOp:     vk.AttachmentStoreOpStore,
	}
	if target.Clear {
		colorAttachment.LoadOp = vk.AttachmentLoadOpClear
		colorAttachment.ClearValue = vk.NewClearValue(clearColor[:])
	}

	renderingInfo := vk.RenderingInfo{
		SType: vk.StructureTypeRenderingInfo,
		RenderArea: vk.Rect2D{
			Extent: target.Extent,
		},
		LayerCount:           1,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.RenderingAttachmentInfo{colorAttachment},
	}

	if target.DepthView != vk.NullImageView {
		depthAttachment := vk.RenderingAttachmentInfo{
			SType:       vk.StructureTypeRenderingAttachmentInfo,
			ImageView:   target.DepthView,
			ImageLayout: vk.ImageLayoutDepthAttachmentOptimal,
			LoadOp:      vk.AttachmentLoadOpLoad,
			StoreOp:     vk.AttachmentStoreOpStore,
		}
		if target.Clear {
			depthAttachment.LoadOp = vk.AttachmentLoadOpClear
			depthAttachment.ClearValue = vk.NewClearDepthStencil(clearDepth, 0)
		}
		renderingInfo.PDepthAttachment = &depthAttachment
	}

	vk.CmdBeginRendering(c.handle, &renderingInfo)
}

// EndRendering ends the dynamic-rendering pass begun by BeginRendering.
func (c *CommandBuffer) EndRendering() {
	vk.CmdEndRendering(c.handle)
}

// ImageTransition describes one transition_image call: an image-memory
// barrier with an optional queue-family-ownership transfer. Per distilled
// spec §4.4, SrcQueue == DstQueue implies VK_QUEUE_FAMILY_IGNORED on both;
// barrier pairing across queues (release on source, acquire on destination
// with identical parameters) is the caller's responsibility.
type ImageTransition struct {
	Image     vk.Image
	OldLayout vk.ImageLayout
	NewLayout vk.ImageLayout

	SrcStage  vk.PipelineStageFlagBits2
	SrcAccess vk.AccessFlagBits2
	SrcQueue  uint32

	DstStage  vk.PipelineStageFlagBits2
	DstAccess vk.AccessFlagBits2
	DstQueue  uint32

	AspectMask vk.ImageAspectFlags
}

// TransitionImage emits a synchronization2 image memory barrier for t.
func (c *CommandBuffer) TransitionImage(t ImageTransition) {
	srcQueue := t.SrcQueue
	dstQueue := t.DstQueue
	if srcQueue == dstQueue {
		srcQueue = vk.QueueFamilyIgnored
		dstQueue = vk.QueueFamilyIgnored
	}
	aspect := t.AspectMask
	if aspect == 0 {
		aspect = vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	barrier := vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(t.SrcStage),
		SrcAccessMask:       vk.AccessFlags2(t.SrcAccess),
		DstStageMask:        vk.PipelineStageFlags2(t.DstStage),
		DstAccessMask:       vk.AccessFlags2(t.DstAccess),
		OldLayout:           t.OldLayout,
		NewLayout:           t.NewLayout,
		SrcQueueFamilyIndex: srcQueue,
		DstQueueFamilyIndex: dstQueue,
		Image:               t.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier2(c.handle, &vk.DependencyInfo{
		SType:                   vk.StructureTypeDependencyInfo,
		ImageMemoryBarrierCount: 1,
		PImageMemoryBarriers:    []vk.ImageMemoryBarrier2{barrier},
	})
}

// CopyBuffer copies size bytes from src to dst, both starting at offset 0.
func (c *CommandBuffer) CopyBuffer(src, dst vk.Buffer, size vk.DeviceSize) {
	vk.CmdCopyBuffer(c.handle, src, dst, 1, []vk.BufferCopy{{Size: size}})
}

// CopyBufferToImage copies src into dst at dst's full extent, one mip level,
// one array layer, with dst in TRANSFER_DST_OPTIMAL.
func (c *CommandBuffer) CopyBufferToImage(src vk.Buffer, dst vk.Image, extent vk.Extent3D) {
	vk.CmdCopyBufferToImage(c.handle, src, dst, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: extent,
	}})
}

// BlitImage blits the full extent of src into the full extent of dst using
// linear filtering.
func (c *CommandBuffer) BlitImage(src vk.Image, srcExtent vk.Extent3D, dst vk.Image, dstExtent vk.Extent3D) {
	region := vk.ImageBlit{
		SrcSubresource: vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1},
		DstSubresource: vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1},
	}
	region.SrcOffsets[1] = vk.Offset3D{X: int32(srcExtent.Width), Y: int32(srcExtent.Height), Z: 1}
	region.DstOffsets[1] = vk.Offset3D{X: int32(dstExtent.Width), Y: int32(dstExtent.Height), Z: 1}
	vk.CmdBlitImage(c.handle, src, vk.ImageLayoutTransferSrcOptimal, dst, vk.ImageLayoutTransferDstOptimal, 1, []vk.ImageBlit{region}, vk.FilterLinear)
}
