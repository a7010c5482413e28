package graphics

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// findMemoryType picks a memory type index whose bits are set in
// typeBits and whose property flags satisfy required, grounded on the
// teacher's FindRequiredMemoryType.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&vk.MemoryPropertyFlags(required) == vk.MemoryPropertyFlags(required) {
			return i, true
		}
	}
	return 0, false
}

// Buffer is a vk.Buffer plus its backing device memory, generalized from the
// teacher's single uniform-buffer constructor into one type covering the
// vertex/index/staging/uniform/storage usage combinations distilled spec
// §4.3 names. UniformSlot/StorageSlot hold this buffer's bindless slot
// indices (unboundSlot until BindlessRegistry.BindUniformBuffer/
// BindStorageBuffer is called), per distilled spec §3's "up to two bindless
// slot indices (-1 if unbound)". OwnerQueueFamily records the queue family
// that currently owns the resource, per distilled spec §4.3, for later
// ownership-transfer barriers.
type Buffer struct {
	device vk.Device

	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize

	OwnerQueueFamily uint32
	UniformSlot      int32
	StorageSlot      int32

	mapped unsafe.Pointer
}

// NewBuffer creates a buffer of size bytes with usage and the given memory
// property requirements (host-visible+coherent for CPU-written staging/
// uniform buffers, device-local for GPU-only vertex/index/storage buffers),
// owned initially by ownerQueueFamily and unbound in both bindless arrays.
func NewBuffer(device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, size vk.DeviceSize, usage vk.BufferUsageFlagBits, required vk.MemoryPropertyFlagBits, ownerQueueFamily uint32) (*Buffer, error) {
	var handle vk.Buffer
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: create buffer: %w", err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, handle, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(memProps, memReqs.MemoryTypeBits, required)
	if !ok {
		log.Println("graphics: falling back to first available memory type for buffer")
		memType, ok = findMemoryType(memProps, memReqs.MemoryTypeBits, 0)
		if !ok {
			vk.DestroyBuffer(device, handle, nil)
			return nil, fmt.Errorf("graphics: no compatible memory type for buffer")
		}
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := NewError(ret); err != nil {
		vk.DestroyBuffer(device, handle, nil)
		return nil, fmt.Errorf("graphics: allocate buffer memory: %w", err)
	}

	if ret := vk.BindBufferMemory(device, handle, memory, 0); ret != vk.Success {
		vk.FreeMemory(device, memory, nil)
		vk.DestroyBuffer(device, handle, nil)
		return nil, NewError(ret)
	}

	return &Buffer{
		device:           device,
		Handle:           handle,
		Memory:           memory,
		Size:             size,
		OwnerQueueFamily: ownerQueueFamily,
		UniformSlot:      unboundSlot,
		StorageSlot:      unboundSlot,
	}, nil
}

// Map persistently maps the buffer's whole memory range and returns the CPU
// pointer. Only valid for host-visible buffers.
func (b *Buffer) Map() (unsafe.Pointer, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.device, b.Memory, 0, b.Size, 0, &ptr)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: map buffer memory: %w", err)
	}
	b.mapped = ptr
	return ptr, nil
}

// Unmap releases a mapping made by Map.
func (b *Buffer) Unmap() {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(b.device, b.Memory)
	b.mapped = nil
}

// Destroy frees the buffer's memory and destroys the handle.
func (b *Buffer) Destroy() {
	b.Unmap()
	vk.DestroyBuffer(b.device, b.Handle, nil)
	vk.FreeMemory(b.device, b.Memory, nil)
}

// Image is a vk.Image, its device memory, and a default full-resource view.
// SampledSlot/StorageSlot hold this image's bindless slot indices (unboundSlot
// until BindlessRegistry.BindSampledImage/BindStorageImage is called), per
// distilled spec §3. OwnerQueueFamily records the owning queue family per
// distilled spec §4.3.
type Image struct {
	device vk.Device

	Handle vk.Image
	View   vk.ImageView
	Memory vk.DeviceMemory
	Format vk.Format
	Extent vk.Extent3D

	OwnerQueueFamily uint32
	SampledSlot      int32
	StorageSlot      int32
}

// ImageDesc configures NewImage.
type ImageDesc struct {
	Extent           vk.Extent3D
	Format           vk.Format
	Usage            vk.ImageUsageFlagBits
	Aspect           vk.ImageAspectFlagBits
	OwnerQueueFamily uint32
}

// NewImage creates a 2D, single-mip, single-layer, device-local image plus a
// matching image view, generalized from the teacher's depth-image creation
// in swapchain.go's CreateFrameBuffer to cover color/depth/storage usages.
func NewImage(device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, desc ImageDesc) (*Image, error) {
	var handle vk.Image
	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:       vk.StructureTypeImageCreateInfo,
		ImageType:   vk.ImageType2d,
		Format:      desc.Format,
		Extent:      desc.Extent,
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(desc.Usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: create image: %w", err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, handle, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(memProps, memReqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		vk.DestroyImage(device, handle, nil)
		return nil, fmt.Errorf("graphics: no device-local memory type for image")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := NewError(ret); err != nil {
		vk.DestroyImage(device, handle, nil)
		return nil, fmt.Errorf("graphics: allocate image memory: %w", err)
	}
	if ret := vk.BindImageMemory(device, handle, memory, 0); ret != vk.Success {
		vk.FreeMemory(device, memory, nil)
		vk.DestroyImage(device, handle, nil)
		return nil, NewError(ret)
	}

	var view vk.ImageView
	ret = vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   desc.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(desc.Aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := NewError(ret); err != nil {
		vk.FreeMemory(device, memory, nil)
		vk.DestroyImage(device, handle, nil)
		return nil, fmt.Errorf("graphics: create image view: %w", err)
	}

	return &Image{
		device:           device,
		Handle:           handle,
		View:             view,
		Memory:           memory,
		Format:           desc.Format,
		Extent:           desc.Extent,
		OwnerQueueFamily: desc.OwnerQueueFamily,
		SampledSlot:      unboundSlot,
		StorageSlot:      unboundSlot,
	}, nil
}

// Destroy releases the view, memory, and image handle.
func (img *Image) Destroy() {
	vk.DestroyImageView(img.device, img.View, nil)
	vk.DestroyImage(img.device, img.Handle, nil)
	vk.FreeMemory(img.device, img.Memory, nil)
}
