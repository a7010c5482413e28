package graphics

import (
	"fmt"
	"sync/atomic"

	vk "github.com/vulkan-go/vulkan"
)

// DescriptorKind names one of the four bindless descriptor arrays from
// distilled spec §6.
type DescriptorKind int

const (
	DescriptorSampledImage DescriptorKind = iota
	DescriptorStorageImage
	DescriptorUniformBuffer
	DescriptorStorageBuffer
	descriptorKindCount
)

// maxDescriptorsPerKindCap is the hard ceiling each bindless array's
// allocation is capped at, per distilled spec §4.3's "sized from
// physical-device maxDescriptorSetUpdateAfterBind* for each of the four
// kinds (capped at 2048)".
const maxDescriptorsPerKindCap = 2048

// unboundSlot is the sentinel a Buffer/Image stores when it has not been
// bound for a given descriptor kind yet.
const unboundSlot int32 = -1

// descriptorIndexingLimits queries the physical device's per-kind
// update-after-bind descriptor limits and caps each at
// maxDescriptorsPerKindCap, returned in DescriptorKind order.
func descriptorIndexingLimits(gpu vk.PhysicalDevice) [descriptorKindCount]uint32 {
	indexingProps := vk.PhysicalDeviceDescriptorIndexingProperties{
		SType: vk.StructureTypePhysicalDeviceDescriptorIndexingProperties,
	}
	props2 := vk.PhysicalDeviceProperties2{
		SType: vk.StructureTypePhysicalDeviceProperties2,
		PNext: unsafePointer(&indexingProps),
	}
	vk.GetPhysicalDeviceProperties2(gpu, &props2)
	indexingProps.Deref()

	clamp := func(limit uint32) uint32 {
		if limit == 0 || limit > maxDescriptorsPerKindCap {
			return maxDescriptorsPerKindCap
		}
		return limit
	}
	var limits [descriptorKindCount]uint32
	limits[DescriptorSampledImage] = clamp(indexingProps.MaxDescriptorSetUpdateAfterBindSampledImages)
	limits[DescriptorStorageImage] = clamp(indexingProps.MaxDescriptorSetUpdateAfterBindStorageImages)
	limits[DescriptorUniformBuffer] = clamp(indexingProps.MaxDescriptorSetUpdateAfterBindUniformBuffers)
	limits[DescriptorStorageBuffer] = clamp(indexingProps.MaxDescriptorSetUpdateAfterBindStorageBuffers)
	return limits
}

// BindlessRegistry owns the four global bindless descriptor arrays plus the
// immutable-sampler set and the shared pipeline layout every pipeline uses.
// Slot allocation is a monotonically increasing atomic counter per kind;
// slots are never recycled in this design (distilled spec §9 open question).
type BindlessRegistry struct {
	device vk.Device

	pool    vk.DescriptorPool
	layouts [descriptorKindCount]vk.DescriptorSetLayout
	sets    [descriptorKindCount]vk.DescriptorSet

	samplerLayout vk.DescriptorSetLayout
	samplerSet    vk.DescriptorSet

	pipelineLayout vk.PipelineLayout

	counters [descriptorKindCount]uint32
	limits   [descriptorKindCount]uint32
}

func descriptorType(kind DescriptorKind) vk.DescriptorType {
	switch kind {
	case DescriptorSampledImage:
		return vk.DescriptorTypeSampledImage
	case DescriptorStorageImage:
		return vk.DescriptorTypeStorageImage
	case DescriptorUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	case DescriptorStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	default:
		panic("graphics: unknown descriptor kind")
	}
}

// bindlessBindingFlags is PARTIALLY_BOUND | VARIABLE_DESCRIPTOR_COUNT |
// UPDATE_AFTER_BIND, shared by all four bindless set layouts.
const bindlessBindingFlags = vk.DescriptorBindingFlagBits(
	vk.DescriptorBindingPartiallyBoundBit |
		vk.DescriptorBindingVariableDescriptorCountBit |
		vk.DescriptorBindingUpdateAfterBindBit,
)

// NewBindlessRegistry builds the descriptor pool, the four bindless set
// layouts and sets, a fixed immutable-sampler set, and the global pipeline
// layout every graphics/compute pipeline shares. Each bindless array is
// sized from gpu's maxDescriptorSetUpdateAfterBind* limit for its kind,
// capped at maxDescriptorsPerKindCap.
func NewBindlessRegistry(gpu vk.PhysicalDevice, device vk.Device, nearestSampler vk.Sampler) (*BindlessRegistry, error) {
	b := &BindlessRegistry{device: device, limits: descriptorIndexingLimits(gpu)}

	poolSizes := make([]vk.DescriptorPoolSize, 0, descriptorKindCount+1)
	for k := DescriptorKind(0); k < descriptorKindCount; k++ {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            descriptorType(k),
			DescriptorCount: b.limits[k],
		})
	}
	poolSizes = append(poolSizes, vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeSampler,
		DescriptorCount: 1,
	})

	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateUpdateAfterBindBit),
		MaxSets:       uint32(descriptorKindCount) + 1,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}, nil, &b.pool)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("create bindless descriptor pool: %w", err)
	}

	for k := DescriptorKind(0); k < descriptorKindCount; k++ {
		layout, set, err := b.createBindlessSet(k)
		if err != nil {
			return nil, err
		}
		b.layouts[k] = layout
		b.sets[k] = set
	}

	samplerLayout, samplerSet, err := b.createSamplerSet(nearestSampler)
	if err != nil {
		return nil, err
	}
	b.samplerLayout = samplerLayout
	b.samplerSet = samplerSet

	setLayouts := []vk.DescriptorSetLayout{
		b.layouts[DescriptorSampledImage],
		b.layouts[DescriptorStorageImage],
		b.layouts[DescriptorUniformBuffer],
		b.layouts[DescriptorStorageBuffer],
		b.samplerLayout,
	}
	var pipelineLayout vk.PipelineLayout
	ret = vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageAll),
			Offset:     0,
			Size:       128,
		}},
	}, nil, &pipelineLayout)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("create global pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout

	return b, nil
}

func (b *BindlessRegistry) createBindlessSet(kind DescriptorKind) (vk.DescriptorSetLayout, vk.DescriptorSet, error) {
	bindingFlags := []vk.DescriptorBindingFlags{vk.DescriptorBindingFlags(bindlessBindingFlags)}
	flagsInfo := vk.DescriptorSetLayoutBindingFlagsCreateInfo{
		SType:         vk.StructureTypeDescriptorSetLayoutBindingFlagsCreateInfo,
		BindingCount:  1,
		PBindingFlags: bindingFlags,
	}

	limit := b.limits[kind]
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(b.device, &vk.DescriptorSetLayoutCreateInfo{
		SType: vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext: unsafePointer(&flagsInfo),
		Flags: vk.DescriptorSetLayoutCreateFlags(vk.DescriptorSetLayoutCreateUpdateAfterBindPoolBit),
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  descriptorType(kind),
			DescriptorCount: limit,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageAll),
		}},
	}, nil, &layout)
	if err := NewError(ret); err != nil {
		return 0, 0, fmt.Errorf("create bindless set layout: %w", err)
	}

	variableCount := limit
	variableInfo := vk.DescriptorSetVariableDescriptorCountAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetVariableDescriptorCountAllocateInfo,
		DescriptorSetCount: 1,
		PDescriptorCounts:  []uint32{variableCount},
	}
	var set vk.DescriptorSet
	ret = vk.AllocateDescriptorSets(b.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              unsafePointer(&variableInfo),
		DescriptorPool:     b.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if err := NewError(ret); err != nil {
		return 0, 0, fmt.Errorf("allocate bindless set: %w", err)
	}
	return layout, set, nil
}

func (b *BindlessRegistry) createSamplerSet(sampler vk.Sampler) (vk.DescriptorSetLayout, vk.DescriptorSet, error) {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(b.device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:           0,
			DescriptorType:    vk.DescriptorTypeSampler,
			DescriptorCount:   1,
			StageFlags:        vk.ShaderStageFlags(vk.ShaderStageAll),
			PImmutableSamplers: []vk.Sampler{sampler},
		}},
	}, nil, &layout)
	if err := NewError(ret); err != nil {
		return 0, 0, fmt.Errorf("create sampler set layout: %w", err)
	}

	var set vk.DescriptorSet
	ret = vk.AllocateDescriptorSets(b.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     b.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if err := NewError(ret); err != nil {
		return 0, 0, fmt.Errorf("allocate sampler set: %w", err)
	}
	return layout, set, nil
}

// PipelineLayout returns the global pipeline layout shared by every pipeline.
func (b *BindlessRegistry) PipelineLayout() vk.PipelineLayout { return b.pipelineLayout }

// DescriptorSets returns the five sets, in the fixed binding order from
// distilled spec §6 (sampled image, storage image, uniform buffer, storage
// buffer, sampler), for CommandBuffer.BindGlobalDescriptorSets.
func (b *BindlessRegistry) DescriptorSets() []vk.DescriptorSet {
	return []vk.DescriptorSet{
		b.sets[DescriptorSampledImage],
		b.sets[DescriptorStorageImage],
		b.sets[DescriptorUniformBuffer],
		b.sets[DescriptorStorageBuffer],
		b.samplerSet,
	}
}

// Count reports how many slots of kind have been allocated so far.
func (b *BindlessRegistry) Count(kind DescriptorKind) uint32 {
	return atomic.LoadUint32(&b.counters[kind])
}

// allocateSlot atomically fetch-adds the counter for kind, giving every
// caller (including concurrent ones) a distinct, monotonically increasing
// slot index.
func (b *BindlessRegistry) allocateSlot(kind DescriptorKind) uint32 {
	return atomic.AddUint32(&b.counters[kind], 1) - 1
}

// bindWrite writes one descriptor into the bindless array for kind at slot,
// using imageInfo or bufferInfo depending on kind.
func (b *BindlessRegistry) bindWrite(kind DescriptorKind, slot uint32, imageInfo *vk.DescriptorImageInfo, bufferInfo *vk.DescriptorBufferInfo) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          b.sets[kind],
		DstBinding:      0,
		DstArrayElement: slot,
		DescriptorCount: 1,
		DescriptorType:  descriptorType(kind),
	}
	if imageInfo != nil {
		write.PImageInfo = []vk.DescriptorImageInfo{*imageInfo}
	}
	if bufferInfo != nil {
		write.PBufferInfo = []vk.DescriptorBufferInfo{*bufferInfo}
	}
	vk.UpdateDescriptorSets(b.device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// BindSampledImage allocates a fresh slot in the sampled-image array,
// writes view/layout into it, and records the slot on img.SampledSlot.
// Binding a resource already bound for this kind is a precondition
// violation and panics.
func (b *BindlessRegistry) BindSampledImage(img *Image, layout vk.ImageLayout) int32 {
	if img.SampledSlot != unboundSlot {
		panic("graphics: image already bound as a sampled image")
	}
	slot := b.allocateSlot(DescriptorSampledImage)
	b.bindWrite(DescriptorSampledImage, slot, &vk.DescriptorImageInfo{
		ImageView:   img.View,
		ImageLayout: layout,
	}, nil)
	img.SampledSlot = int32(slot)
	return img.SampledSlot
}

// BindStorageImage allocates a fresh slot in the storage-image array and
// records it on img.StorageSlot.
func (b *BindlessRegistry) BindStorageImage(img *Image, layout vk.ImageLayout) int32 {
	if img.StorageSlot != unboundSlot {
		panic("graphics: image already bound as a storage image")
	}
	slot := b.allocateSlot(DescriptorStorageImage)
	b.bindWrite(DescriptorStorageImage, slot, &vk.DescriptorImageInfo{
		ImageView:   img.View,
		ImageLayout: layout,
	}, nil)
	img.StorageSlot = int32(slot)
	return img.StorageSlot
}

// BindUniformBuffer allocates a fresh slot in the uniform-buffer array and
// records it on buf.UniformSlot.
func (b *BindlessRegistry) BindUniformBuffer(buf *Buffer) int32 {
	if buf.UniformSlot != unboundSlot {
		panic("graphics: buffer already bound as a uniform buffer")
	}
	slot := b.allocateSlot(DescriptorUniformBuffer)
	b.bindWrite(DescriptorUniformBuffer, slot, nil, &vk.DescriptorBufferInfo{
		Buffer: buf.Handle,
		Offset: 0,
		Range:  buf.Size,
	})
	buf.UniformSlot = int32(slot)
	return buf.UniformSlot
}

// BindStorageBuffer allocates a fresh slot in the storage-buffer array and
// records it on buf.StorageSlot.
func (b *BindlessRegistry) BindStorageBuffer(buf *Buffer) int32 {
	if buf.StorageSlot != unboundSlot {
		panic("graphics: buffer already bound as a storage buffer")
	}
	slot := b.allocateSlot(DescriptorStorageBuffer)
	b.bindWrite(DescriptorStorageBuffer, slot, nil, &vk.DescriptorBufferInfo{
		Buffer: buf.Handle,
		Offset: 0,
		Range:  buf.Size,
	})
	buf.StorageSlot = int32(slot)
	return buf.StorageSlot
}

// Destroy releases the pool (which implicitly frees every set allocated from
// it), the global pipeline layout, and all five descriptor set layouts.
func (b *BindlessRegistry) Destroy() {
	vk.DestroyPipelineLayout(b.device, b.pipelineLayout, nil)
	vk.DestroyDescriptorSetLayout(b.device, b.samplerLayout, nil)
	for _, l := range b.layouts {
		vk.DestroyDescriptorSetLayout(b.device, l, nil)
	}
	vk.DestroyDescriptorPool(b.device, b.pool, nil)
}
