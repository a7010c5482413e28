package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestDescriptorType_MapsEveryKind(t *testing.T) {
	assert.Equal(t, vk.DescriptorTypeSampledImage, descriptorType(DescriptorSampledImage))
	assert.Equal(t, vk.DescriptorTypeStorageImage, descriptorType(DescriptorStorageImage))
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, descriptorType(DescriptorUniformBuffer))
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, descriptorType(DescriptorStorageBuffer))
}

func TestBindlessRegistry_AllocateSlot_MonotonicPerKind(t *testing.T) {
	b := &BindlessRegistry{}
	s0 := b.allocateSlot(DescriptorSampledImage)
	s1 := b.allocateSlot(DescriptorSampledImage)
	s2 := b.allocateSlot(DescriptorStorageBuffer)

	assert.Equal(t, uint32(0), s0)
	assert.Equal(t, uint32(1), s1)
	assert.Equal(t, uint32(0), s2, "counters are independent per descriptor kind")
	assert.Equal(t, uint32(2), b.Count(DescriptorSampledImage))
	assert.Equal(t, uint32(1), b.Count(DescriptorStorageBuffer))
}
