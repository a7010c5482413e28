package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionSet_MissingReportsUnavailableRequired(t *testing.T) {
	es := newExtensionSet(nil, []string{"VK_KHR_swapchain", "VK_EXT_foo"}, []string{"VK_KHR_swapchain"})
	assert.Equal(t, []string{"VK_EXT_foo"}, es.Missing())
}

func TestExtensionSet_ResolveIncludesRequiredAndAvailableWanted(t *testing.T) {
	es := newExtensionSet(
		[]string{"VK_KHR_swapchain", "VK_EXT_debug_utils", "VK_EXT_unavailable"},
		[]string{"VK_KHR_swapchain"},
		[]string{"VK_KHR_swapchain", "VK_EXT_debug_utils"},
	)
	assert.ElementsMatch(t, []string{"VK_KHR_swapchain", "VK_EXT_debug_utils"}, es.Resolve())
}

func TestExtensionSet_ResolveDoesNotDuplicateRequired(t *testing.T) {
	es := newExtensionSet(
		[]string{"VK_KHR_swapchain"},
		[]string{"VK_KHR_swapchain"},
		[]string{"VK_KHR_swapchain"},
	)
	assert.Equal(t, []string{"VK_KHR_swapchain"}, es.Resolve())
}
