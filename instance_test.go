package nxtvk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestFindGraphicsQueueFamily(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueFlags(vk.QueueTransferBit), QueueCount: 2},
		{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit) | vk.QueueFlags(vk.QueueComputeBit), QueueCount: 0},
		{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit), QueueCount: 1},
	}
	family, ok := findGraphicsQueueFamily(families)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), family)

	_, ok = findGraphicsQueueFamily(families[:2])
	assert.False(t, ok)
}

func TestPartitionWanted(t *testing.T) {
	found, missing := partitionWanted(
		[]string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_api_dump"},
		[]string{"VK_LAYER_KHRONOS_validation"},
	)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, found)
	assert.Equal(t, []string{"VK_LAYER_LUNARG_api_dump"}, missing)
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "nxtvk\x00", safeString("nxtvk"))
	assert.Equal(t, "a\x00", safeString("a\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b"}))
}
