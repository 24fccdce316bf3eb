package nxtvk

import (
	"iter"
	"math/bits"

	vk "github.com/vulkan-go/vulkan"
)

// IterateBitSet yields the indices of the set bits of mask in ascending order.
func IterateBitSet(mask uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for mask != 0 {
			i := uint32(bits.TrailingZeros32(mask))
			if !yield(i) {
				return
			}
			mask &= mask - 1
		}
	}
}

// InstanceExtensions gets a list of instance extensions available on the platform.
// LoadVulkan must have succeeded first.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(NewError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(NewError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}
