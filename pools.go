package nxtvk

import (
	vk "github.com/vulkan-go/vulkan"
)

//Creates a descriptor pool holding exactly one set with the given per-type capacities.
//Failure is reported as native exhaustion; the caller decides whether it is fatal.
func newDescriptorPool(d *Device, sizes []vk.DescriptorPoolSize) (vk.DescriptorPool, error) {
	var pool vk.DescriptorPool

	createInfo := vk.DescriptorPoolCreateInfo{}
	createInfo.SType = vk.StructureTypeDescriptorPoolCreateInfo
	createInfo.PNext = nil
	createInfo.Flags = 0
	createInfo.MaxSets = 1
	createInfo.PoolSizeCount = uint32(len(sizes))
	createInfo.PPoolSizes = sizes

	ret := d.fn.CreateDescriptorPool(d.handle, &createInfo, &pool)
	if isError(ret) {
		return pool, exhausted("create descriptor pool", ret)
	}
	return pool, nil
}

//Allocates the single descriptor set of a pool made by newDescriptorPool.
func allocateDescriptorSet(d *Device, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet

	allocateInfo := vk.DescriptorSetAllocateInfo{}
	allocateInfo.SType = vk.StructureTypeDescriptorSetAllocateInfo
	allocateInfo.PNext = nil
	allocateInfo.DescriptorPool = pool
	allocateInfo.DescriptorSetCount = 1
	allocateInfo.PSetLayouts = []vk.DescriptorSetLayout{layout}

	ret := d.fn.AllocateDescriptorSets(d.handle, &allocateInfo, &set)
	if isError(ret) {
		return set, exhausted("allocate descriptor set", ret)
	}
	return set, nil
}

//Creates the command pool submissions allocate their command buffers from.
func newCommandPool(d *Device) (vk.CommandPool, error) {
	var pool vk.CommandPool
	ret := d.fn.CreateCommandPool(d.handle, d.queueFamily, &pool)
	if isError(ret) {
		return pool, NewError(ret)
	}
	return pool, nil
}
