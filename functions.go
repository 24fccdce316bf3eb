package nxtvk

import vk "github.com/vulkan-go/vulkan"

// Functions is the native entry point table the backend records through.
// Every call the backend makes into Vulkan goes through it, so a device can be
// driven by the real loader (NewVulkanFunctions), by a tracer (NewTraceFunctions)
// or by a test double. Signatures mirror the vk package with the count
// arguments folded into slices and allocators dropped.
type Functions interface {
	CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result
	DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool)
	AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, set *vk.DescriptorSet) vk.Result
	UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet)

	CreateFence(device vk.Device, fence *vk.Fence) vk.Result
	GetFenceStatus(device vk.Device, fence vk.Fence) vk.Result
	ResetFences(device vk.Device, fences []vk.Fence) vk.Result
	DestroyFence(device vk.Device, fence vk.Fence)

	CreateCommandPool(device vk.Device, queueFamily uint32, pool *vk.CommandPool) vk.Result
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) vk.Result
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	ResetCommandBuffer(commands vk.CommandBuffer) vk.Result
	BeginCommandBuffer(commands vk.CommandBuffer) vk.Result
	EndCommandBuffer(commands vk.CommandBuffer) vk.Result
	QueueSubmit(queue vk.Queue, commands vk.CommandBuffer, fence vk.Fence) vk.Result

	CmdCopyBuffer(commands vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy)
	CmdCopyBufferToImage(commands vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy)
	CmdCopyImageToBuffer(commands vk.CommandBuffer, src vk.Image, layout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy)
	CmdPipelineBarrier(commands vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags,
		bufferBarriers []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier)
	CmdBeginRenderPass(commands vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents)
	CmdEndRenderPass(commands vk.CommandBuffer)
	CmdSetLineWidth(commands vk.CommandBuffer, width float32)
	CmdSetDepthBounds(commands vk.CommandBuffer, min, max float32)
	CmdSetStencilReference(commands vk.CommandBuffer, faces vk.StencilFaceFlags, reference uint32)
	CmdSetViewport(commands vk.CommandBuffer, first uint32, viewports []vk.Viewport)
	CmdSetScissor(commands vk.CommandBuffer, first uint32, scissors []vk.Rect2D)
	CmdSetBlendConstants(commands vk.CommandBuffer, constants [4]float32)
	CmdBindPipeline(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline)
	CmdBindDescriptorSets(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout,
		firstSet uint32, sets []vk.DescriptorSet)
	CmdBindIndexBuffer(commands vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	CmdBindVertexBuffers(commands vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize)
	CmdDraw(commands vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(commands vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
}

// vulkanFunctions forwards to the process-wide vk dispatch table. vk.Init
// (see LoadVulkan) and vk.InitInstance must have run before any call.
type vulkanFunctions struct{}

func NewVulkanFunctions() Functions {
	return vulkanFunctions{}
}

func (vulkanFunctions) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result {
	return vk.CreateDescriptorPool(device, info, nil, pool)
}

func (vulkanFunctions) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	vk.DestroyDescriptorPool(device, pool, nil)
}

func (vulkanFunctions) AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, set *vk.DescriptorSet) vk.Result {
	return vk.AllocateDescriptorSets(device, info, set)
}

func (vulkanFunctions) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
}

func (vulkanFunctions) CreateFence(device vk.Device, fence *vk.Fence) vk.Result {
	return vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, fence)
}

func (vulkanFunctions) GetFenceStatus(device vk.Device, fence vk.Fence) vk.Result {
	return vk.GetFenceStatus(device, fence)
}

func (vulkanFunctions) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	return vk.ResetFences(device, uint32(len(fences)), fences)
}

func (vulkanFunctions) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (vulkanFunctions) CreateCommandPool(device vk.Device, queueFamily uint32, pool *vk.CommandPool) vk.Result {
	return vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, pool)
}

func (vulkanFunctions) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (vulkanFunctions) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) vk.Result {
	return vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(len(buffers)),
	}, buffers)
}

func (vulkanFunctions) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

func (vulkanFunctions) ResetCommandBuffer(commands vk.CommandBuffer) vk.Result {
	return vk.ResetCommandBuffer(commands,
		vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
}

func (vulkanFunctions) BeginCommandBuffer(commands vk.CommandBuffer) vk.Result {
	return vk.BeginCommandBuffer(commands, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
}

func (vulkanFunctions) EndCommandBuffer(commands vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(commands)
}

func (vulkanFunctions) QueueSubmit(queue vk.Queue, commands vk.CommandBuffer, fence vk.Fence) vk.Result {
	submitInfos := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers: []vk.CommandBuffer{
			commands,
		},
	}}
	return vk.QueueSubmit(queue, 1, submitInfos, fence)
}

func (vulkanFunctions) CmdCopyBuffer(commands vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	vk.CmdCopyBuffer(commands, src, dst, uint32(len(regions)), regions)
}

func (vulkanFunctions) CmdCopyBufferToImage(commands vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	vk.CmdCopyBufferToImage(commands, src, dst, layout, uint32(len(regions)), regions)
}

func (vulkanFunctions) CmdCopyImageToBuffer(commands vk.CommandBuffer, src vk.Image, layout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy) {
	vk.CmdCopyImageToBuffer(commands, src, layout, dst, uint32(len(regions)), regions)
}

func (vulkanFunctions) CmdPipelineBarrier(commands vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags,
	bufferBarriers []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(commands, srcStages, dstStages, 0, 0, nil,
		uint32(len(bufferBarriers)), bufferBarriers, uint32(len(imageBarriers)), imageBarriers)
}

func (vulkanFunctions) CmdBeginRenderPass(commands vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	vk.CmdBeginRenderPass(commands, info, contents)
}

func (vulkanFunctions) CmdEndRenderPass(commands vk.CommandBuffer) {
	vk.CmdEndRenderPass(commands)
}

func (vulkanFunctions) CmdSetLineWidth(commands vk.CommandBuffer, width float32) {
	vk.CmdSetLineWidth(commands, width)
}

func (vulkanFunctions) CmdSetDepthBounds(commands vk.CommandBuffer, min, max float32) {
	vk.CmdSetDepthBounds(commands, min, max)
}

func (vulkanFunctions) CmdSetStencilReference(commands vk.CommandBuffer, faces vk.StencilFaceFlags, reference uint32) {
	vk.CmdSetStencilReference(commands, faces, reference)
}

func (vulkanFunctions) CmdSetViewport(commands vk.CommandBuffer, first uint32, viewports []vk.Viewport) {
	vk.CmdSetViewport(commands, first, uint32(len(viewports)), viewports)
}

func (vulkanFunctions) CmdSetScissor(commands vk.CommandBuffer, first uint32, scissors []vk.Rect2D) {
	vk.CmdSetScissor(commands, first, uint32(len(scissors)), scissors)
}

func (vulkanFunctions) CmdSetBlendConstants(commands vk.CommandBuffer, constants [4]float32) {
	vk.CmdSetBlendConstants(commands, &constants)
}

func (vulkanFunctions) CmdBindPipeline(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(commands, bindPoint, pipeline)
}

func (vulkanFunctions) CmdBindDescriptorSets(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout,
	firstSet uint32, sets []vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(commands, bindPoint, layout, firstSet, uint32(len(sets)), sets, 0, nil)
}

func (vulkanFunctions) CmdBindIndexBuffer(commands vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(commands, buffer, offset, indexType)
}

func (vulkanFunctions) CmdBindVertexBuffers(commands vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(commands, firstBinding, uint32(len(buffers)), buffers, offsets)
}

func (vulkanFunctions) CmdDraw(commands vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(commands, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (vulkanFunctions) CmdDrawIndexed(commands vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(commands, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}
