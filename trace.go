package nxtvk

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// traceFunctions logs every native call at info level before forwarding it.
// With a nil inner table it runs driverless: creations succeed with synthetic
// handles and fences report as signaled on first poll.
type traceFunctions struct {
	inner  Functions
	logger *slog.Logger
}

// NewTraceFunctions wraps inner so each call is logged to logger.
// inner may be nil.
func NewTraceFunctions(inner Functions, logger *slog.Logger) Functions {
	if logger == nil {
		logger = Logger()
	}
	return &traceFunctions{inner: inner, logger: logger}
}

func (t *traceFunctions) log(call string, args ...any) {
	t.logger.Info("vk", append([]any{"call", call}, args...)...)
}

func (t *traceFunctions) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result {
	t.log("CreateDescriptorPool", "maxSets", info.MaxSets, "poolSizes", info.PoolSizeCount)
	if t.inner == nil {
		*pool = vk.DescriptorPool(NewSyntheticHandle())
		return vk.Success
	}
	return t.inner.CreateDescriptorPool(device, info, pool)
}

func (t *traceFunctions) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	t.log("DestroyDescriptorPool", "pool", pool)
	if t.inner != nil {
		t.inner.DestroyDescriptorPool(device, pool)
	}
}

func (t *traceFunctions) AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, set *vk.DescriptorSet) vk.Result {
	t.log("AllocateDescriptorSets", "pool", info.DescriptorPool, "count", info.DescriptorSetCount)
	if t.inner == nil {
		*set = vk.DescriptorSet(NewSyntheticHandle())
		return vk.Success
	}
	return t.inner.AllocateDescriptorSets(device, info, set)
}

func (t *traceFunctions) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	for _, w := range writes {
		t.log("UpdateDescriptorSets", "set", w.DstSet, "binding", w.DstBinding, "type", w.DescriptorType)
	}
	if t.inner != nil {
		t.inner.UpdateDescriptorSets(device, writes)
	}
}

func (t *traceFunctions) CreateFence(device vk.Device, fence *vk.Fence) vk.Result {
	t.log("CreateFence")
	if t.inner == nil {
		*fence = vk.Fence(NewSyntheticHandle())
		return vk.Success
	}
	return t.inner.CreateFence(device, fence)
}

func (t *traceFunctions) GetFenceStatus(device vk.Device, fence vk.Fence) vk.Result {
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.GetFenceStatus(device, fence)
}

func (t *traceFunctions) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	t.log("ResetFences", "count", len(fences))
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.ResetFences(device, fences)
}

func (t *traceFunctions) DestroyFence(device vk.Device, fence vk.Fence) {
	t.log("DestroyFence", "fence", fence)
	if t.inner != nil {
		t.inner.DestroyFence(device, fence)
	}
}

func (t *traceFunctions) CreateCommandPool(device vk.Device, queueFamily uint32, pool *vk.CommandPool) vk.Result {
	t.log("CreateCommandPool", "queueFamily", queueFamily)
	if t.inner == nil {
		*pool = vk.CommandPool(NewSyntheticHandle())
		return vk.Success
	}
	return t.inner.CreateCommandPool(device, queueFamily, pool)
}

func (t *traceFunctions) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	t.log("DestroyCommandPool", "pool", pool)
	if t.inner != nil {
		t.inner.DestroyCommandPool(device, pool)
	}
}

func (t *traceFunctions) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) vk.Result {
	t.log("AllocateCommandBuffers", "pool", pool, "count", len(buffers))
	if t.inner == nil {
		for i := range buffers {
			buffers[i] = vk.CommandBuffer(NewSyntheticHandle())
		}
		return vk.Success
	}
	return t.inner.AllocateCommandBuffers(device, pool, buffers)
}

func (t *traceFunctions) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	t.log("FreeCommandBuffers", "pool", pool, "count", len(buffers))
	if t.inner != nil {
		t.inner.FreeCommandBuffers(device, pool, buffers)
	}
}

func (t *traceFunctions) ResetCommandBuffer(commands vk.CommandBuffer) vk.Result {
	t.log("ResetCommandBuffer", "commands", commands)
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.ResetCommandBuffer(commands)
}

func (t *traceFunctions) BeginCommandBuffer(commands vk.CommandBuffer) vk.Result {
	t.log("BeginCommandBuffer", "commands", commands)
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.BeginCommandBuffer(commands)
}

func (t *traceFunctions) EndCommandBuffer(commands vk.CommandBuffer) vk.Result {
	t.log("EndCommandBuffer", "commands", commands)
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.EndCommandBuffer(commands)
}

func (t *traceFunctions) QueueSubmit(queue vk.Queue, commands vk.CommandBuffer, fence vk.Fence) vk.Result {
	t.log("QueueSubmit", "commands", commands, "fence", fence)
	if t.inner == nil {
		return vk.Success
	}
	return t.inner.QueueSubmit(queue, commands, fence)
}

func (t *traceFunctions) CmdCopyBuffer(commands vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	for _, r := range regions {
		t.log("CmdCopyBuffer", "src", src, "dst", dst, "srcOffset", r.SrcOffset, "dstOffset", r.DstOffset, "size", r.Size)
	}
	if t.inner != nil {
		t.inner.CmdCopyBuffer(commands, src, dst, regions)
	}
}

func (t *traceFunctions) CmdCopyBufferToImage(commands vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	for _, r := range regions {
		t.log("CmdCopyBufferToImage", "src", src, "dst", dst, "layout", layout,
			"rowLength", r.BufferRowLength, "imageHeight", r.BufferImageHeight, "mip", r.ImageSubresource.MipLevel)
	}
	if t.inner != nil {
		t.inner.CmdCopyBufferToImage(commands, src, dst, layout, regions)
	}
}

func (t *traceFunctions) CmdCopyImageToBuffer(commands vk.CommandBuffer, src vk.Image, layout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy) {
	for _, r := range regions {
		t.log("CmdCopyImageToBuffer", "src", src, "layout", layout, "dst", dst,
			"rowLength", r.BufferRowLength, "imageHeight", r.BufferImageHeight, "mip", r.ImageSubresource.MipLevel)
	}
	if t.inner != nil {
		t.inner.CmdCopyImageToBuffer(commands, src, layout, dst, regions)
	}
}

func (t *traceFunctions) CmdPipelineBarrier(commands vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags,
	bufferBarriers []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier) {
	t.log("CmdPipelineBarrier", "srcStages", srcStages, "dstStages", dstStages,
		"buffers", len(bufferBarriers), "images", len(imageBarriers))
	if t.inner != nil {
		t.inner.CmdPipelineBarrier(commands, srcStages, dstStages, bufferBarriers, imageBarriers)
	}
}

func (t *traceFunctions) CmdBeginRenderPass(commands vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	t.log("CmdBeginRenderPass", "renderPass", info.RenderPass, "framebuffer", info.Framebuffer,
		"width", info.RenderArea.Extent.Width, "height", info.RenderArea.Extent.Height, "clearValues", info.ClearValueCount)
	if t.inner != nil {
		t.inner.CmdBeginRenderPass(commands, info, contents)
	}
}

func (t *traceFunctions) CmdEndRenderPass(commands vk.CommandBuffer) {
	t.log("CmdEndRenderPass")
	if t.inner != nil {
		t.inner.CmdEndRenderPass(commands)
	}
}

func (t *traceFunctions) CmdSetLineWidth(commands vk.CommandBuffer, width float32) {
	t.log("CmdSetLineWidth", "width", width)
	if t.inner != nil {
		t.inner.CmdSetLineWidth(commands, width)
	}
}

func (t *traceFunctions) CmdSetDepthBounds(commands vk.CommandBuffer, min, max float32) {
	t.log("CmdSetDepthBounds", "min", min, "max", max)
	if t.inner != nil {
		t.inner.CmdSetDepthBounds(commands, min, max)
	}
}

func (t *traceFunctions) CmdSetStencilReference(commands vk.CommandBuffer, faces vk.StencilFaceFlags, reference uint32) {
	t.log("CmdSetStencilReference", "faces", faces, "reference", reference)
	if t.inner != nil {
		t.inner.CmdSetStencilReference(commands, faces, reference)
	}
}

func (t *traceFunctions) CmdSetViewport(commands vk.CommandBuffer, first uint32, viewports []vk.Viewport) {
	for _, v := range viewports {
		t.log("CmdSetViewport", "first", first, "width", v.Width, "height", v.Height, "minDepth", v.MinDepth, "maxDepth", v.MaxDepth)
	}
	if t.inner != nil {
		t.inner.CmdSetViewport(commands, first, viewports)
	}
}

func (t *traceFunctions) CmdSetScissor(commands vk.CommandBuffer, first uint32, scissors []vk.Rect2D) {
	for _, s := range scissors {
		t.log("CmdSetScissor", "first", first, "width", s.Extent.Width, "height", s.Extent.Height)
	}
	if t.inner != nil {
		t.inner.CmdSetScissor(commands, first, scissors)
	}
}

func (t *traceFunctions) CmdSetBlendConstants(commands vk.CommandBuffer, constants [4]float32) {
	t.log("CmdSetBlendConstants", "constants", constants)
	if t.inner != nil {
		t.inner.CmdSetBlendConstants(commands, constants)
	}
}

func (t *traceFunctions) CmdBindPipeline(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	t.log("CmdBindPipeline", "bindPoint", bindPoint, "pipeline", pipeline)
	if t.inner != nil {
		t.inner.CmdBindPipeline(commands, bindPoint, pipeline)
	}
}

func (t *traceFunctions) CmdBindDescriptorSets(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout,
	firstSet uint32, sets []vk.DescriptorSet) {
	t.log("CmdBindDescriptorSets", "layout", layout, "firstSet", firstSet, "count", len(sets))
	if t.inner != nil {
		t.inner.CmdBindDescriptorSets(commands, bindPoint, layout, firstSet, sets)
	}
}

func (t *traceFunctions) CmdBindIndexBuffer(commands vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	t.log("CmdBindIndexBuffer", "buffer", buffer, "offset", offset, "indexType", indexType)
	if t.inner != nil {
		t.inner.CmdBindIndexBuffer(commands, buffer, offset, indexType)
	}
}

func (t *traceFunctions) CmdBindVertexBuffers(commands vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	for i := range buffers {
		t.log("CmdBindVertexBuffers", "slot", firstBinding+uint32(i), "buffer", buffers[i], "offset", offsets[i])
	}
	if t.inner != nil {
		t.inner.CmdBindVertexBuffers(commands, firstBinding, buffers, offsets)
	}
}

func (t *traceFunctions) CmdDraw(commands vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	t.log("CmdDraw", "vertexCount", vertexCount, "instanceCount", instanceCount,
		"firstVertex", firstVertex, "firstInstance", firstInstance)
	if t.inner != nil {
		t.inner.CmdDraw(commands, vertexCount, instanceCount, firstVertex, firstInstance)
	}
}

func (t *traceFunctions) CmdDrawIndexed(commands vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	t.log("CmdDrawIndexed", "indexCount", indexCount, "instanceCount", instanceCount,
		"firstIndex", firstIndex, "vertexOffset", vertexOffset, "firstInstance", firstInstance)
	if t.inner != nil {
		t.inner.CmdDrawIndexed(commands, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
	}
}
