package nxtvk

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// Handles come from a fixed array so two runs of the same test produce
// identical pointers. The fake hands out the low half, tests use the high half.
var testHandles [256]uint64

func handleAt(i int) unsafe.Pointer {
	return unsafe.Pointer(&testHandles[i])
}

func testHandle(i int) unsafe.Pointer {
	return handleAt(128 + i)
}

type fakeCall struct {
	Name string
	Args []any
}

// fakeFunctions records every native call and plays the driver.
type fakeFunctions struct {
	calls      []fakeCall
	nextHandle int

	fences   []vk.Fence
	signaled map[vk.Fence]bool

	createPoolResult  vk.Result
	allocateSetResult vk.Result

	// failSubmits makes that many QueueSubmit calls fail before succeeding again.
	failSubmits int
}

func newFakeFunctions() *fakeFunctions {
	return &fakeFunctions{signaled: map[vk.Fence]bool{}}
}

func (f *fakeFunctions) newHandle() unsafe.Pointer {
	h := handleAt(f.nextHandle)
	f.nextHandle++
	return h
}

func (f *fakeFunctions) record(name string, args ...any) {
	f.calls = append(f.calls, fakeCall{Name: name, Args: args})
}

func (f *fakeFunctions) reset() {
	f.calls = nil
}

func (f *fakeFunctions) named(name string) []fakeCall {
	var out []fakeCall
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeFunctions) names() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Name)
	}
	return out
}

func (f *fakeFunctions) signal(fence vk.Fence) {
	f.signaled[fence] = true
}

func (f *fakeFunctions) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result {
	sizes := append([]vk.DescriptorPoolSize(nil), info.PPoolSizes...)
	f.record("CreateDescriptorPool", info.MaxSets, sizes)
	if f.createPoolResult != vk.Success {
		return f.createPoolResult
	}
	*pool = vk.DescriptorPool(f.newHandle())
	return vk.Success
}

func (f *fakeFunctions) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	f.record("DestroyDescriptorPool", pool)
}

func (f *fakeFunctions) AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, set *vk.DescriptorSet) vk.Result {
	f.record("AllocateDescriptorSets", info.DescriptorPool, info.DescriptorSetCount)
	if f.allocateSetResult != vk.Success {
		return f.allocateSetResult
	}
	*set = vk.DescriptorSet(f.newHandle())
	return vk.Success
}

func (f *fakeFunctions) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	f.record("UpdateDescriptorSets", append([]vk.WriteDescriptorSet(nil), writes...))
}

func (f *fakeFunctions) CreateFence(device vk.Device, fence *vk.Fence) vk.Result {
	*fence = vk.Fence(f.newHandle())
	f.fences = append(f.fences, *fence)
	f.record("CreateFence", *fence)
	return vk.Success
}

func (f *fakeFunctions) GetFenceStatus(device vk.Device, fence vk.Fence) vk.Result {
	if f.signaled[fence] {
		return vk.Success
	}
	return vk.NotReady
}

func (f *fakeFunctions) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	for _, fence := range fences {
		delete(f.signaled, fence)
	}
	f.record("ResetFences", append([]vk.Fence(nil), fences...))
	return vk.Success
}

func (f *fakeFunctions) DestroyFence(device vk.Device, fence vk.Fence) {
	f.record("DestroyFence", fence)
}

func (f *fakeFunctions) CreateCommandPool(device vk.Device, queueFamily uint32, pool *vk.CommandPool) vk.Result {
	*pool = vk.CommandPool(f.newHandle())
	f.record("CreateCommandPool", queueFamily)
	return vk.Success
}

func (f *fakeFunctions) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	f.record("DestroyCommandPool", pool)
}

func (f *fakeFunctions) AllocateCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) vk.Result {
	for i := range buffers {
		buffers[i] = vk.CommandBuffer(f.newHandle())
	}
	f.record("AllocateCommandBuffers", len(buffers))
	return vk.Success
}

func (f *fakeFunctions) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	f.record("FreeCommandBuffers", len(buffers))
}

func (f *fakeFunctions) ResetCommandBuffer(commands vk.CommandBuffer) vk.Result {
	f.record("ResetCommandBuffer", commands)
	return vk.Success
}

func (f *fakeFunctions) BeginCommandBuffer(commands vk.CommandBuffer) vk.Result {
	f.record("BeginCommandBuffer", commands)
	return vk.Success
}

func (f *fakeFunctions) EndCommandBuffer(commands vk.CommandBuffer) vk.Result {
	f.record("EndCommandBuffer", commands)
	return vk.Success
}

func (f *fakeFunctions) QueueSubmit(queue vk.Queue, commands vk.CommandBuffer, fence vk.Fence) vk.Result {
	f.record("QueueSubmit", commands, fence)
	if f.failSubmits > 0 {
		f.failSubmits--
		return vk.ErrorOutOfHostMemory
	}
	return vk.Success
}

func (f *fakeFunctions) CmdCopyBuffer(commands vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	f.record("CmdCopyBuffer", src, dst, append([]vk.BufferCopy(nil), regions...))
}

func (f *fakeFunctions) CmdCopyBufferToImage(commands vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	f.record("CmdCopyBufferToImage", src, dst, layout, append([]vk.BufferImageCopy(nil), regions...))
}

func (f *fakeFunctions) CmdCopyImageToBuffer(commands vk.CommandBuffer, src vk.Image, layout vk.ImageLayout, dst vk.Buffer, regions []vk.BufferImageCopy) {
	f.record("CmdCopyImageToBuffer", src, layout, dst, append([]vk.BufferImageCopy(nil), regions...))
}

func (f *fakeFunctions) CmdPipelineBarrier(commands vk.CommandBuffer, srcStages, dstStages vk.PipelineStageFlags,
	bufferBarriers []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier) {
	f.record("CmdPipelineBarrier", srcStages, dstStages,
		append([]vk.BufferMemoryBarrier(nil), bufferBarriers...),
		append([]vk.ImageMemoryBarrier(nil), imageBarriers...))
}

func (f *fakeFunctions) CmdBeginRenderPass(commands vk.CommandBuffer, info *vk.RenderPassBeginInfo, contents vk.SubpassContents) {
	f.record("CmdBeginRenderPass", info.RenderPass, info.Framebuffer, info.RenderArea,
		append([]vk.ClearValue(nil), info.PClearValues...), contents)
}

func (f *fakeFunctions) CmdEndRenderPass(commands vk.CommandBuffer) {
	f.record("CmdEndRenderPass")
}

func (f *fakeFunctions) CmdSetLineWidth(commands vk.CommandBuffer, width float32) {
	f.record("CmdSetLineWidth", width)
}

func (f *fakeFunctions) CmdSetDepthBounds(commands vk.CommandBuffer, min, max float32) {
	f.record("CmdSetDepthBounds", min, max)
}

func (f *fakeFunctions) CmdSetStencilReference(commands vk.CommandBuffer, faces vk.StencilFaceFlags, reference uint32) {
	f.record("CmdSetStencilReference", faces, reference)
}

func (f *fakeFunctions) CmdSetViewport(commands vk.CommandBuffer, first uint32, viewports []vk.Viewport) {
	f.record("CmdSetViewport", first, append([]vk.Viewport(nil), viewports...))
}

func (f *fakeFunctions) CmdSetScissor(commands vk.CommandBuffer, first uint32, scissors []vk.Rect2D) {
	f.record("CmdSetScissor", first, append([]vk.Rect2D(nil), scissors...))
}

func (f *fakeFunctions) CmdSetBlendConstants(commands vk.CommandBuffer, constants [4]float32) {
	f.record("CmdSetBlendConstants", constants)
}

func (f *fakeFunctions) CmdBindPipeline(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	f.record("CmdBindPipeline", bindPoint, pipeline)
}

func (f *fakeFunctions) CmdBindDescriptorSets(commands vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout,
	firstSet uint32, sets []vk.DescriptorSet) {
	f.record("CmdBindDescriptorSets", bindPoint, layout, firstSet, append([]vk.DescriptorSet(nil), sets...))
}

func (f *fakeFunctions) CmdBindIndexBuffer(commands vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	f.record("CmdBindIndexBuffer", buffer, offset, indexType)
}

func (f *fakeFunctions) CmdBindVertexBuffers(commands vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	f.record("CmdBindVertexBuffers", firstBinding,
		append([]vk.Buffer(nil), buffers...), append([]vk.DeviceSize(nil), offsets...))
}

func (f *fakeFunctions) CmdDraw(commands vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.record("CmdDraw", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (f *fakeFunctions) CmdDrawIndexed(commands vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	f.record("CmdDrawIndexed", indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// newTestDevice returns a device on a fresh fake whose fatal handler collects
// errors instead of exiting.
func newTestDevice(t *testing.T) (*Device, *fakeFunctions, *[]error) {
	t.Helper()
	fake := newFakeFunctions()
	var fatals []error
	device, err := NewDevice(DeviceDescriptor{
		Handle:    vk.Device(testHandle(120)),
		Queue:     vk.Queue(testHandle(121)),
		Functions: fake,
		FatalHandler: func(err error) {
			fatals = append(fatals, err)
		},
	})
	require.NoError(t, err)
	return device, fake, &fatals
}

func newTestBuffer(device *Device, handle int, size uint64, label string) *Buffer {
	return NewBuffer(device, BufferDescriptor{
		Handle: vk.Buffer(testHandle(handle)),
		Size:   size,
		Label:  label,
	})
}
