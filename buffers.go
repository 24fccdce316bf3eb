package nxtvk

import (
	"fmt"

	"github.com/gogpu/gputypes"
	vk "github.com/vulkan-go/vulkan"
)

// BufferDescriptor describes a native buffer created outside the backend.
type BufferDescriptor struct {
	Handle vk.Buffer
	Size   uint64
	// Usage is the usage the buffer is in when handed over, usually none.
	Usage gputypes.BufferUsage
	Label string
}

// Buffer wraps a native buffer and tracks its current usage.
type Buffer struct {
	usageTracker[gputypes.BufferUsage]

	device *Device
	handle vk.Buffer
	size   uint64
	label  string
}

func NewBuffer(device *Device, desc BufferDescriptor) *Buffer {
	b := &Buffer{
		device: device,
		handle: desc.Handle,
		size:   desc.Size,
		label:  desc.Label,
	}
	b.usage = desc.Usage
	return b
}

func (b *Buffer) Handle() vk.Buffer {
	return b.handle
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Label() string {
	return b.label
}

// EmitBarrier records whatever dependency makes a "to" access safe after all
// earlier "from" accesses. It records nothing when none is needed.
func (b *Buffer) EmitBarrier(commands vk.CommandBuffer, from, to gputypes.BufferUsage) {
	info, ok := bufferBarrierFor(from, to)
	if !ok {
		return
	}

	barrier := vk.BufferMemoryBarrier{}
	barrier.SType = vk.StructureTypeBufferMemoryBarrier
	barrier.SrcAccessMask = info.srcAccess
	barrier.DstAccessMask = info.dstAccess
	barrier.SrcQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.DstQueueFamilyIndex = vk.QueueFamilyIgnored
	barrier.Buffer = b.handle
	barrier.Offset = 0
	barrier.Size = vk.DeviceSize(vk.WholeSize)

	b.device.logger.Debug("buffer barrier", "buffer", b.label, "from", from, "to", to)
	b.device.fn.CmdPipelineBarrier(commands, info.srcStages, info.dstStages,
		[]vk.BufferMemoryBarrier{barrier}, nil)
}

// TransitionUsage emits the barrier from the current usage to "to" and then
// commits "to". Every usage change goes through here so the two never drift.
func (b *Buffer) TransitionUsage(commands vk.CommandBuffer, to gputypes.BufferUsage) {
	b.EmitBarrier(commands, b.CurrentUsage(), to)
	b.CommitUsage(to)
}

// BufferView is a byte range of a buffer, as bound to uniform and storage
// bindings.
type BufferView struct {
	buffer *Buffer
	offset uint64
	size   uint64
}

// NewBufferView checks that the range lies inside the buffer.
func NewBufferView(buffer *Buffer, offset, size uint64) (*BufferView, error) {
	if offset+size < offset || offset+size > buffer.size {
		return nil, fmt.Errorf("buffer view [%d, %d) out of range of %q (size %d)",
			offset, offset+size, buffer.label, buffer.size)
	}
	return &BufferView{buffer: buffer, offset: offset, size: size}, nil
}

func (v *BufferView) Buffer() *Buffer {
	return v.buffer
}

func (v *BufferView) Offset() uint64 {
	return v.offset
}

func (v *BufferView) Size() uint64 {
	return v.size
}

func (*BufferView) bindingResource() {}
