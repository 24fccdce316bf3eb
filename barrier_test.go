package nxtvk

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func stages(bits ...vk.PipelineStageFlagBits) vk.PipelineStageFlags {
	var s vk.PipelineStageFlags
	for _, b := range bits {
		s |= vk.PipelineStageFlags(b)
	}
	return s
}

func access(bits ...vk.AccessFlagBits) vk.AccessFlags {
	var a vk.AccessFlags
	for _, b := range bits {
		a |= vk.AccessFlags(b)
	}
	return a
}

func TestBufferBarrierFor(t *testing.T) {
	tests := []struct {
		name      string
		from, to  gputypes.BufferUsage
		want      bool
		srcStages vk.PipelineStageFlags
		dstStages vk.PipelineStageFlags
		srcAccess vk.AccessFlags
		dstAccess vk.AccessFlags
	}{
		{
			name: "first use",
			from: 0, to: gputypes.BufferUsageCopyDst,
			want: false,
		},
		{
			name: "same read-only usage",
			from: gputypes.BufferUsageUniform, to: gputypes.BufferUsageUniform,
			want: false,
		},
		{
			name: "upload then vertex fetch",
			from: gputypes.BufferUsageCopyDst, to: gputypes.BufferUsageVertex,
			want:      true,
			srcStages: stages(vk.PipelineStageTransferBit),
			dstStages: stages(vk.PipelineStageVertexInputBit),
			srcAccess: access(vk.AccessTransferWriteBit),
			dstAccess: access(vk.AccessVertexAttributeReadBit),
		},
		{
			name: "storage write after write",
			from: gputypes.BufferUsageStorage, to: gputypes.BufferUsageStorage,
			want:      true,
			srcStages: stages(vk.PipelineStageVertexShaderBit, vk.PipelineStageFragmentShaderBit),
			dstStages: stages(vk.PipelineStageVertexShaderBit, vk.PipelineStageFragmentShaderBit),
			srcAccess: access(vk.AccessShaderReadBit, vk.AccessShaderWriteBit),
			dstAccess: access(vk.AccessShaderReadBit, vk.AccessShaderWriteBit),
		},
		{
			name: "index read then copy source",
			from: gputypes.BufferUsageIndex, to: gputypes.BufferUsageCopySrc,
			want:      true,
			srcStages: stages(vk.PipelineStageVertexInputBit),
			dstStages: stages(vk.PipelineStageTransferBit),
			srcAccess: access(vk.AccessIndexReadBit),
			dstAccess: access(vk.AccessTransferReadBit),
		},
		{
			name: "readback to host",
			from: gputypes.BufferUsageCopyDst, to: gputypes.BufferUsageMapRead,
			want:      true,
			srcStages: stages(vk.PipelineStageTransferBit),
			dstStages: stages(vk.PipelineStageHostBit),
			srcAccess: access(vk.AccessTransferWriteBit),
			dstAccess: access(vk.AccessHostReadBit),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := bufferBarrierFor(tt.from, tt.to)
			require.Equal(t, tt.want, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.srcStages, info.srcStages)
			assert.Equal(t, tt.dstStages, info.dstStages)
			assert.Equal(t, tt.srcAccess, info.srcAccess)
			assert.Equal(t, tt.dstAccess, info.dstAccess)
		})
	}
}

func TestTextureBarrierFor(t *testing.T) {
	tests := []struct {
		name         string
		from, to     gputypes.TextureUsage
		depthStencil bool
		want         bool
		oldLayout    vk.ImageLayout
		newLayout    vk.ImageLayout
		srcStages    vk.PipelineStageFlags
	}{
		{
			name: "undefined to color attachment",
			from: 0, to: gputypes.TextureUsageRenderAttachment,
			want:      true,
			oldLayout: vk.ImageLayoutUndefined,
			newLayout: vk.ImageLayoutColorAttachmentOptimal,
			srcStages: stages(vk.PipelineStageTopOfPipeBit),
		},
		{
			name: "undefined to depth attachment",
			from: 0, to: gputypes.TextureUsageRenderAttachment, depthStencil: true,
			want:      true,
			oldLayout: vk.ImageLayoutUndefined,
			newLayout: vk.ImageLayoutDepthStencilAttachmentOptimal,
			srcStages: stages(vk.PipelineStageTopOfPipeBit),
		},
		{
			name: "upload then sample",
			from: gputypes.TextureUsageCopyDst, to: gputypes.TextureUsageTextureBinding,
			want:      true,
			oldLayout: vk.ImageLayoutTransferDstOptimal,
			newLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			srcStages: stages(vk.PipelineStageTransferBit),
		},
		{
			name: "sampled stays sampled",
			from: gputypes.TextureUsageTextureBinding, to: gputypes.TextureUsageTextureBinding,
			want: false,
		},
		{
			name: "attachment written twice",
			from: gputypes.TextureUsageRenderAttachment, to: gputypes.TextureUsageRenderAttachment,
			want:      true,
			oldLayout: vk.ImageLayoutColorAttachmentOptimal,
			newLayout: vk.ImageLayoutColorAttachmentOptimal,
			srcStages: stages(vk.PipelineStageColorAttachmentOutputBit),
		},
		{
			name: "copy source stays general",
			from: gputypes.TextureUsageRenderAttachment, to: gputypes.TextureUsageCopySrc,
			want:      true,
			oldLayout: vk.ImageLayoutColorAttachmentOptimal,
			newLayout: vk.ImageLayoutGeneral,
			srcStages: stages(vk.PipelineStageColorAttachmentOutputBit),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := textureBarrierFor(tt.from, tt.to, tt.depthStencil)
			require.Equal(t, tt.want, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.oldLayout, info.oldLayout)
			assert.Equal(t, tt.newLayout, info.newLayout)
			assert.Equal(t, tt.srcStages, info.srcStages)
			assert.NotZero(t, info.dstStages)
		})
	}
}

func TestBufferEmitBarrier(t *testing.T) {
	device, fake, _ := newTestDevice(t)
	buffer := newTestBuffer(device, 0, 1024, "vertices")
	commands := vk.CommandBuffer(testHandle(100))
	fake.reset()

	buffer.EmitBarrier(commands, 0, gputypes.BufferUsageCopyDst)
	assert.Empty(t, fake.calls, "no barrier before first use")

	buffer.EmitBarrier(commands, gputypes.BufferUsageCopyDst, gputypes.BufferUsageVertex)
	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "CmdPipelineBarrier", call.Name)
	assert.Equal(t, stages(vk.PipelineStageTransferBit), call.Args[0])
	assert.Equal(t, stages(vk.PipelineStageVertexInputBit), call.Args[1])

	barriers := call.Args[2].([]vk.BufferMemoryBarrier)
	require.Len(t, barriers, 1)
	assert.Equal(t, vk.Buffer(testHandle(0)), barriers[0].Buffer)
	assert.Equal(t, vk.DeviceSize(vk.WholeSize), barriers[0].Size)
	assert.Equal(t, access(vk.AccessTransferWriteBit), barriers[0].SrcAccessMask)
	assert.Equal(t, access(vk.AccessVertexAttributeReadBit), barriers[0].DstAccessMask)
	assert.Empty(t, call.Args[3].([]vk.ImageMemoryBarrier))
}

func TestTextureEmitBarrierCoversWholeImage(t *testing.T) {
	device, fake, _ := newTestDevice(t)
	texture, err := NewTexture(device, TextureDescriptor{
		Handle: vk.Image(testHandle(1)),
		Format: gputypes.TextureFormatDepth24PlusStencil8,
		Width:  8,
		Height: 8,
		Label:  "depth",
	})
	require.NoError(t, err)
	fake.reset()

	texture.TransitionUsage(vk.CommandBuffer(testHandle(100)), gputypes.TextureUsageRenderAttachment)
	require.Len(t, fake.calls, 1)

	barriers := fake.calls[0].Args[3].([]vk.ImageMemoryBarrier)
	require.Len(t, barriers, 1)
	b := barriers[0]
	assert.Equal(t, vk.ImageLayoutUndefined, b.OldLayout)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, b.NewLayout)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit)|vk.ImageAspectFlags(vk.ImageAspectStencilBit),
		b.SubresourceRange.AspectMask)
	assert.Equal(t, uint32(vk.RemainingMipLevels), b.SubresourceRange.LevelCount)
	assert.Equal(t, gputypes.TextureUsageRenderAttachment, texture.CurrentUsage())
}
