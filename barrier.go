package nxtvk

import (
	"github.com/gogpu/gputypes"
	vk "github.com/vulkan-go/vulkan"
)

// barrierInfo is the dependency needed to order a "to" access after all
// earlier "from" accesses of one resource.
type barrierInfo struct {
	srcStages vk.PipelineStageFlags
	dstStages vk.PipelineStageFlags
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	oldLayout vk.ImageLayout
	newLayout vk.ImageLayout
}

const bufferWriteUsages = gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage

const textureWriteUsages = gputypes.TextureUsageCopyDst | gputypes.TextureUsageStorageBinding |
	gputypes.TextureUsageRenderAttachment

const shaderStages = vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit) |
	vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

func bufferAccessFlags(usage gputypes.BufferUsage) vk.AccessFlags {
	var flags vk.AccessFlags
	if usage&gputypes.BufferUsageMapRead != 0 {
		flags |= vk.AccessFlags(vk.AccessHostReadBit)
	}
	if usage&gputypes.BufferUsageMapWrite != 0 {
		flags |= vk.AccessFlags(vk.AccessHostWriteBit)
	}
	if usage&gputypes.BufferUsageCopySrc != 0 {
		flags |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if usage&gputypes.BufferUsageCopyDst != 0 {
		flags |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if usage&gputypes.BufferUsageIndex != 0 {
		flags |= vk.AccessFlags(vk.AccessIndexReadBit)
	}
	if usage&gputypes.BufferUsageVertex != 0 {
		flags |= vk.AccessFlags(vk.AccessVertexAttributeReadBit)
	}
	if usage&gputypes.BufferUsageUniform != 0 {
		flags |= vk.AccessFlags(vk.AccessUniformReadBit)
	}
	if usage&gputypes.BufferUsageStorage != 0 {
		flags |= vk.AccessFlags(vk.AccessShaderReadBit) | vk.AccessFlags(vk.AccessShaderWriteBit)
	}
	return flags
}

func bufferPipelineStages(usage gputypes.BufferUsage) vk.PipelineStageFlags {
	var stages vk.PipelineStageFlags
	if usage&(gputypes.BufferUsageMapRead|gputypes.BufferUsageMapWrite) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageHostBit)
	}
	if usage&(gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	}
	if usage&(gputypes.BufferUsageIndex|gputypes.BufferUsageVertex) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)
	}
	if usage&(gputypes.BufferUsageUniform|gputypes.BufferUsageStorage) != 0 {
		stages |= shaderStages
	}
	return stages
}

// bufferBarrierFor computes the dependency for a buffer going from one usage
// to another. ok is false when no barrier is needed: nothing was accessed
// before, or both sides are the same read-only usage.
func bufferBarrierFor(from, to gputypes.BufferUsage) (info barrierInfo, ok bool) {
	if from == 0 {
		return barrierInfo{}, false
	}
	if from == to && from&bufferWriteUsages == 0 {
		return barrierInfo{}, false
	}
	info.srcAccess = bufferAccessFlags(from)
	info.dstAccess = bufferAccessFlags(to)
	info.srcStages = bufferPipelineStages(from)
	info.dstStages = bufferPipelineStages(to)
	if info.dstStages == 0 {
		info.dstStages = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	return info, true
}

func textureAccessFlags(usage gputypes.TextureUsage, depthStencil bool) vk.AccessFlags {
	var flags vk.AccessFlags
	if usage&gputypes.TextureUsageCopySrc != 0 {
		flags |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if usage&gputypes.TextureUsageCopyDst != 0 {
		flags |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if usage&gputypes.TextureUsageTextureBinding != 0 {
		flags |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if usage&gputypes.TextureUsageStorageBinding != 0 {
		flags |= vk.AccessFlags(vk.AccessShaderReadBit) | vk.AccessFlags(vk.AccessShaderWriteBit)
	}
	if usage&gputypes.TextureUsageRenderAttachment != 0 {
		if depthStencil {
			flags |= vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) |
				vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
		} else {
			flags |= vk.AccessFlags(vk.AccessColorAttachmentReadBit) |
				vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
		}
	}
	return flags
}

func texturePipelineStages(usage gputypes.TextureUsage, depthStencil bool) vk.PipelineStageFlags {
	var stages vk.PipelineStageFlags
	if usage&(gputypes.TextureUsageCopySrc|gputypes.TextureUsageCopyDst) != 0 {
		stages |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	}
	if usage&(gputypes.TextureUsageTextureBinding|gputypes.TextureUsageStorageBinding) != 0 {
		stages |= shaderStages
	}
	if usage&gputypes.TextureUsageRenderAttachment != 0 {
		if depthStencil {
			stages |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) |
				vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit)
		} else {
			stages |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
		}
	}
	return stages
}

// textureLayout picks the image layout a usage expects. Copy sources stay in
// GENERAL, which is what CopyTextureToBuffer records against.
func textureLayout(usage gputypes.TextureUsage, depthStencil bool) vk.ImageLayout {
	switch usage {
	case 0:
		return vk.ImageLayoutUndefined
	case gputypes.TextureUsageCopySrc:
		return vk.ImageLayoutGeneral
	case gputypes.TextureUsageCopyDst:
		return vk.ImageLayoutTransferDstOptimal
	case gputypes.TextureUsageTextureBinding:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case gputypes.TextureUsageRenderAttachment:
		if depthStencil {
			return vk.ImageLayoutDepthStencilAttachmentOptimal
		}
		return vk.ImageLayoutColorAttachmentOptimal
	default:
		return vk.ImageLayoutGeneral
	}
}

// textureBarrierFor is the texture counterpart of bufferBarrierFor. A layout
// change always needs a barrier, even out of the undefined layout.
func textureBarrierFor(from, to gputypes.TextureUsage, depthStencil bool) (info barrierInfo, ok bool) {
	info.oldLayout = textureLayout(from, depthStencil)
	info.newLayout = textureLayout(to, depthStencil)
	if info.oldLayout == info.newLayout {
		if from == 0 {
			return barrierInfo{}, false
		}
		if from == to && from&textureWriteUsages == 0 {
			return barrierInfo{}, false
		}
	}
	info.srcAccess = textureAccessFlags(from, depthStencil)
	info.dstAccess = textureAccessFlags(to, depthStencil)
	info.srcStages = texturePipelineStages(from, depthStencil)
	if info.srcStages == 0 {
		info.srcStages = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	info.dstStages = texturePipelineStages(to, depthStencil)
	if info.dstStages == 0 {
		info.dstStages = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	return info, true
}
