package nxtvk

import (
	"github.com/gogpu/gputypes"
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer is a recorded command stream waiting to be replayed into a
// native command buffer.
type CommandBuffer struct {
	device   *Device
	commands *CommandIterator
	label    string
}

func NewCommandBuffer(device *Device, commands *CommandIterator, label string) *CommandBuffer {
	return &CommandBuffer{device: device, commands: commands, label: label}
}

func (c *CommandBuffer) Label() string {
	return c.label
}

// RecordCommands replays the stream into commands. A stream can be replayed
// only once. Structural violations go to the device's fatal handler and stop
// the replay.
func (c *CommandBuffer) RecordCommands(commands vk.CommandBuffer) error {
	if c.commands.consumed {
		return c.device.fatal(structuralf("command buffer %q replayed twice", c.label))
	}
	c.commands.consumed = true

	r := &replayState{
		device:   c.device,
		fn:       c.device.fn,
		commands: commands,
	}
	for {
		id, ok := c.commands.NextCommandID()
		if !ok {
			break
		}
		if err := r.execute(id, c.commands); err != nil {
			c.device.logger.Warn("replay aborted", "commandBuffer", c.label, "command", id, "err", err)
			return c.device.fatal(err)
		}
	}
	return nil
}

// replayState is what one replay carries from command to command.
type replayState struct {
	device   *Device
	fn       Functions
	commands vk.CommandBuffer

	// lastPipeline is nil until the first SetRenderPipeline.
	lastPipeline *RenderPipeline
}

func (r *replayState) execute(id Command, it *CommandIterator) error {
	switch id {
	case CommandCopyBufferToBuffer:
		cmd, err := nextCommand[*CopyBufferToBufferCmd](it)
		if err != nil {
			return err
		}
		r.copyBufferToBuffer(cmd)

	case CommandCopyBufferToTexture:
		cmd, err := nextCommand[*CopyBufferToTextureCmd](it)
		if err != nil {
			return err
		}
		r.copyBufferToTexture(cmd)

	case CommandCopyTextureToBuffer:
		cmd, err := nextCommand[*CopyTextureToBufferCmd](it)
		if err != nil {
			return err
		}
		r.copyTextureToBuffer(cmd)

	case CommandBeginRenderPass:
		cmd, err := nextCommand[*BeginRenderPassCmd](it)
		if err != nil {
			return err
		}
		return r.beginRenderPass(cmd)

	case CommandBeginRenderSubpass:
		if _, err := nextCommand[*BeginRenderSubpassCmd](it); err != nil {
			return err
		}
		// The single subpass was begun with the pass.
		r.fn.CmdSetBlendConstants(r.commands, [4]float32{0, 0, 0, 0})

	case CommandDrawArrays:
		cmd, err := nextCommand[*DrawArraysCmd](it)
		if err != nil {
			return err
		}
		r.fn.CmdDraw(r.commands, cmd.VertexCount, cmd.InstanceCount, cmd.FirstVertex, cmd.FirstInstance)

	case CommandDrawElements:
		cmd, err := nextCommand[*DrawElementsCmd](it)
		if err != nil {
			return err
		}
		r.fn.CmdDrawIndexed(r.commands, cmd.IndexCount, cmd.InstanceCount, cmd.FirstIndex, 0, cmd.FirstInstance)

	case CommandEndRenderPass:
		if _, err := nextCommand[*EndRenderPassCmd](it); err != nil {
			return err
		}
		r.fn.CmdEndRenderPass(r.commands)

	case CommandEndRenderSubpass:
		if _, err := nextCommand[*EndRenderSubpassCmd](it); err != nil {
			return err
		}

	case CommandSetBindGroup:
		cmd, err := nextCommand[*SetBindGroupCmd](it)
		if err != nil {
			return err
		}
		return r.setBindGroup(cmd)

	case CommandSetBlendColor:
		cmd, err := nextCommand[*SetBlendColorCmd](it)
		if err != nil {
			return err
		}
		r.fn.CmdSetBlendConstants(r.commands, [4]float32{cmd.R, cmd.G, cmd.B, cmd.A})

	case CommandSetIndexBuffer:
		cmd, err := nextCommand[*SetIndexBufferCmd](it)
		if err != nil {
			return err
		}
		if cmd.Buffer == nil {
			return structuralf("index buffer is nil")
		}
		r.fn.CmdBindIndexBuffer(r.commands, cmd.Buffer.Handle(), vk.DeviceSize(cmd.Offset), vk.IndexTypeUint16)

	case CommandSetRenderPipeline:
		cmd, err := nextCommand[*SetRenderPipelineCmd](it)
		if err != nil {
			return err
		}
		r.fn.CmdBindPipeline(r.commands, vk.PipelineBindPointGraphics, cmd.Pipeline.Handle())
		r.lastPipeline = cmd.Pipeline

	case CommandSetStencilReference:
		cmd, err := nextCommand[*SetStencilReferenceCmd](it)
		if err != nil {
			return err
		}
		r.fn.CmdSetStencilReference(r.commands, stencilFrontAndBack, cmd.Reference)

	case CommandSetVertexBuffers:
		cmd, err := nextCommand[*SetVertexBuffersCmd](it)
		if err != nil {
			return err
		}
		return r.setVertexBuffers(cmd)

	case CommandTransitionBufferUsage:
		cmd, err := nextCommand[*TransitionBufferUsageCmd](it)
		if err != nil {
			return err
		}
		cmd.Buffer.TransitionUsage(r.commands, cmd.Usage)

	case CommandTransitionTextureUsage:
		cmd, err := nextCommand[*TransitionTextureUsageCmd](it)
		if err != nil {
			return err
		}
		cmd.Texture.TransitionUsage(r.commands, cmd.Usage)

	default:
		return structuralf("unknown command %v", id)
	}
	return nil
}

const stencilFrontAndBack = vk.StencilFaceFlags(vk.StencilFaceFrontBit) | vk.StencilFaceFlags(vk.StencilFaceBackBit)

// computeBufferImageCopyRegion builds the native region for a copy between a
// buffer with the given row pitch and a texture rectangle. The image height
// is rowPitch * height, matching the layout the command producers assume.
func computeBufferImageCopyRegion(rowPitch uint32, buffer BufferCopyLocation, texture TextureCopyLocation) vk.BufferImageCopy {
	t := texture.Texture

	region := vk.BufferImageCopy{}
	region.BufferOffset = vk.DeviceSize(buffer.Offset)
	region.BufferRowLength = rowPitch / t.format.texelSize
	region.BufferImageHeight = rowPitch * texture.Height

	region.ImageSubresource.AspectMask = t.AspectMask()
	region.ImageSubresource.MipLevel = texture.Level
	region.ImageSubresource.BaseArrayLayer = 0
	region.ImageSubresource.LayerCount = 1

	region.ImageOffset.X = int32(texture.X)
	region.ImageOffset.Y = int32(texture.Y)
	region.ImageOffset.Z = int32(texture.Z)

	region.ImageExtent.Width = texture.Width
	region.ImageExtent.Height = texture.Height
	region.ImageExtent.Depth = texture.Depth
	return region
}

func (r *replayState) copyBufferToBuffer(cmd *CopyBufferToBufferCmd) {
	region := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(cmd.Source.Offset),
		DstOffset: vk.DeviceSize(cmd.Destination.Offset),
		Size:      vk.DeviceSize(cmd.Size),
	}
	r.fn.CmdCopyBuffer(r.commands, cmd.Source.Buffer.Handle(), cmd.Destination.Buffer.Handle(),
		[]vk.BufferCopy{region})
}

// The destination is expected to be in CopyDst usage already.
func (r *replayState) copyBufferToTexture(cmd *CopyBufferToTextureCmd) {
	region := computeBufferImageCopyRegion(cmd.RowPitch, cmd.Source, cmd.Destination)
	r.fn.CmdCopyBufferToImage(r.commands, cmd.Source.Buffer.Handle(), cmd.Destination.Texture.Handle(),
		vk.ImageLayoutTransferDstOptimal, []vk.BufferImageCopy{region})
}

// The source is expected to be in CopySrc usage, which keeps it GENERAL.
func (r *replayState) copyTextureToBuffer(cmd *CopyTextureToBufferCmd) {
	region := computeBufferImageCopyRegion(cmd.RowPitch, cmd.Destination, cmd.Source)
	r.fn.CmdCopyImageToBuffer(r.commands, cmd.Source.Texture.Handle(), vk.ImageLayoutGeneral,
		cmd.Destination.Buffer.Handle(), []vk.BufferImageCopy{region})
}

func (r *replayState) beginRenderPass(cmd *BeginRenderPassCmd) error {
	renderPass := cmd.RenderPass
	framebuffer := cmd.Framebuffer

	if renderPass.SubpassCount() != 1 {
		return structuralf("render pass %q has %d subpasses, only 1 is supported",
			renderPass.Label(), renderPass.SubpassCount())
	}
	attachmentCount := renderPass.AttachmentCount()
	if attachmentCount > MaxColorAttachments+1 {
		return structuralf("render pass %q has %d attachments, at most %d are supported",
			renderPass.Label(), attachmentCount, MaxColorAttachments+1)
	}
	if framebuffer.AttachmentCount() < attachmentCount {
		return structuralf("framebuffer %q has %d attachments, render pass %q needs %d",
			framebuffer.Label(), framebuffer.AttachmentCount(), renderPass.Label(), attachmentCount)
	}

	// Entering the pass promotes every attachment that is not used as one yet.
	for i := uint32(0); i < attachmentCount; i++ {
		texture := framebuffer.TextureView(i).Texture()
		if texture.CurrentUsage()&gputypes.TextureUsageRenderAttachment == 0 {
			texture.TransitionUsage(r.commands, gputypes.TextureUsageRenderAttachment)
		}
	}

	var clearValues [MaxColorAttachments + 1]vk.ClearValue
	framebuffer.FillClearValues(clearValues[:])

	width, height := framebuffer.Width(), framebuffer.Height()

	beginInfo := vk.RenderPassBeginInfo{}
	beginInfo.SType = vk.StructureTypeRenderPassBeginInfo
	beginInfo.PNext = nil
	beginInfo.RenderPass = renderPass.Handle()
	beginInfo.Framebuffer = framebuffer.Handle()
	beginInfo.RenderArea = vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	beginInfo.ClearValueCount = attachmentCount
	beginInfo.PClearValues = clearValues[:attachmentCount]

	r.fn.CmdBeginRenderPass(r.commands, &beginInfo, vk.SubpassContentsInline)

	// Default dynamic state, whatever the pipeline declares.
	r.fn.CmdSetLineWidth(r.commands, 1.0)
	r.fn.CmdSetDepthBounds(r.commands, 0.0, 1.0)
	r.fn.CmdSetStencilReference(r.commands, stencilFrontAndBack, 0)

	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	r.fn.CmdSetViewport(r.commands, 0, []vk.Viewport{viewport})

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	r.fn.CmdSetScissor(r.commands, 0, []vk.Rect2D{scissor})
	return nil
}

func (r *replayState) setBindGroup(cmd *SetBindGroupCmd) error {
	if r.lastPipeline == nil {
		return structuralf("bind group %q set at index %d before any render pipeline", cmd.Group.Label(), cmd.Index)
	}
	set := cmd.Group.Handle()
	if set == nil {
		return structuralf("bind group %q used after release", cmd.Group.Label())
	}
	r.fn.CmdBindDescriptorSets(r.commands, vk.PipelineBindPointGraphics,
		r.lastPipeline.Layout().Handle(), cmd.Index, []vk.DescriptorSet{set})
	return nil
}

func (r *replayState) setVertexBuffers(cmd *SetVertexBuffersCmd) error {
	if cmd.Count > MaxVertexInputs || cmd.StartSlot+cmd.Count > MaxVertexInputs {
		return structuralf("vertex buffers [%d, %d) exceed %d slots", cmd.StartSlot, cmd.StartSlot+cmd.Count, MaxVertexInputs)
	}

	var buffers [MaxVertexInputs]vk.Buffer
	var offsets [MaxVertexInputs]vk.DeviceSize
	for i := uint32(0); i < cmd.Count; i++ {
		if cmd.Buffers[i] == nil {
			return structuralf("vertex buffer for slot %d is nil", cmd.StartSlot+i)
		}
		buffers[i] = cmd.Buffers[i].Handle()
		offsets[i] = vk.DeviceSize(cmd.Offsets[i])
	}
	r.fn.CmdBindVertexBuffers(r.commands, cmd.StartSlot, buffers[:cmd.Count], offsets[:cmd.Count])
	return nil
}
