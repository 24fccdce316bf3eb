package nxtvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// MaxColorAttachments is the number of color attachments a render pass may
// use in addition to one depth/stencil attachment.
const MaxColorAttachments = 4

// RenderPass wraps a native render pass together with the shape the
// interpreter checks before beginning it.
type RenderPass struct {
	handle          vk.RenderPass
	attachmentCount uint32
	subpassCount    uint32
	label           string
}

type RenderPassDescriptor struct {
	Handle          vk.RenderPass
	AttachmentCount uint32
	// SubpassCount must be 1 for the pass to be replayable. Zero means 1.
	SubpassCount uint32
	Label        string
}

func NewRenderPass(desc RenderPassDescriptor) *RenderPass {
	subpasses := desc.SubpassCount
	if subpasses == 0 {
		subpasses = 1
	}
	return &RenderPass{
		handle:          desc.Handle,
		attachmentCount: desc.AttachmentCount,
		subpassCount:    subpasses,
		label:           desc.Label,
	}
}

func (r *RenderPass) Handle() vk.RenderPass {
	return r.handle
}

func (r *RenderPass) AttachmentCount() uint32 {
	return r.attachmentCount
}

func (r *RenderPass) SubpassCount() uint32 {
	return r.subpassCount
}

func (r *RenderPass) Label() string {
	return r.label
}
