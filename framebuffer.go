package nxtvk

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// FramebufferAttachment is one attachment view plus the value it is cleared
// to when a render pass begins. Color attachments use ClearColor, depth and
// stencil attachments use ClearDepth and ClearStencil.
type FramebufferAttachment struct {
	View         *TextureView
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil uint32
}

type FramebufferDescriptor struct {
	Handle      vk.Framebuffer
	Attachments []FramebufferAttachment
	Width       uint32
	Height      uint32
	Label       string
}

// Framebuffer is the set of attachments a render pass renders into.
type Framebuffer struct {
	handle      vk.Framebuffer
	attachments []FramebufferAttachment
	width       uint32
	height      uint32
	label       string
}

func NewFramebuffer(desc FramebufferDescriptor) (*Framebuffer, error) {
	if len(desc.Attachments) > MaxColorAttachments+1 {
		return nil, fmt.Errorf("framebuffer %q: %d attachments, at most %d allowed",
			desc.Label, len(desc.Attachments), MaxColorAttachments+1)
	}
	for i, a := range desc.Attachments {
		if a.View == nil {
			return nil, fmt.Errorf("framebuffer %q: attachment %d has no view", desc.Label, i)
		}
	}
	return &Framebuffer{
		handle:      desc.Handle,
		attachments: append([]FramebufferAttachment(nil), desc.Attachments...),
		width:       desc.Width,
		height:      desc.Height,
		label:       desc.Label,
	}, nil
}

func (f *Framebuffer) Handle() vk.Framebuffer {
	return f.handle
}

func (f *Framebuffer) AttachmentCount() uint32 {
	return uint32(len(f.attachments))
}

// TextureView returns the view of attachment i.
func (f *Framebuffer) TextureView(i uint32) *TextureView {
	return f.attachments[i].View
}

func (f *Framebuffer) Width() uint32 {
	return f.width
}

func (f *Framebuffer) Height() uint32 {
	return f.height
}

func (f *Framebuffer) Label() string {
	return f.label
}

// FillClearValues writes one clear value per attachment into values, which
// must hold at least AttachmentCount entries.
func (f *Framebuffer) FillClearValues(values []vk.ClearValue) {
	for i, a := range f.attachments {
		if a.View.Texture().format.depthStencil {
			values[i] = vk.NewClearDepthStencil(a.ClearDepth, a.ClearStencil)
		} else {
			values[i] = vk.NewClearValue(a.ClearColor[:])
		}
	}
}
