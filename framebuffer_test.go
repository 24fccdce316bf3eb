package nxtvk

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestFramebufferClearValues(t *testing.T) {
	device, _, _ := newTestDevice(t)
	color := newTestTexture(t, device, 3, gputypes.TextureFormatBGRA8Unorm, 0)
	depth := newTestTexture(t, device, 4, gputypes.TextureFormatDepth24PlusStencil8, 0)

	framebuffer, err := NewFramebuffer(FramebufferDescriptor{
		Attachments: []FramebufferAttachment{
			{View: NewTextureView(color, nil), ClearColor: [4]float32{0.25, 0.5, 0.75, 1}},
			{View: NewTextureView(depth, nil), ClearDepth: 1, ClearStencil: 3},
		},
		Width:  4,
		Height: 4,
	})
	require.NoError(t, err)

	values := make([]vk.ClearValue, 2)
	framebuffer.FillClearValues(values)
	assert.Equal(t, vk.NewClearValue([]float32{0.25, 0.5, 0.75, 1}), values[0])
	assert.Equal(t, vk.NewClearDepthStencil(1, 3), values[1])
}

func TestFramebufferRejectsBadAttachments(t *testing.T) {
	device, _, _ := newTestDevice(t)
	color := newTestTexture(t, device, 3, gputypes.TextureFormatBGRA8Unorm, 0)

	attachments := make([]FramebufferAttachment, MaxColorAttachments+2)
	for i := range attachments {
		attachments[i].View = NewTextureView(color, nil)
	}
	_, err := NewFramebuffer(FramebufferDescriptor{Attachments: attachments, Label: "wide"})
	assert.Error(t, err)

	_, err = NewFramebuffer(FramebufferDescriptor{Attachments: []FramebufferAttachment{{}}, Label: "empty"})
	assert.Error(t, err)
}

func TestRenderPassDefaultsToOneSubpass(t *testing.T) {
	assert.Equal(t, uint32(1), NewRenderPass(RenderPassDescriptor{AttachmentCount: 1}).SubpassCount())
	assert.Equal(t, uint32(3), NewRenderPass(RenderPassDescriptor{SubpassCount: 3}).SubpassCount())
}
