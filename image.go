package nxtvk

import (
	"fmt"

	"github.com/gogpu/gputypes"
	vk "github.com/vulkan-go/vulkan"
)

type textureFormatInfo struct {
	name         string
	format       gputypes.TextureFormat
	vkFormat     vk.Format
	texelSize    uint32
	depthStencil bool
}

var textureFormats = []textureFormatInfo{
	{"rgba8unorm", gputypes.TextureFormatRGBA8Unorm, vk.FormatR8g8b8a8Unorm, 4, false},
	{"bgra8unorm", gputypes.TextureFormatBGRA8Unorm, vk.FormatB8g8r8a8Unorm, 4, false},
	{"r8unorm", gputypes.TextureFormatR8Unorm, vk.FormatR8Unorm, 1, false},
	{"depth24plus-stencil8", gputypes.TextureFormatDepth24PlusStencil8, vk.FormatD24UnormS8Uint, 4, true},
}

func lookupTextureFormat(format gputypes.TextureFormat) (textureFormatInfo, bool) {
	for _, info := range textureFormats {
		if info.format == format {
			return info, true
		}
	}
	return textureFormatInfo{}, false
}

// ParseTextureFormat maps a lower-case WebGPU style format name to its format.
func ParseTextureFormat(name string) (gputypes.TextureFormat, error) {
	for _, info := range textureFormats {
		if info.name == name {
			return info.format, nil
		}
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("unsupported texture format %q", name)
}

// TextureFormatPixelSize is the size in bytes of one texel of format, or 0
// for unsupported formats.
func TextureFormatPixelSize(format gputypes.TextureFormat) uint32 {
	info, _ := lookupTextureFormat(format)
	return info.texelSize
}

// VulkanImageFormat returns the native format for format.
func VulkanImageFormat(format gputypes.TextureFormat) vk.Format {
	info, _ := lookupTextureFormat(format)
	return info.vkFormat
}

// TextureDescriptor describes a native image created outside the backend.
type TextureDescriptor struct {
	Handle vk.Image
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Depth  uint32
	Usage  gputypes.TextureUsage
	Label  string
}

// Texture wraps a native image and tracks its current usage, which also
// determines its image layout.
type Texture struct {
	usageTracker[gputypes.TextureUsage]

	device *Device
	handle vk.Image
	format textureFormatInfo
	width  uint32
	height uint32
	depth  uint32
	label  string
}

func NewTexture(device *Device, desc TextureDescriptor) (*Texture, error) {
	info, ok := lookupTextureFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("texture %q: unsupported format %v", desc.Label, desc.Format)
	}
	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}
	t := &Texture{
		device: device,
		handle: desc.Handle,
		format: info,
		width:  desc.Width,
		height: desc.Height,
		depth:  depth,
		label:  desc.Label,
	}
	t.usage = desc.Usage
	return t, nil
}

func (t *Texture) Handle() vk.Image {
	return t.handle
}

func (t *Texture) Format() gputypes.TextureFormat {
	return t.format.format
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

func (t *Texture) Label() string {
	return t.label
}

// AspectMask is the image aspect covered by copies and barriers.
func (t *Texture) AspectMask() vk.ImageAspectFlags {
	if t.format.depthStencil {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit) | vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

// EmitBarrier records the memory dependency and layout transition needed to
// go from "from" to "to". It records nothing when none is needed.
func (t *Texture) EmitBarrier(commands vk.CommandBuffer, from, to gputypes.TextureUsage) {
	info, ok := textureBarrierFor(from, to, t.format.depthStencil)
	if !ok {
		return
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       info.srcAccess,
		DstAccessMask:       info.dstAccess,
		OldLayout:           info.oldLayout,
		NewLayout:           info.newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               t.handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     t.AspectMask(),
			BaseMipLevel:   0,
			LevelCount:     vk.RemainingMipLevels,
			BaseArrayLayer: 0,
			LayerCount:     vk.RemainingArrayLayers,
		},
	}

	t.device.logger.Debug("texture barrier", "texture", t.label, "from", from, "to", to,
		"oldLayout", info.oldLayout, "newLayout", info.newLayout)
	t.device.fn.CmdPipelineBarrier(commands, info.srcStages, info.dstStages,
		nil, []vk.ImageMemoryBarrier{barrier})
}

// TransitionUsage emits the barrier from the current usage to "to" and then
// commits "to".
func (t *Texture) TransitionUsage(commands vk.CommandBuffer, to gputypes.TextureUsage) {
	t.EmitBarrier(commands, t.CurrentUsage(), to)
	t.CommitUsage(to)
}

// TextureView is an image view over a whole texture.
type TextureView struct {
	texture *Texture
	handle  vk.ImageView
}

func NewTextureView(texture *Texture, handle vk.ImageView) *TextureView {
	return &TextureView{texture: texture, handle: handle}
}

func (v *TextureView) Texture() *Texture {
	return v.texture
}

func (v *TextureView) Handle() vk.ImageView {
	return v.handle
}

func (*TextureView) bindingResource() {}
