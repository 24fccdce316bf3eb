package nxtvk

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// MaxBindingsPerGroup bounds the binding indices of a bind group layout.
const MaxBindingsPerGroup = 16

// BindingType is the kind of resource a layout declares at one binding index.
type BindingType uint32

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeStorageBuffer
	BindingTypeSampler
	BindingTypeSampledTexture

	bindingTypeCount
)

func (t BindingType) String() string {
	switch t {
	case BindingTypeUniformBuffer:
		return "uniform-buffer"
	case BindingTypeStorageBuffer:
		return "storage-buffer"
	case BindingTypeSampler:
		return "sampler"
	case BindingTypeSampledTexture:
		return "sampled-texture"
	default:
		return fmt.Sprintf("BindingType(%d)", uint32(t))
	}
}

// ParseBindingType accepts the names printed by BindingType.String and the
// short forms "uniform" and "storage".
func ParseBindingType(s string) (BindingType, error) {
	switch s {
	case "uniform", "uniform-buffer":
		return BindingTypeUniformBuffer, nil
	case "storage", "storage-buffer":
		return BindingTypeStorageBuffer, nil
	case "sampler":
		return BindingTypeSampler, nil
	case "sampled-texture", "texture":
		return BindingTypeSampledTexture, nil
	}
	return 0, fmt.Errorf("unknown binding type %q", s)
}

func vulkanDescriptorType(t BindingType) vk.DescriptorType {
	switch t {
	case BindingTypeUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	case BindingTypeStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	case BindingTypeSampler:
		return vk.DescriptorTypeSampler
	default:
		return vk.DescriptorTypeSampledImage
	}
}

// BindingLayoutEntry declares one binding of a layout.
type BindingLayoutEntry struct {
	Binding uint32
	Type    BindingType
}

// BindGroupLayout is the backend side of a descriptor set layout: which
// binding indices are occupied and with what kind.
type BindGroupLayout struct {
	handle vk.DescriptorSetLayout
	mask   uint32
	types  [MaxBindingsPerGroup]BindingType
}

// NewBindGroupLayout wraps a native descriptor set layout created from the
// same entries.
func NewBindGroupLayout(handle vk.DescriptorSetLayout, entries []BindingLayoutEntry) (*BindGroupLayout, error) {
	l := &BindGroupLayout{handle: handle}
	for _, e := range entries {
		if e.Binding >= MaxBindingsPerGroup {
			return nil, fmt.Errorf("binding %d exceeds the maximum of %d", e.Binding, MaxBindingsPerGroup)
		}
		if e.Type >= bindingTypeCount {
			return nil, fmt.Errorf("binding %d: invalid type %v", e.Binding, e.Type)
		}
		if l.mask&(1<<e.Binding) != 0 {
			return nil, fmt.Errorf("binding %d declared twice", e.Binding)
		}
		l.mask |= 1 << e.Binding
		l.types[e.Binding] = e.Type
	}
	return l, nil
}

func (l *BindGroupLayout) Handle() vk.DescriptorSetLayout {
	return l.handle
}

// Mask has bit i set when binding i is occupied.
func (l *BindGroupLayout) Mask() uint32 {
	return l.mask
}

func (l *BindGroupLayout) BindingType(binding uint32) BindingType {
	return l.types[binding]
}

// ComputePoolSizes totals the descriptors per native type. Only the first
// count entries are meaningful.
func (l *BindGroupLayout) ComputePoolSizes() (sizes [bindingTypeCount]vk.DescriptorPoolSize, count uint32) {
	var totals [bindingTypeCount]uint32
	for binding := range IterateBitSet(l.mask) {
		totals[l.types[binding]]++
	}
	for t, total := range totals {
		if total == 0 {
			continue
		}
		sizes[count] = vk.DescriptorPoolSize{
			Type:            vulkanDescriptorType(BindingType(t)),
			DescriptorCount: total,
		}
		count++
	}
	return sizes, count
}

// BindingResource is anything that can be bound at a layout index:
// *BufferView or *TextureView.
type BindingResource interface {
	bindingResource()
}

type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

type BindGroupDescriptor struct {
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
	Label   string
}

// BindGroup is one descriptor set materialized from a layout and its bound
// resources. It owns a descriptor pool dedicated to that single set.
type BindGroup struct {
	device   *Device
	layout   *BindGroupLayout
	bindings [MaxBindingsPerGroup]BindingResource
	pool     vk.DescriptorPool
	handle   vk.DescriptorSet
	label    string
}

// NewBindGroup creates the pool, allocates the set and writes every occupied
// binding in ascending order. Native failures and unsupported binding kinds
// go to the device's fatal handler; the error is only returned when that
// handler returns.
func NewBindGroup(device *Device, desc BindGroupDescriptor) (*BindGroup, error) {
	g := &BindGroup{
		device: device,
		layout: desc.Layout,
		label:  desc.Label,
	}
	for _, e := range desc.Entries {
		if e.Binding >= MaxBindingsPerGroup || desc.Layout.mask&(1<<e.Binding) == 0 {
			return nil, device.fatal(structuralf("bind group %q: binding %d is not in the layout", desc.Label, e.Binding))
		}
		g.bindings[e.Binding] = e.Resource
	}

	poolSizes, numPoolSizes := desc.Layout.ComputePoolSizes()
	pool, err := newDescriptorPool(device, poolSizes[:numPoolSizes])
	if err != nil {
		return nil, device.fatal(err)
	}
	g.pool = pool

	set, err := allocateDescriptorSet(device, pool, desc.Layout.handle)
	if err != nil {
		device.fn.DestroyDescriptorPool(device.handle, pool)
		return nil, device.fatal(err)
	}
	g.handle = set

	var numWrites int
	var writes [MaxBindingsPerGroup]vk.WriteDescriptorSet
	var writeBufferInfo [MaxBindingsPerGroup]vk.DescriptorBufferInfo

	for bindingIndex := range IterateBitSet(desc.Layout.mask) {
		bindingType := desc.Layout.types[bindingIndex]

		write := &writes[numWrites]
		write.SType = vk.StructureTypeWriteDescriptorSet
		write.PNext = nil
		write.DstSet = set
		write.DstBinding = bindingIndex
		write.DstArrayElement = 0
		write.DescriptorCount = 1
		write.DescriptorType = vulkanDescriptorType(bindingType)

		switch bindingType {
		case BindingTypeUniformBuffer, BindingTypeStorageBuffer:
			view, ok := g.bindings[bindingIndex].(*BufferView)
			if !ok {
				device.fn.DestroyDescriptorPool(device.handle, pool)
				return nil, device.fatal(structuralf("bind group %q: binding %d needs a buffer view, got %T",
					desc.Label, bindingIndex, g.bindings[bindingIndex]))
			}
			writeBufferInfo[numWrites].Buffer = view.Buffer().Handle()
			writeBufferInfo[numWrites].Offset = vk.DeviceSize(view.Offset())
			writeBufferInfo[numWrites].Range = vk.DeviceSize(view.Size())

			write.PBufferInfo = writeBufferInfo[numWrites : numWrites+1]

		default:
			device.fn.DestroyDescriptorPool(device.handle, pool)
			return nil, device.fatal(structuralf("bind group %q: binding %d: %v bindings are not supported",
				desc.Label, bindingIndex, bindingType))
		}

		numWrites++
	}

	device.fn.UpdateDescriptorSets(device.handle, writes[:numWrites])
	device.logger.Debug("bind group created", "label", desc.Label, "writes", numWrites)
	return g, nil
}

// Handle is the descriptor set, or nil once the group was released.
func (g *BindGroup) Handle() vk.DescriptorSet {
	return g.handle
}

func (g *BindGroup) Layout() *BindGroupLayout {
	return g.layout
}

func (g *BindGroup) Label() string {
	return g.label
}

// Release drops the descriptor set and hands the pool to the device's fenced
// deleter. The set itself is freed implicitly with its pool. Calling Release
// twice is harmless.
func (g *BindGroup) Release() {
	g.handle = nil

	if g.pool != nil {
		g.device.deleter.DeleteWhenUnused(g.pool)
		g.pool = nil
		g.device.logger.Debug("bind group released", "label", g.label)
	}
}
