package scenario

import (
	"fmt"

	"github.com/andewx/nxtvk"
	vk "github.com/vulkan-go/vulkan"
)

// Built is a scenario turned into backend objects backed by synthetic native
// handles.
type Built struct {
	Buffers     map[string]*nxtvk.Buffer
	Textures    map[string]*nxtvk.Texture
	BindGroups  map[string]*nxtvk.BindGroup
	Submissions []BuiltSubmission

	// bindGroupOrder keeps release order deterministic.
	bindGroupOrder []string
}

type BuiltSubmission struct {
	Name     string
	Commands *nxtvk.CommandBuffer
	Release  []*nxtvk.BindGroup
}

// ReleaseAll releases every bind group, in declaration order.
func (b *Built) ReleaseAll() {
	for _, name := range b.bindGroupOrder {
		b.BindGroups[name].Release()
	}
}

type builder struct {
	device *nxtvk.Device
	built  *Built

	views        map[string]*nxtvk.TextureView
	layouts      map[string]*nxtvk.BindGroupLayout
	pipelines    map[string]*nxtvk.RenderPipeline
	renderPasses map[string]*nxtvk.RenderPass
	framebuffers map[string]*nxtvk.Framebuffer
}

func lookup[T any](m map[string]T, kind, name string) (T, error) {
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", kind, name)
	}
	return v, nil
}

func define[T any](m map[string]T, kind, name string, v T) error {
	if name == "" {
		return fmt.Errorf("%s without a name", kind)
	}
	if _, ok := m[name]; ok {
		return fmt.Errorf("%s %q defined twice", kind, name)
	}
	m[name] = v
	return nil
}

// Build creates every resource of s on device and records its submissions.
// Bind groups are materialized immediately, so device must be ready to make
// native calls.
func Build(device *nxtvk.Device, s *Scenario) (*Built, error) {
	b := &builder{
		device: device,
		built: &Built{
			Buffers:    map[string]*nxtvk.Buffer{},
			Textures:   map[string]*nxtvk.Texture{},
			BindGroups: map[string]*nxtvk.BindGroup{},
		},
		views:        map[string]*nxtvk.TextureView{},
		layouts:      map[string]*nxtvk.BindGroupLayout{},
		pipelines:    map[string]*nxtvk.RenderPipeline{},
		renderPasses: map[string]*nxtvk.RenderPass{},
		framebuffers: map[string]*nxtvk.Framebuffer{},
	}

	steps := []func(*Scenario) error{
		b.buffers,
		b.textures,
		b.layoutsAndPipelines,
		b.bindGroups,
		b.passes,
		b.submissions,
	}
	for _, step := range steps {
		if err := step(s); err != nil {
			return nil, err
		}
	}
	return b.built, nil
}

func (b *builder) buffers(s *Scenario) error {
	for _, desc := range s.Buffers {
		usage, err := nxtvk.ParseBufferUsage(desc.Usage)
		if err != nil {
			return fmt.Errorf("buffer %q: %w", desc.Name, err)
		}
		buffer := nxtvk.NewBuffer(b.device, nxtvk.BufferDescriptor{
			Handle: vk.Buffer(nxtvk.NewSyntheticHandle()),
			Size:   desc.Size,
			Usage:  usage,
			Label:  desc.Name,
		})
		if err := define(b.built.Buffers, "buffer", desc.Name, buffer); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) textures(s *Scenario) error {
	for _, desc := range s.Textures {
		format, err := nxtvk.ParseTextureFormat(desc.Format)
		if err != nil {
			return fmt.Errorf("texture %q: %w", desc.Name, err)
		}
		usage, err := nxtvk.ParseTextureUsage(desc.Usage)
		if err != nil {
			return fmt.Errorf("texture %q: %w", desc.Name, err)
		}
		texture, err := nxtvk.NewTexture(b.device, nxtvk.TextureDescriptor{
			Handle: vk.Image(nxtvk.NewSyntheticHandle()),
			Format: format,
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  desc.Depth,
			Usage:  usage,
			Label:  desc.Name,
		})
		if err != nil {
			return err
		}
		if err := define(b.built.Textures, "texture", desc.Name, texture); err != nil {
			return err
		}
		b.views[desc.Name] = nxtvk.NewTextureView(texture, vk.ImageView(nxtvk.NewSyntheticHandle()))
	}
	return nil
}

func (b *builder) layoutsAndPipelines(s *Scenario) error {
	for _, desc := range s.Layouts {
		entries := make([]nxtvk.BindingLayoutEntry, 0, len(desc.Bindings))
		for _, binding := range desc.Bindings {
			bindingType, err := nxtvk.ParseBindingType(binding.Type)
			if err != nil {
				return fmt.Errorf("layout %q: %w", desc.Name, err)
			}
			entries = append(entries, nxtvk.BindingLayoutEntry{Binding: binding.Binding, Type: bindingType})
		}
		layout, err := nxtvk.NewBindGroupLayout(vk.DescriptorSetLayout(nxtvk.NewSyntheticHandle()), entries)
		if err != nil {
			return fmt.Errorf("layout %q: %w", desc.Name, err)
		}
		if err := define(b.layouts, "layout", desc.Name, layout); err != nil {
			return err
		}
	}

	for _, desc := range s.Pipelines {
		groups := make([]*nxtvk.BindGroupLayout, 0, len(desc.Layouts))
		for _, name := range desc.Layouts {
			layout, err := lookup(b.layouts, "layout", name)
			if err != nil {
				return fmt.Errorf("pipeline %q: %w", desc.Name, err)
			}
			groups = append(groups, layout)
		}
		pipelineLayout := nxtvk.NewPipelineLayout(vk.PipelineLayout(nxtvk.NewSyntheticHandle()), groups...)
		pipeline := nxtvk.NewRenderPipeline(vk.Pipeline(nxtvk.NewSyntheticHandle()), pipelineLayout, desc.Name)
		if err := define(b.pipelines, "pipeline", desc.Name, pipeline); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) bindGroups(s *Scenario) error {
	for _, desc := range s.BindGroups {
		layout, err := lookup(b.layouts, "layout", desc.Layout)
		if err != nil {
			return fmt.Errorf("bind group %q: %w", desc.Name, err)
		}
		entries := make([]nxtvk.BindGroupEntry, 0, len(desc.Entries))
		for _, e := range desc.Entries {
			resource, err := b.bindingResource(e)
			if err != nil {
				return fmt.Errorf("bind group %q: binding %d: %w", desc.Name, e.Binding, err)
			}
			entries = append(entries, nxtvk.BindGroupEntry{Binding: e.Binding, Resource: resource})
		}
		if desc.Name == "" {
			return fmt.Errorf("bind group without a name")
		}
		if _, ok := b.built.BindGroups[desc.Name]; ok {
			return fmt.Errorf("bind group %q defined twice", desc.Name)
		}
		group, err := nxtvk.NewBindGroup(b.device, nxtvk.BindGroupDescriptor{
			Layout:  layout,
			Entries: entries,
			Label:   desc.Name,
		})
		if err != nil {
			return err
		}
		b.built.BindGroups[desc.Name] = group
		b.built.bindGroupOrder = append(b.built.bindGroupOrder, desc.Name)
	}
	return nil
}

func (b *builder) bindingResource(e BindGroupEntry) (nxtvk.BindingResource, error) {
	switch {
	case e.Buffer != "" && e.Texture != "":
		return nil, fmt.Errorf("both buffer and texture given")
	case e.Buffer != "":
		buffer, err := lookup(b.built.Buffers, "buffer", e.Buffer)
		if err != nil {
			return nil, err
		}
		size := e.Size
		if size == 0 && e.Offset < buffer.Size() {
			size = buffer.Size() - e.Offset
		}
		return nxtvk.NewBufferView(buffer, e.Offset, size)
	case e.Texture != "":
		return lookup(b.views, "texture", e.Texture)
	}
	return nil, fmt.Errorf("no resource given")
}

func (b *builder) passes(s *Scenario) error {
	for _, desc := range s.RenderPasses {
		renderPass := nxtvk.NewRenderPass(nxtvk.RenderPassDescriptor{
			Handle:          vk.RenderPass(nxtvk.NewSyntheticHandle()),
			AttachmentCount: desc.Attachments,
			SubpassCount:    desc.Subpasses,
			Label:           desc.Name,
		})
		if err := define(b.renderPasses, "render pass", desc.Name, renderPass); err != nil {
			return err
		}
	}

	for _, desc := range s.Framebuffers {
		attachments := make([]nxtvk.FramebufferAttachment, 0, len(desc.Attachments))
		for _, a := range desc.Attachments {
			view, err := lookup(b.views, "texture", a.Texture)
			if err != nil {
				return fmt.Errorf("framebuffer %q: %w", desc.Name, err)
			}
			attachments = append(attachments, nxtvk.FramebufferAttachment{
				View:         view,
				ClearColor:   a.ClearColor,
				ClearDepth:   a.ClearDepth,
				ClearStencil: a.ClearStencil,
			})
		}
		framebuffer, err := nxtvk.NewFramebuffer(nxtvk.FramebufferDescriptor{
			Handle:      vk.Framebuffer(nxtvk.NewSyntheticHandle()),
			Attachments: attachments,
			Width:       desc.Width,
			Height:      desc.Height,
			Label:       desc.Name,
		})
		if err != nil {
			return err
		}
		if err := define(b.framebuffers, "framebuffer", desc.Name, framebuffer); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) submissions(s *Scenario) error {
	for i, desc := range s.Submissions {
		name := desc.Name
		if name == "" {
			name = fmt.Sprintf("submission-%d", i)
		}
		recorder := nxtvk.NewCommandRecorder()
		for j, cmd := range desc.Commands {
			record, err := b.command(cmd)
			if err != nil {
				return fmt.Errorf("%s: command %d (%s): %w", name, j, cmd.Op, err)
			}
			recorder.Record(record)
		}

		release := make([]*nxtvk.BindGroup, 0, len(desc.Release))
		for _, groupName := range desc.Release {
			group, err := lookup(b.built.BindGroups, "bind group", groupName)
			if err != nil {
				return fmt.Errorf("%s: release: %w", name, err)
			}
			release = append(release, group)
		}

		b.built.Submissions = append(b.built.Submissions, BuiltSubmission{
			Name:     name,
			Commands: nxtvk.NewCommandBuffer(b.device, recorder.Acquire(), name),
			Release:  release,
		})
	}
	return nil
}

func (b *builder) bufferLocation(l Location) (nxtvk.BufferCopyLocation, error) {
	buffer, err := lookup(b.built.Buffers, "buffer", l.Buffer)
	if err != nil {
		return nxtvk.BufferCopyLocation{}, err
	}
	return nxtvk.BufferCopyLocation{Buffer: buffer, Offset: l.Offset}, nil
}

func (b *builder) textureLocation(l Location) (nxtvk.TextureCopyLocation, error) {
	texture, err := lookup(b.built.Textures, "texture", l.Texture)
	if err != nil {
		return nxtvk.TextureCopyLocation{}, err
	}
	depth := l.Depth
	if depth == 0 {
		depth = 1
	}
	return nxtvk.TextureCopyLocation{
		Texture: texture,
		X:       l.X,
		Y:       l.Y,
		Z:       l.Z,
		Width:   l.Width,
		Height:  l.Height,
		Depth:   depth,
		Level:   l.Level,
	}, nil
}

func (b *builder) command(c Command) (nxtvk.CommandRecord, error) {
	op, err := nxtvk.ParseCommand(c.Op)
	if err != nil {
		return nil, err
	}

	switch op {
	case nxtvk.CommandCopyBufferToBuffer:
		src, err := b.bufferLocation(c.Src)
		if err != nil {
			return nil, err
		}
		dst, err := b.bufferLocation(c.Dst)
		if err != nil {
			return nil, err
		}
		return &nxtvk.CopyBufferToBufferCmd{Source: src, Destination: dst, Size: c.Size}, nil

	case nxtvk.CommandCopyBufferToTexture:
		src, err := b.bufferLocation(c.Src)
		if err != nil {
			return nil, err
		}
		dst, err := b.textureLocation(c.Dst)
		if err != nil {
			return nil, err
		}
		return &nxtvk.CopyBufferToTextureCmd{Source: src, Destination: dst, RowPitch: c.RowPitch}, nil

	case nxtvk.CommandCopyTextureToBuffer:
		src, err := b.textureLocation(c.Src)
		if err != nil {
			return nil, err
		}
		dst, err := b.bufferLocation(c.Dst)
		if err != nil {
			return nil, err
		}
		return &nxtvk.CopyTextureToBufferCmd{Source: src, Destination: dst, RowPitch: c.RowPitch}, nil

	case nxtvk.CommandBeginRenderPass:
		renderPass, err := lookup(b.renderPasses, "render pass", c.RenderPass)
		if err != nil {
			return nil, err
		}
		framebuffer, err := lookup(b.framebuffers, "framebuffer", c.Framebuffer)
		if err != nil {
			return nil, err
		}
		return &nxtvk.BeginRenderPassCmd{RenderPass: renderPass, Framebuffer: framebuffer}, nil

	case nxtvk.CommandBeginRenderSubpass:
		return &nxtvk.BeginRenderSubpassCmd{}, nil

	case nxtvk.CommandDrawArrays:
		return &nxtvk.DrawArraysCmd{
			VertexCount:   c.VertexCount,
			InstanceCount: instances(c.InstanceCount),
			FirstVertex:   c.FirstVertex,
			FirstInstance: c.FirstInstance,
		}, nil

	case nxtvk.CommandDrawElements:
		return &nxtvk.DrawElementsCmd{
			IndexCount:    c.IndexCount,
			InstanceCount: instances(c.InstanceCount),
			FirstIndex:    c.FirstIndex,
			FirstInstance: c.FirstInstance,
		}, nil

	case nxtvk.CommandEndRenderPass:
		return &nxtvk.EndRenderPassCmd{}, nil

	case nxtvk.CommandEndRenderSubpass:
		return &nxtvk.EndRenderSubpassCmd{}, nil

	case nxtvk.CommandSetBindGroup:
		group, err := lookup(b.built.BindGroups, "bind group", c.Group)
		if err != nil {
			return nil, err
		}
		return &nxtvk.SetBindGroupCmd{Index: c.Index, Group: group}, nil

	case nxtvk.CommandSetBlendColor:
		return &nxtvk.SetBlendColorCmd{R: c.Color[0], G: c.Color[1], B: c.Color[2], A: c.Color[3]}, nil

	case nxtvk.CommandSetIndexBuffer:
		buffer, err := lookup(b.built.Buffers, "buffer", c.Buffer)
		if err != nil {
			return nil, err
		}
		return &nxtvk.SetIndexBufferCmd{Buffer: buffer, Offset: c.Offset}, nil

	case nxtvk.CommandSetRenderPipeline:
		pipeline, err := lookup(b.pipelines, "pipeline", c.Pipeline)
		if err != nil {
			return nil, err
		}
		return &nxtvk.SetRenderPipelineCmd{Pipeline: pipeline}, nil

	case nxtvk.CommandSetStencilReference:
		return &nxtvk.SetStencilReferenceCmd{Reference: c.Reference}, nil

	case nxtvk.CommandSetVertexBuffers:
		if len(c.VertexBuffers) > nxtvk.MaxVertexInputs {
			return nil, fmt.Errorf("%d vertex buffers, at most %d allowed", len(c.VertexBuffers), nxtvk.MaxVertexInputs)
		}
		cmd := &nxtvk.SetVertexBuffersCmd{StartSlot: c.StartSlot, Count: uint32(len(c.VertexBuffers))}
		for i, vb := range c.VertexBuffers {
			buffer, err := lookup(b.built.Buffers, "buffer", vb.Buffer)
			if err != nil {
				return nil, err
			}
			cmd.Buffers[i] = buffer
			cmd.Offsets[i] = vb.Offset
		}
		return cmd, nil

	case nxtvk.CommandTransitionBufferUsage:
		buffer, err := lookup(b.built.Buffers, "buffer", c.Buffer)
		if err != nil {
			return nil, err
		}
		usage, err := nxtvk.ParseBufferUsage(c.Usage)
		if err != nil {
			return nil, err
		}
		return &nxtvk.TransitionBufferUsageCmd{Buffer: buffer, Usage: usage}, nil

	case nxtvk.CommandTransitionTextureUsage:
		texture, err := lookup(b.built.Textures, "texture", c.Texture)
		if err != nil {
			return nil, err
		}
		usage, err := nxtvk.ParseTextureUsage(c.Usage)
		if err != nil {
			return nil, err
		}
		return &nxtvk.TransitionTextureUsageCmd{Texture: texture, Usage: usage}, nil
	}
	return nil, fmt.Errorf("unsupported command %v", op)
}

// instances treats an omitted instance count as a single instance.
func instances(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	return n
}
