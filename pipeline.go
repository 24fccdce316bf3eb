package nxtvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineLayout wraps the native layout descriptor sets are bound against.
type PipelineLayout struct {
	handle     vk.PipelineLayout
	bindGroups []*BindGroupLayout
}

// NewPipelineLayout records which bind group layout sits at each set index.
func NewPipelineLayout(handle vk.PipelineLayout, bindGroups ...*BindGroupLayout) *PipelineLayout {
	return &PipelineLayout{handle: handle, bindGroups: bindGroups}
}

func (l *PipelineLayout) Handle() vk.PipelineLayout {
	return l.handle
}

// BindGroupLayout returns the layout at set index, or nil when the pipeline
// layout does not declare one.
func (l *PipelineLayout) BindGroupLayout(index uint32) *BindGroupLayout {
	if int(index) >= len(l.bindGroups) {
		return nil
	}
	return l.bindGroups[index]
}

// RenderPipeline is a graphics pipeline together with its layout.
type RenderPipeline struct {
	handle vk.Pipeline
	layout *PipelineLayout
	label  string
}

func NewRenderPipeline(handle vk.Pipeline, layout *PipelineLayout, label string) *RenderPipeline {
	return &RenderPipeline{handle: handle, layout: layout, label: label}
}

func (p *RenderPipeline) Handle() vk.Pipeline {
	return p.handle
}

func (p *RenderPipeline) Layout() *PipelineLayout {
	return p.layout
}

func (p *RenderPipeline) Label() string {
	return p.label
}
