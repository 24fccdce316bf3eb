// Package scenario loads replay scenarios: a set of resources and one or more
// command lists, described in YAML, that the vkreplay tool turns into command
// streams.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Name         string        `yaml:"name"`
	Buffers      []Buffer      `yaml:"buffers"`
	Textures     []Texture     `yaml:"textures"`
	Layouts      []Layout      `yaml:"layouts"`
	BindGroups   []BindGroup   `yaml:"bind_groups"`
	Pipelines    []Pipeline    `yaml:"pipelines"`
	RenderPasses []RenderPass  `yaml:"render_passes"`
	Framebuffers []Framebuffer `yaml:"framebuffers"`
	Submissions  []Submission  `yaml:"submissions"`
}

type Buffer struct {
	Name  string `yaml:"name"`
	Size  uint64 `yaml:"size"`
	Usage string `yaml:"usage"`
}

type Texture struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	Depth  uint32 `yaml:"depth"`
	Usage  string `yaml:"usage"`
}

type Layout struct {
	Name     string          `yaml:"name"`
	Bindings []LayoutBinding `yaml:"bindings"`
}

type LayoutBinding struct {
	Binding uint32 `yaml:"binding"`
	Type    string `yaml:"type"`
}

type BindGroup struct {
	Name    string           `yaml:"name"`
	Layout  string           `yaml:"layout"`
	Entries []BindGroupEntry `yaml:"entries"`
}

// BindGroupEntry binds either a buffer range or a whole texture.
type BindGroupEntry struct {
	Binding uint32 `yaml:"binding"`
	Buffer  string `yaml:"buffer"`
	Offset  uint64 `yaml:"offset"`
	Size    uint64 `yaml:"size"`
	Texture string `yaml:"texture"`
}

type Pipeline struct {
	Name    string   `yaml:"name"`
	Layouts []string `yaml:"layouts"`
}

type RenderPass struct {
	Name        string `yaml:"name"`
	Attachments uint32 `yaml:"attachments"`
	Subpasses   uint32 `yaml:"subpasses"`
}

type Framebuffer struct {
	Name        string       `yaml:"name"`
	Width       uint32       `yaml:"width"`
	Height      uint32       `yaml:"height"`
	Attachments []Attachment `yaml:"attachments"`
}

type Attachment struct {
	Texture      string     `yaml:"texture"`
	ClearColor   [4]float32 `yaml:"clear_color"`
	ClearDepth   float32    `yaml:"clear_depth"`
	ClearStencil uint32     `yaml:"clear_stencil"`
}

// Submission is one command list, replayed and submitted as a unit.
type Submission struct {
	Name     string    `yaml:"name"`
	Commands []Command `yaml:"commands"`
	// Release names bind groups released after this submission.
	Release []string `yaml:"release"`
}

// Location is either side of a copy. Buffer locations use Buffer and Offset,
// texture locations use Texture and the rectangle fields.
type Location struct {
	Buffer  string `yaml:"buffer"`
	Offset  uint64 `yaml:"offset"`
	Texture string `yaml:"texture"`
	X       uint32 `yaml:"x"`
	Y       uint32 `yaml:"y"`
	Z       uint32 `yaml:"z"`
	Width   uint32 `yaml:"width"`
	Height  uint32 `yaml:"height"`
	Depth   uint32 `yaml:"depth"`
	Level   uint32 `yaml:"level"`
}

type VertexBuffer struct {
	Buffer string `yaml:"buffer"`
	Offset uint64 `yaml:"offset"`
}

// Command is one entry of a command list. Op is a command name such as
// "DrawArrays"; only the fields that command uses are read.
type Command struct {
	Op string `yaml:"op"`

	Src      Location `yaml:"src"`
	Dst      Location `yaml:"dst"`
	Size     uint64   `yaml:"size"`
	RowPitch uint32   `yaml:"row_pitch"`

	RenderPass  string `yaml:"render_pass"`
	Framebuffer string `yaml:"framebuffer"`

	VertexCount   uint32 `yaml:"vertex_count"`
	IndexCount    uint32 `yaml:"index_count"`
	InstanceCount uint32 `yaml:"instance_count"`
	FirstVertex   uint32 `yaml:"first_vertex"`
	FirstIndex    uint32 `yaml:"first_index"`
	FirstInstance uint32 `yaml:"first_instance"`

	Index    uint32 `yaml:"index"`
	Group    string `yaml:"group"`
	Pipeline string `yaml:"pipeline"`

	Color     [4]float32 `yaml:"color"`
	Reference uint32     `yaml:"reference"`

	Buffer  string `yaml:"buffer"`
	Offset  uint64 `yaml:"offset"`
	Texture string `yaml:"texture"`
	Usage   string `yaml:"usage"`

	StartSlot     uint32         `yaml:"start_slot"`
	VertexBuffers []VertexBuffer `yaml:"vertex_buffers"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario. Unknown keys are errors.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(s.Submissions) == 0 {
		return nil, fmt.Errorf("no submissions")
	}
	return &s, nil
}
