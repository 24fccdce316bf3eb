package nxtvk

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// MaxVertexInputs bounds the vertex buffer slots one SetVertexBuffers command
// may touch.
const MaxVertexInputs = 16

// Command is the tag of one record in a command stream.
type Command uint32

const (
	CommandCopyBufferToBuffer Command = iota
	CommandCopyBufferToTexture
	CommandCopyTextureToBuffer
	CommandBeginRenderPass
	CommandBeginRenderSubpass
	CommandDrawArrays
	CommandDrawElements
	CommandEndRenderPass
	CommandEndRenderSubpass
	CommandSetBindGroup
	CommandSetBlendColor
	CommandSetIndexBuffer
	CommandSetRenderPipeline
	CommandSetStencilReference
	CommandSetVertexBuffers
	CommandTransitionBufferUsage
	CommandTransitionTextureUsage

	commandCount
)

var commandNames = [commandCount]string{
	CommandCopyBufferToBuffer:     "CopyBufferToBuffer",
	CommandCopyBufferToTexture:    "CopyBufferToTexture",
	CommandCopyTextureToBuffer:    "CopyTextureToBuffer",
	CommandBeginRenderPass:        "BeginRenderPass",
	CommandBeginRenderSubpass:     "BeginRenderSubpass",
	CommandDrawArrays:             "DrawArrays",
	CommandDrawElements:           "DrawElements",
	CommandEndRenderPass:          "EndRenderPass",
	CommandEndRenderSubpass:       "EndRenderSubpass",
	CommandSetBindGroup:           "SetBindGroup",
	CommandSetBlendColor:          "SetBlendColor",
	CommandSetIndexBuffer:         "SetIndexBuffer",
	CommandSetRenderPipeline:      "SetRenderPipeline",
	CommandSetStencilReference:    "SetStencilReference",
	CommandSetVertexBuffers:       "SetVertexBuffers",
	CommandTransitionBufferUsage:  "TransitionBufferUsage",
	CommandTransitionTextureUsage: "TransitionTextureUsage",
}

func (c Command) String() string {
	if c < commandCount {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", uint32(c))
}

// ParseCommand is the inverse of Command.String.
func ParseCommand(name string) (Command, error) {
	for c, n := range commandNames {
		if n == name {
			return Command(c), nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// CommandRecord is the payload of one command. Each tag has exactly one
// record type, always used by pointer.
type CommandRecord interface {
	CommandID() Command
}

type BufferCopyLocation struct {
	Buffer *Buffer
	Offset uint64
}

type TextureCopyLocation struct {
	Texture *Texture
	X       uint32
	Y       uint32
	Z       uint32
	Width   uint32
	Height  uint32
	Depth   uint32
	Level   uint32
}

type CopyBufferToBufferCmd struct {
	Source      BufferCopyLocation
	Destination BufferCopyLocation
	Size        uint64
}

type CopyBufferToTextureCmd struct {
	Source      BufferCopyLocation
	Destination TextureCopyLocation
	// RowPitch is the byte stride between rows in the buffer.
	RowPitch uint32
}

type CopyTextureToBufferCmd struct {
	Source      TextureCopyLocation
	Destination BufferCopyLocation
	RowPitch    uint32
}

type BeginRenderPassCmd struct {
	RenderPass  *RenderPass
	Framebuffer *Framebuffer
}

type BeginRenderSubpassCmd struct{}

type DrawArraysCmd struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

type DrawElementsCmd struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	FirstInstance uint32
}

type EndRenderPassCmd struct{}

type EndRenderSubpassCmd struct{}

type SetBindGroupCmd struct {
	Index uint32
	Group *BindGroup
}

type SetBlendColorCmd struct {
	R, G, B, A float32
}

// SetIndexBufferCmd binds 16-bit indices; no other index width is supported.
type SetIndexBufferCmd struct {
	Buffer *Buffer
	Offset uint64
}

type SetRenderPipelineCmd struct {
	Pipeline *RenderPipeline
}

type SetStencilReferenceCmd struct {
	Reference uint32
}

// SetVertexBuffersCmd binds Count buffers to the slots starting at StartSlot.
// Only the first Count entries of Buffers and Offsets are used.
type SetVertexBuffersCmd struct {
	StartSlot uint32
	Count     uint32
	Buffers   [MaxVertexInputs]*Buffer
	Offsets   [MaxVertexInputs]uint64
}

type TransitionBufferUsageCmd struct {
	Buffer *Buffer
	Usage  gputypes.BufferUsage
}

type TransitionTextureUsageCmd struct {
	Texture *Texture
	Usage   gputypes.TextureUsage
}

func (*CopyBufferToBufferCmd) CommandID() Command     { return CommandCopyBufferToBuffer }
func (*CopyBufferToTextureCmd) CommandID() Command    { return CommandCopyBufferToTexture }
func (*CopyTextureToBufferCmd) CommandID() Command    { return CommandCopyTextureToBuffer }
func (*BeginRenderPassCmd) CommandID() Command        { return CommandBeginRenderPass }
func (*BeginRenderSubpassCmd) CommandID() Command     { return CommandBeginRenderSubpass }
func (*DrawArraysCmd) CommandID() Command             { return CommandDrawArrays }
func (*DrawElementsCmd) CommandID() Command           { return CommandDrawElements }
func (*EndRenderPassCmd) CommandID() Command          { return CommandEndRenderPass }
func (*EndRenderSubpassCmd) CommandID() Command       { return CommandEndRenderSubpass }
func (*SetBindGroupCmd) CommandID() Command           { return CommandSetBindGroup }
func (*SetBlendColorCmd) CommandID() Command          { return CommandSetBlendColor }
func (*SetIndexBufferCmd) CommandID() Command         { return CommandSetIndexBuffer }
func (*SetRenderPipelineCmd) CommandID() Command      { return CommandSetRenderPipeline }
func (*SetStencilReferenceCmd) CommandID() Command    { return CommandSetStencilReference }
func (*SetVertexBuffersCmd) CommandID() Command       { return CommandSetVertexBuffers }
func (*TransitionBufferUsageCmd) CommandID() Command  { return CommandTransitionBufferUsage }
func (*TransitionTextureUsageCmd) CommandID() Command { return CommandTransitionTextureUsage }

// CommandRecorder appends records to a stream under construction. It does
// no validation; that belongs to whoever builds the stream.
type CommandRecorder struct {
	tags    []Command
	records []CommandRecord
}

func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{}
}

// Record appends cmd under its own tag.
func (r *CommandRecorder) Record(cmd CommandRecord) {
	r.tags = append(r.tags, cmd.CommandID())
	r.records = append(r.records, cmd)
}

func (r *CommandRecorder) Len() int {
	return len(r.tags)
}

// Acquire hands the recorded stream over to an iterator and leaves the
// recorder empty.
func (r *CommandRecorder) Acquire() *CommandIterator {
	it := &CommandIterator{tags: r.tags, records: r.records}
	r.tags = nil
	r.records = nil
	return it
}

// CommandIterator walks a stream once, in order. Each NextCommandID is
// followed by exactly one decode of the matching record type.
type CommandIterator struct {
	tags     []Command
	records  []CommandRecord
	pos      int
	current  Command
	pending  bool
	consumed bool
}

// NextCommandID returns the tag of the next record, or false once every
// record has been returned. A record whose tag was returned but which was
// never decoded is skipped.
func (it *CommandIterator) NextCommandID() (Command, bool) {
	if it.pending {
		it.pos++
		it.pending = false
	}
	if it.pos >= len(it.tags) {
		return 0, false
	}
	it.current = it.tags[it.pos]
	it.pending = true
	return it.current, true
}

// Len is the total number of records in the stream.
func (it *CommandIterator) Len() int {
	return len(it.tags)
}

// nextCommand decodes the record for the tag last returned by NextCommandID
// and checks it really is a T of that tag.
func nextCommand[T CommandRecord](it *CommandIterator) (T, error) {
	var zero T
	if !it.pending {
		return zero, structuralf("command record read without a command id")
	}
	record := it.records[it.pos]
	it.pos++
	it.pending = false

	cmd, ok := record.(T)
	if !ok || cmd.CommandID() != it.current {
		return zero, structuralf("command %v decoded as %T", it.current, record)
	}
	return cmd, nil
}
