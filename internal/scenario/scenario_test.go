package scenario

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/andewx/nxtvk"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriverlessDevice(t *testing.T) (*nxtvk.Device, *bytes.Buffer, *[]error) {
	t.Helper()
	var trace bytes.Buffer
	var fatals []error
	device, err := nxtvk.NewDevice(nxtvk.DeviceDescriptor{
		Functions: nxtvk.NewTraceFunctions(nil, slog.New(slog.NewTextHandler(&trace, nil))),
		FatalHandler: func(err error) {
			fatals = append(fatals, err)
		},
	})
	require.NoError(t, err)
	t.Cleanup(device.Destroy)
	return device, &trace, &fatals
}

func TestLoadTriangle(t *testing.T) {
	s, err := Load("testdata/triangle.yaml")
	require.NoError(t, err)

	assert.Equal(t, "triangle", s.Name)
	assert.Len(t, s.Buffers, 4)
	assert.Len(t, s.Textures, 3)
	require.Len(t, s.Submissions, 2)
	assert.Equal(t, []string{"frame"}, s.Submissions[1].Release)
	assert.Equal(t, "SetVertexBuffers", s.Submissions[1].Commands[6].Op)
	require.Len(t, s.Submissions[1].Commands[6].VertexBuffers, 1)
}

func TestReplayTriangle(t *testing.T) {
	s, err := Load("testdata/triangle.yaml")
	require.NoError(t, err)
	device, trace, fatals := newDriverlessDevice(t)

	built, err := Build(device, s)
	require.NoError(t, err)
	require.Len(t, built.Submissions, 2)
	assert.Contains(t, trace.String(), "call=UpdateDescriptorSets")

	for _, sub := range built.Submissions {
		require.NoError(t, device.Submit(sub.Commands), sub.Name)
		for _, group := range sub.Release {
			group.Release()
		}
		require.NoError(t, device.Tick())
	}
	assert.Empty(t, *fatals)
	assert.Equal(t, uint64(2), device.LastSubmittedSerial())
	assert.Equal(t, uint64(2), device.CompletedSerial())

	// Released after the last submission, so it waits for a later serial.
	assert.Equal(t, 1, device.FencedDeleter().Len())
	assert.Nil(t, built.BindGroups["frame"].Handle())

	assert.Equal(t, gputypes.TextureUsageTextureBinding, built.Textures["checker"].CurrentUsage())
	assert.Equal(t, gputypes.TextureUsageRenderAttachment, built.Textures["color"].CurrentUsage())
	assert.Equal(t, gputypes.TextureUsageRenderAttachment, built.Textures["depth"].CurrentUsage())
	assert.Equal(t, gputypes.BufferUsageVertex, built.Buffers["vertices"].CurrentUsage())

	out := trace.String()
	for _, call := range []string{"CmdCopyBufferToImage", "CmdBeginRenderPass", "CmdBindDescriptorSets", "CmdDraw", "CmdDrawIndexed", "QueueSubmit"} {
		assert.Contains(t, out, "call="+call)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("name: x\nsubmissions:\n  - name: a\n    colour: red\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Parse([]byte("name: empty\n"))
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown op",
			yaml: "submissions:\n  - commands:\n      - op: Dispatch\n",
		},
		{
			name: "unknown buffer",
			yaml: "submissions:\n  - commands:\n      - op: SetIndexBuffer\n        buffer: nope\n",
		},
		{
			name: "unknown bind group release",
			yaml: "submissions:\n  - release: [nope]\n",
		},
		{
			name: "duplicate buffer",
			yaml: "buffers:\n  - {name: a, size: 4}\n  - {name: a, size: 4}\nsubmissions:\n  - name: s\n",
		},
		{
			name: "bad binding type",
			yaml: "layouts:\n  - name: l\n    bindings:\n      - {binding: 0, type: image}\nsubmissions:\n  - name: s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			device, _, _ := newDriverlessDevice(t)
			_, err = Build(device, s)
			assert.Error(t, err)
		})
	}
}

func TestBuildDefaults(t *testing.T) {
	s, err := Parse([]byte(`
buffers:
  - {name: u, size: 256}
layouts:
  - name: l
    bindings:
      - {binding: 0, type: uniform}
bind_groups:
  - name: g
    layout: l
    entries:
      - {binding: 0, buffer: u, offset: 64}
submissions:
  - commands:
      - op: DrawArrays
        vertex_count: 3
`))
	require.NoError(t, err)
	device, _, fatals := newDriverlessDevice(t)

	built, err := Build(device, s)
	require.NoError(t, err)
	assert.Empty(t, *fatals)
	assert.Equal(t, "submission-0", built.Submissions[0].Name)
	assert.NotNil(t, built.BindGroups["g"].Handle())

	built.ReleaseAll()
	assert.Nil(t, built.BindGroups["g"].Handle())
	assert.Equal(t, 1, device.FencedDeleter().Len())
}
