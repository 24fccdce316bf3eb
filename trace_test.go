package nxtvk

import (
	"bytes"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestTraceForwardsAndLogs(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	fake := newFakeFunctions()
	fn := NewTraceFunctions(fake, logger)

	fn.CmdDraw(vk.CommandBuffer(testHandle(100)), 3, 1, 0, 0)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "CmdDraw", fake.calls[0].Name)
	assert.Contains(t, out.String(), "call=CmdDraw")
	assert.Contains(t, out.String(), "vertexCount=3")
}

func TestTraceDriverless(t *testing.T) {
	fn := NewTraceFunctions(nil, newNopLogger())

	var pool vk.DescriptorPool
	require.Equal(t, vk.Success, fn.CreateDescriptorPool(nil, &vk.DescriptorPoolCreateInfo{MaxSets: 1}, &pool))
	assert.NotNil(t, pool)

	var fence, other vk.Fence
	require.Equal(t, vk.Success, fn.CreateFence(nil, &fence))
	require.Equal(t, vk.Success, fn.CreateFence(nil, &other))
	assert.NotEqual(t, fence, other)
	assert.Equal(t, vk.Success, fn.GetFenceStatus(nil, fence))

	// Recording calls are no-ops without a driver.
	fn.CmdEndRenderPass(nil)
}

func TestSyntheticHandlesStayUnique(t *testing.T) {
	fn := NewTraceFunctions(nil, newNopLogger())
	create := func(n int, into []vk.DescriptorPool) []vk.DescriptorPool {
		for range n {
			var pool vk.DescriptorPool
			require.Equal(t, vk.Success, fn.CreateDescriptorPool(nil, &vk.DescriptorPoolCreateInfo{MaxSets: 1}, &pool))
			into = append(into, pool)
		}
		return into
	}

	pools := create(64, nil)
	runtime.GC()
	runtime.GC()
	pools = create(2*syntheticChunk, pools)

	seen := make(map[vk.DescriptorPool]bool, len(pools))
	for _, pool := range pools {
		require.NotNil(t, pool)
		require.False(t, seen[pool], "handle issued twice")
		seen[pool] = true
	}
}

func TestDriverlessDeviceCompletesOnTick(t *testing.T) {
	device, err := NewDevice(DeviceDescriptor{
		Functions: NewTraceFunctions(nil, nil),
		FatalHandler: func(err error) {
			t.Fatalf("unexpected fatal: %v", err)
		},
	})
	require.NoError(t, err)
	defer device.Destroy()

	require.NoError(t, device.Submit(emptyCommandBuffer(device, "a")))
	require.NoError(t, device.Tick())
	assert.Equal(t, uint64(1), device.CompletedSerial())
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	Logger().Info("hello")
	assert.Contains(t, out.String(), "hello")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
