package nxtvk

import vk "github.com/vulkan-go/vulkan"

type serialFence struct {
	fence  vk.Fence
	serial uint64
}

// FenceManager keeps track of fences which in turn are used to keep track of GPU progress.
// Every submission gets a fence tagged with its serial; polling the fences in
// submission order tells how far the GPU got without ever waiting on it.
// The manager is not thread-safe and for submitting from multiple threads, multiple per-thread managers
// should be used.
type FenceManager struct {
	device   *Device
	inFlight []serialFence
	free     []vk.Fence
	fences   []vk.Fence
}

func NewFenceManager(device *Device) *FenceManager {
	return &FenceManager{
		device: device,
	}
}

// NewFence returns an unsignaled fence that will be reported as completing serial.
func (f *FenceManager) NewFence(serial uint64) (vk.Fence, error) {
	var fence vk.Fence
	if n := len(f.free); n > 0 {
		fence = f.free[n-1]
		f.free = f.free[:n-1]
	} else {
		ret := f.device.fn.CreateFence(f.device.handle, &fence)
		if isError(ret) {
			return fence, NewError(ret)
		}
		f.fences = append(f.fences, fence)
	}
	f.inFlight = append(f.inFlight, serialFence{fence: fence, serial: serial})
	return fence, nil
}

// Poll checks the outstanding fences in submission order and returns the
// highest serial known to be complete, starting from completed. Signaled
// fences are reset and recycled.
func (f *FenceManager) Poll(completed uint64) (uint64, error) {
	n := 0
	for n < len(f.inFlight) {
		ret := f.device.fn.GetFenceStatus(f.device.handle, f.inFlight[n].fence)
		if ret == vk.NotReady {
			break
		}
		if isError(ret) {
			return completed, NewError(ret)
		}
		completed = f.inFlight[n].serial
		n++
	}
	if n == 0 {
		return completed, nil
	}

	signaled := make([]vk.Fence, n)
	for i := range signaled {
		signaled[i] = f.inFlight[i].fence
	}
	if ret := f.device.fn.ResetFences(f.device.handle, signaled); isError(ret) {
		return completed, NewError(ret)
	}
	f.free = append(f.free, signaled...)
	f.inFlight = append(f.inFlight[:0], f.inFlight[n:]...)
	return completed, nil
}

// Abandon takes back the fence of the latest NewFence when its submission
// never reached the queue. The fence was never signaled, so it is reused as is.
func (f *FenceManager) Abandon(fence vk.Fence) {
	if n := len(f.inFlight); n > 0 && f.inFlight[n-1].fence == fence {
		f.inFlight = f.inFlight[:n-1]
		f.free = append(f.free, fence)
	}
}

// Outstanding is the number of submissions not yet seen as complete.
func (f *FenceManager) Outstanding() int {
	return len(f.inFlight)
}

func (f *FenceManager) Destroy() {
	for i := range f.fences {
		f.device.fn.DestroyFence(f.device.handle, f.fences[i])
	}
	f.fences = nil
	f.free = nil
	f.inFlight = nil
}

type serialCommandBuffer struct {
	commands vk.CommandBuffer
	serial   uint64
}

// CommandBufferManager allocates command buffers and recycles them for us once
// the submission that used them has completed.
// The manager is not thread-safe and for recording in multiple threads, multiple per-thread managers
// should be used.
type CommandBufferManager struct {
	device   *Device
	pool     vk.CommandPool
	buffers  []vk.CommandBuffer
	free     []vk.CommandBuffer
	inFlight []serialCommandBuffer
}

// NewCommandBufferManager creates the command pool on the device's queue family.
func NewCommandBufferManager(device *Device) (*CommandBufferManager, error) {
	pool, err := newCommandPool(device)
	if err != nil {
		return nil, err
	}
	m := &CommandBufferManager{
		device: device,
		pool:   pool,
	}
	return m, nil
}

// NewCommandBuffer returns a fresh or recycled command buffer which is in the reset state.
func (c *CommandBufferManager) NewCommandBuffer() (vk.CommandBuffer, error) {
	if n := len(c.free); n > 0 {
		buf := c.free[n-1]
		c.free = c.free[:n-1]
		if ret := c.device.fn.ResetCommandBuffer(buf); isError(ret) {
			return buf, NewError(ret)
		}
		return buf, nil
	}
	buffers := make([]vk.CommandBuffer, 1)
	ret := c.device.fn.AllocateCommandBuffers(c.device.handle, c.pool, buffers)
	if isError(ret) {
		return nil, NewError(ret)
	}
	c.buffers = append(c.buffers, buffers[0])
	return buffers[0], nil
}

// Submitted marks commands as in use until serial completes.
func (c *CommandBufferManager) Submitted(commands vk.CommandBuffer, serial uint64) {
	c.inFlight = append(c.inFlight, serialCommandBuffer{commands: commands, serial: serial})
}

// Abandon returns a command buffer that was never submitted.
func (c *CommandBufferManager) Abandon(commands vk.CommandBuffer) {
	c.free = append(c.free, commands)
}

// Recycle makes every command buffer whose serial is at or below completed
// available again.
func (c *CommandBufferManager) Recycle(completed uint64) {
	n := 0
	for n < len(c.inFlight) && c.inFlight[n].serial <= completed {
		c.free = append(c.free, c.inFlight[n].commands)
		n++
	}
	c.inFlight = append(c.inFlight[:0], c.inFlight[n:]...)
}

func (c *CommandBufferManager) Destroy() {
	if len(c.buffers) > 0 {
		c.device.fn.FreeCommandBuffers(c.device.handle, c.pool, c.buffers)
	}
	c.device.fn.DestroyCommandPool(c.device.handle, c.pool)
	c.buffers = nil
	c.free = nil
	c.inFlight = nil
}
