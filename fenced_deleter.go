package nxtvk

import vk "github.com/vulkan-go/vulkan"

type deferredPool struct {
	pool   vk.DescriptorPool
	serial uint64
}

// FencedDeleter destroys descriptor pools once the GPU can no longer
// reference them. Entries are tagged with a serial and destroyed when the
// device reports that serial as completed. Entries are queued in serial
// order, so Tick only ever pops from the front.
type FencedDeleter struct {
	device  *Device
	pending []deferredPool
}

func NewFencedDeleter(device *Device) *FencedDeleter {
	return &FencedDeleter{device: device}
}

// DeleteWhenUnused queues pool for destruction after every submission that
// could have recorded it has finished. That is the submission currently
// being prepared, since the pool may be referenced by commands recorded but
// not yet submitted.
func (f *FencedDeleter) DeleteWhenUnused(pool vk.DescriptorPool) {
	if pool == nil {
		return
	}
	f.pending = append(f.pending, deferredPool{
		pool:   pool,
		serial: f.device.pendingSerial(),
	})
}

// Tick destroys every queued pool whose serial is at or below completed.
func (f *FencedDeleter) Tick(completed uint64) {
	n := 0
	for n < len(f.pending) && f.pending[n].serial <= completed {
		f.device.fn.DestroyDescriptorPool(f.device.handle, f.pending[n].pool)
		n++
	}
	if n == 0 {
		return
	}
	f.device.logger.Debug("fenced deleter tick", "completed", completed, "destroyed", n, "remaining", len(f.pending)-n)
	f.pending = append(f.pending[:0], f.pending[n:]...)
}

// Len reports how many pools are still waiting.
func (f *FencedDeleter) Len() int {
	return len(f.pending)
}

// Destroy releases everything regardless of serials. Only safe once the
// device is idle.
func (f *FencedDeleter) Destroy() {
	for _, p := range f.pending {
		f.device.fn.DestroyDescriptorPool(f.device.handle, p.pool)
	}
	f.pending = nil
}
