package nxtvk

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceDescriptor hands an already created logical device and queue to the
// backend. Instance and device creation happen elsewhere.
type DeviceDescriptor struct {
	Handle vk.Device
	Queue  vk.Queue
	// Functions defaults to NewVulkanFunctions. Config.Trace wraps it in a tracer.
	Functions Functions
	Config    Config
	// FatalHandler defaults to logging to Config.FatalLog and exiting.
	FatalHandler FatalHandler
	// Logger defaults to the package logger.
	Logger *slog.Logger
}

// Device owns everything that outlives a single replay: the native function
// table, serial bookkeeping and the deferred deletion queue.
type Device struct {
	fn          Functions
	handle      vk.Device
	queue       vk.Queue
	queueFamily uint32
	logger      *slog.Logger
	onFatal     FatalHandler

	deleter        *FencedDeleter
	fences         *FenceManager
	commandBuffers *CommandBufferManager

	lastSubmittedSerial uint64
	completedSerial     uint64
}

func NewDevice(desc DeviceDescriptor) (*Device, error) {
	cfg := desc.Config
	if cfg.FatalLog == "" {
		cfg.FatalLog = DefaultFatalLog
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new device: %w", err)
	}

	logger := desc.Logger
	if logger == nil {
		logger = Logger()
	}
	fn := desc.Functions
	if fn == nil {
		fn = NewVulkanFunctions()
	}
	if cfg.Trace {
		fn = NewTraceFunctions(fn, logger)
	}
	onFatal := desc.FatalHandler
	if onFatal == nil {
		onFatal = newFatalHandler(cfg.FatalLog)
	}

	d := &Device{
		fn:          fn,
		handle:      desc.Handle,
		queue:       desc.Queue,
		queueFamily: cfg.QueueFamily,
		logger:      logger,
		onFatal:     onFatal,
	}
	d.deleter = NewFencedDeleter(d)
	d.fences = NewFenceManager(d)

	commandBuffers, err := NewCommandBufferManager(d)
	if err != nil {
		return nil, fmt.Errorf("new device: %w", err)
	}
	d.commandBuffers = commandBuffers
	return d, nil
}

func (d *Device) Handle() vk.Device {
	return d.handle
}

func (d *Device) Functions() Functions {
	return d.fn
}

func (d *Device) FencedDeleter() *FencedDeleter {
	return d.deleter
}

// fatal hands err to the fatal handler. It only returns when the handler does.
func (d *Device) fatal(err error) error {
	d.logger.Error("nxtvk: fatal error", "err", err)
	d.onFatal(err)
	return err
}

// LastSubmittedSerial is the serial of the most recent Submit, 0 before any.
func (d *Device) LastSubmittedSerial() uint64 {
	return d.lastSubmittedSerial
}

// CompletedSerial is the highest serial the GPU is known to have finished.
func (d *Device) CompletedSerial() uint64 {
	return d.completedSerial
}

// pendingSerial is the serial the next Submit will get. Anything recorded
// now may be referenced by it.
func (d *Device) pendingSerial() uint64 {
	return d.lastSubmittedSerial + 1
}

// Submit replays commands into a fresh native command buffer and submits it
// with a fence tracking the new serial.
func (d *Device) Submit(commands *CommandBuffer) error {
	native, err := d.commandBuffers.NewCommandBuffer()
	if err != nil {
		return fmt.Errorf("submit %q: %w", commands.Label(), err)
	}
	if ret := d.fn.BeginCommandBuffer(native); isError(ret) {
		d.commandBuffers.Abandon(native)
		return fmt.Errorf("submit %q: %w", commands.Label(), NewError(ret))
	}
	if err := commands.RecordCommands(native); err != nil {
		d.commandBuffers.Abandon(native)
		return err
	}
	if ret := d.fn.EndCommandBuffer(native); isError(ret) {
		d.commandBuffers.Abandon(native)
		return fmt.Errorf("submit %q: %w", commands.Label(), NewError(ret))
	}

	serial := d.pendingSerial()
	fence, err := d.fences.NewFence(serial)
	if err != nil {
		d.commandBuffers.Abandon(native)
		return fmt.Errorf("submit %q: %w", commands.Label(), err)
	}
	if ret := d.fn.QueueSubmit(d.queue, native, fence); isError(ret) {
		d.fences.Abandon(fence)
		d.commandBuffers.Abandon(native)
		return fmt.Errorf("submit %q: %w", commands.Label(), NewError(ret))
	}
	d.commandBuffers.Submitted(native, serial)
	d.lastSubmittedSerial = serial

	d.logger.Info("submitted", "commandBuffer", commands.Label(), "serial", serial)
	return nil
}

// Tick polls the submission fences without waiting, then recycles command
// buffers and destroys deferred pools up to the completed serial.
func (d *Device) Tick() error {
	completed, err := d.fences.Poll(d.completedSerial)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	d.completedSerial = completed
	d.commandBuffers.Recycle(completed)
	d.deleter.Tick(completed)
	return nil
}

// Destroy releases everything the device owns. The GPU must be idle.
func (d *Device) Destroy() {
	d.deleter.Destroy()
	d.fences.Destroy()
	d.commandBuffers.Destroy()
}
