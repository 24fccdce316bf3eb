package nxtvk

import (
	"fmt"
	"slices"

	vk "github.com/vulkan-go/vulkan"
)

// Instance is a Vulkan instance with one logical device and its graphics
// queue. It is what a Device needs to run against a real driver.
type Instance struct {
	instance    vk.Instance
	gpu         vk.PhysicalDevice
	gpuName     string
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
	layers      []string
}

// NewInstance creates an instance, picks the first GPU with a graphics queue
// and creates a logical device on it. Wanted layers that are not installed
// are skipped. LoadVulkan must have succeeded first.
func NewInstance(appName string, wantedLayers []string) (*Instance, error) {
	available, err := ValidationLayers()
	if err != nil {
		return nil, err
	}
	layers, missing := partitionWanted(wantedLayers, available)
	if len(missing) > 0 {
		Logger().Warn("validation layers not available", "layers", missing)
	}

	inst := &Instance{layers: layers}
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(appName),
			PEngineName:        safeString("nxtvk"),
		},
		EnabledLayerCount:   uint32(len(layers)),
		PpEnabledLayerNames: safeStrings(layers),
	}, nil, &inst.instance)
	if isError(ret) {
		return nil, fmt.Errorf("create instance: %w", NewError(ret))
	}
	if err := vk.InitInstance(inst.instance); err != nil {
		vk.DestroyInstance(inst.instance, nil)
		return nil, fmt.Errorf("init instance: %w", err)
	}

	if err := inst.selectDevice(); err != nil {
		vk.DestroyInstance(inst.instance, nil)
		return nil, err
	}
	Logger().Info("vulkan device ready", "gpu", inst.gpuName, "queueFamily", inst.queueFamily, "layers", layers)
	return inst, nil
}

func (inst *Instance) selectDevice() error {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(inst.instance, &count, nil)
	if isError(ret) {
		return fmt.Errorf("enumerate physical devices: %w", NewError(ret))
	}
	if count == 0 {
		return fmt.Errorf("no physical devices found")
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(inst.instance, &count, gpus)
	if isError(ret) {
		return fmt.Errorf("enumerate physical devices: %w", NewError(ret))
	}

	for _, gpu := range gpus {
		family, ok := findGraphicsQueueFamily(queueFamilies(gpu))
		if !ok {
			continue
		}
		inst.gpu = gpu
		inst.queueFamily = family
		break
	}
	if inst.gpu == nil {
		return fmt.Errorf("no GPU with a graphics queue among %d devices", count)
	}

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(inst.gpu, &props)
	props.Deref()
	inst.gpuName = vk.ToString(props.DeviceName[:])

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: inst.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	ret = vk.CreateDevice(inst.gpu, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueInfos)),
		PQueueCreateInfos:    queueInfos,
		EnabledLayerCount:    uint32(len(inst.layers)),
		PpEnabledLayerNames:  safeStrings(inst.layers),
	}, nil, &inst.device)
	if isError(ret) {
		return fmt.Errorf("create device on %s: %w", inst.gpuName, NewError(ret))
	}
	vk.GetDeviceQueue(inst.device, inst.queueFamily, 0, &inst.queue)
	return nil
}

func queueFamilies(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	return props
}

// findGraphicsQueueFamily returns the first family that supports graphics.
func findGraphicsQueueFamily(families []vk.QueueFamilyProperties) (uint32, bool) {
	for i := range families {
		family := families[i]
		family.Deref()
		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 && family.QueueCount > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

// partitionWanted splits wanted into the names present in available and the
// ones that are not.
func partitionWanted(wanted, available []string) (found, missing []string) {
	for _, name := range wanted {
		if slices.Contains(available, name) {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}
	return found, missing
}

// DeviceDescriptor describes the instance's device for NewDevice, with the
// queue family filled into cfg.
func (inst *Instance) DeviceDescriptor(cfg Config) DeviceDescriptor {
	cfg.QueueFamily = inst.queueFamily
	return DeviceDescriptor{
		Handle: inst.device,
		Queue:  inst.queue,
		Config: cfg,
	}
}

func (inst *Instance) GPUName() string {
	return inst.gpuName
}

// Destroy waits for the device to go idle and destroys it and the instance.
// Any Device built on top must be destroyed first.
func (inst *Instance) Destroy() {
	if inst.device != nil {
		vk.DeviceWaitIdle(inst.device)
		vk.DestroyDevice(inst.device, nil)
		inst.device = nil
	}
	if inst.instance != nil {
		vk.DestroyInstance(inst.instance, nil)
		inst.instance = nil
	}
}

func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}
