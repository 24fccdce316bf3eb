package nxtvk

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// LoadVulkan resolves vkGetInstanceProcAddr through GLFW and initializes the
// vk dispatch table. It locks the calling goroutine to its OS thread, as GLFW
// requires. Call UnloadVulkan when done.
func LoadVulkan() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("glfw init: %w", err)
	}
	if !glfw.VulkanSupported() {
		UnloadVulkan()
		return fmt.Errorf("glfw: no Vulkan loader found")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		UnloadVulkan()
		return fmt.Errorf("vulkan init: %w", err)
	}
	Logger().Debug("vulkan loaded through glfw")
	return nil
}

func UnloadVulkan() {
	glfw.Terminate()
	runtime.UnlockOSThread()
}
