package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/komus-Israel/VulkanTutorial/support"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.IntVar(&args.width, "width", 1024, "Width of the window in screen coordinates")
	flag.IntVar(&args.height, "height", 768, "Height of the window in screen coordinates")
}

var args struct {
	width  int
	height int
}

const (
	title = "Vulkan Tutorial: Instance"
)

func main() {
	flag.Parse()

	app := &VulkanTutorialApp{
		width:  args.width,
		height: args.height,
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// VulkanTutorialApp creates a Vulkan instance for a GLFW window.
type VulkanTutorialApp struct {
	width  int
	height int

	window   *glfw.Window
	instance vk.Instance
}

// Run runs the vulkan program.
func (a *VulkanTutorialApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.cleanupVulkan()

	return a.mainLoop()
}

func (a *VulkanTutorialApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(a.width, a.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	a.window = window
	return nil
}

func (a *VulkanTutorialApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *VulkanTutorialApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	return a.createInstance()
}

func (a *VulkanTutorialApp) cleanupVulkan() {
	vk.DestroyInstance(a.instance, nil)
}

func (a *VulkanTutorialApp) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	glfwExtensions := support.CStrings(
		glfw.GetCurrentContext().GetRequiredInstanceExtensions(),
	)
	available, err := checkInstanceExtensions(glfwExtensions)
	if err != nil {
		return err
	}

	// Portability implementations such as MoltenVK are only enumerated when
	// asked for. Without this CreateInstance fails with an incompatible driver.
	extensions, portable := support.WithPortability(glfwExtensions, available)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if portable {
		createInfo.Flags = vk.InstanceCreateFlags(support.EnumeratePortabilityBit)
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("failed to create Vulkan instance: %w", vk.Error(res))
	}

	a.instance = instance
	return nil
}

// checkInstanceExtensions lists the extensions supported by the Vulkan
// implementation and makes sure all of the required ones are among them. It
// returns the names of the available extensions.
func checkInstanceExtensions(required []string) ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &count, nil); res != vk.Success {
		return nil, fmt.Errorf("counting instance extensions: %w", vk.Error(res))
	}

	extensions := make([]vk.ExtensionProperties, count)
	res := vk.EnumerateInstanceExtensionProperties("", &count, extensions)
	if res != vk.Success {
		return nil, fmt.Errorf("enumerating instance extensions: %w", vk.Error(res))
	}

	log.Printf("available extensions:")
	available := make([]string, 0, count)
	for _, extension := range extensions[:count] {
		extension.Deref()

		name := vk.ToString(extension.ExtensionName[:])
		log.Printf("\t%s", name)
		available = append(available, name)
	}

	if missing := support.Missing(required, available); len(missing) > 0 {
		return nil, fmt.Errorf("required instance extensions not available: %s",
			strings.Join(missing, ", "))
	}

	return available, nil
}

func (a *VulkanTutorialApp) mainLoop() error {
	log.Printf("main loop!\n")

	for !a.window.ShouldClose() {
		glfw.PollEvents()
	}

	return nil
}
