package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/komus-Israel/VulkanTutorial/queues"
	"github.com/komus-Israel/VulkanTutorial/support"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
	flag.IntVar(&args.width, "width", 1024, "Width of the window in screen coordinates")
	flag.IntVar(&args.height, "height", 768, "Height of the window in screen coordinates")
}

var args struct {
	debug  bool
	width  int
	height int
}

const (
	title = "Vulkan Tutorial: Physical devices and queue families"
)

func main() {
	flag.Parse()

	app := &VulkanTutorialApp{
		width:                  args.width,
		height:                 args.height,
		enableValidationLayers: args.debug,
		validationLayers: []string{
			"VK_LAYER_KHRONOS_validation",
		},
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// VulkanTutorialApp creates a Vulkan instance and selects a physical device
// which is able to run graphics commands.
type VulkanTutorialApp struct {
	width  int
	height int

	// validationLayers is the list of required validation layers needed by this
	// program when the -debug flag is set.
	validationLayers       []string
	enableValidationLayers bool

	window   *glfw.Window
	instance vk.Instance

	debugCallback    vk.DebugReportCallback
	hasDebugCallback bool

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice
}

// Run runs the vulkan program.
func (a *VulkanTutorialApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		a.cleanupVulkan()
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

	if err := a.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	if err := a.setupDebugCallback(); err != nil {
		return fmt.Errorf("setupDebugCallback: %w", err)
	}

	if err := a.pickPhysicalDevice(); err != nil {
		return fmt.Errorf("pickPhysicalDevice: %w", err)
	}

	return nil
}

func (a *VulkanTutorialApp) cleanupVulkan() {
	if a.instance == vk.Instance(vk.NullHandle) {
		return
	}
	if a.hasDebugCallback {
		vk.DestroyDebugReportCallback(a.instance, a.debugCallback, nil)
		a.hasDebugCallback = false
	}
	vk.DestroyInstance(a.instance, nil)
	a.instance = vk.Instance(vk.NullHandle)
}

func (a *VulkanTutorialApp) createInstance() error {
	if a.enableValidationLayers {
		if missing := a.missingValidationLayers(); len(missing) > 0 {
			return fmt.Errorf("validation layers requested but not available: %s",
				strings.Join(missing, ", "))
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   title + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := a.getRequiredExtensions()
	available, err := availableInstanceExtensions()
	if err != nil {
		return err
	}
	if missing := support.Missing(extensions, available); len(missing) > 0 {
		return fmt.Errorf("required instance extensions not available: %s",
			strings.Join(missing, ", "))
	}

	// Portability implementations such as MoltenVK are only enumerated when
	// asked for. Without this CreateInstance fails with an incompatible driver.
	extensions, portable := support.WithPortability(extensions, available)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if portable {
		createInfo.Flags = vk.InstanceCreateFlags(support.EnumeratePortabilityBit)
	}

	if a.enableValidationLayers {
		createInfo.EnabledLayerCount = uint32(len(a.validationLayers))
		createInfo.PpEnabledLayerNames = support.CStrings(a.validationLayers)
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return fmt.Errorf("failed to create Vulkan instance: %w", err)
	}

	a.instance = instance
	return nil
}

func (a *VulkanTutorialApp) getRequiredExtensions() []string {
	extensions := support.CStrings(
		glfw.GetCurrentContext().GetRequiredInstanceExtensions(),
	)

	if a.enableValidationLayers {
		extensions = append(extensions, support.CString(vk.ExtDebugReportExtensionName))
	}

	return extensions
}

func (a *VulkanTutorialApp) setupDebugCallback() error {
	if !a.enableValidationLayers {
		return nil
	}

	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportErrorBit |
				vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit,
		),
		PfnCallback: debugReport,
	}

	var callback vk.DebugReportCallback
	err := vk.Error(vk.CreateDebugReportCallback(a.instance, &createInfo, nil, &callback))
	if err != nil {
		return fmt.Errorf("failed to set up debug callback: %w", err)
	}

	a.debugCallback = callback
	a.hasDebugCallback = true
	return nil
}

// pickPhysicalDevice selects the first device with a graphics queue family.
func (a *VulkanTutorialApp) pickPhysicalDevice() error {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(a.instance, &deviceCount, nil))
	if err != nil {
		return fmt.Errorf("failed to get the number of physical devices: %w", err)
	}
	if deviceCount == 0 {
		return fmt.Errorf("failed to find GPUs with Vulkan support")
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(a.instance, &deviceCount, pDevices))
	if err != nil {
		return fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	for _, device := range pDevices[:deviceCount] {
		if a.isDeviceSuitable(device) {
			a.physicalDevice = device
			return nil
		}
	}

	return fmt.Errorf("failed to find a suitable GPU")
}

func (a *VulkanTutorialApp) isDeviceSuitable(device vk.PhysicalDevice) bool {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	indices := a.findQueueFamilies(device)
	suitable := indices.HasGraphics()

	if args.debug {
		log.Printf(
			"Available device: %s (suitable: %t)",
			vk.ToString(properties.DeviceName[:]),
			suitable,
		)
	}

	return suitable
}

// findQueueFamilies returns a FamilyIndices populated with Vulkan queue families needed
// by the program. There is no surface yet so only the graphics family is looked up.
func (a *VulkanTutorialApp) findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	hasGraphics := (*queues.FamilyIndices).HasGraphics
	return queues.FindUntil(queueFamilyCount, hasGraphics, func(i uint32) queues.Capabilities {
		family := queueFamilies[i]
		family.Deref()

		return queues.Capabilities{
			Graphics: family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
		}
	})
}

func (a *VulkanTutorialApp) missingValidationLayers() []string {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return a.validationLayers
	}
	availableLayers := make([]vk.LayerProperties, count)

	if vk.EnumerateInstanceLayerProperties(&count, availableLayers) != vk.Success {
		return a.validationLayers
	}

	available := make([]string, 0, count)
	for _, layer := range availableLayers[:count] {
		layer.Deref()
		available = append(available, vk.ToString(layer.LayerName[:]))
	}

	return support.Missing(a.validationLayers, available)
}

func (a *VulkanTutorialApp) mainLoop() error {
	log.Printf("main loop!\n")

	for !a.window.ShouldClose() {
		glfw.PollEvents()
	}

	return nil
}

// availableInstanceExtensions returns the names of all instance extensions
// supported by the Vulkan implementation.
func availableInstanceExtensions() ([]string, error) {
	var count uint32
	res := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to get the number of instance extensions: %w", err)
	}

	extensions := make([]vk.ExtensionProperties, count)
	res = vk.EnumerateInstanceExtensionProperties("", &count, extensions)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to enumerate instance extensions: %w", err)
	}

	names := make([]string, 0, count)
	for _, extension := range extensions[:count] {
		extension.Deref()
		names = append(names, vk.ToString(extension.ExtensionName[:]))
	}

	if args.debug {
		log.Printf("Available instance extensions: %s", strings.Join(names, ", "))
	}

	return names, nil
}

func debugReport(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	level := "WARN"
	if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 {
		level = "ERROR"
	}
	log.Printf("validation layer [%s %d] %s: %s", level, messageCode, pLayerPrefix, pMessage)

	return vk.Bool32(vk.False)
}
