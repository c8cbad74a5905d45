package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"github.com/komus-Israel/VulkanTutorial/queues"
	"github.com/komus-Israel/VulkanTutorial/support"

	"github.com/go-gl/glfw/v3.3/glfw"
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
	title = "Vulkan Tutorial: Hello Triangle"
)

func main() {
	flag.Parse()

	app := &HelloTriangleApp{
		width:                  args.width,
		height:                 args.height,
		enableValidationLayers: args.debug,
		validationLayers: []string{
			"VK_LAYER_KHRONOS_validation",
		},
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
		surface:        vk.NullSurface,
	}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// HelloTriangleApp opens a window and sets up everything Vulkan needs for
// presenting to it: an instance, a surface, a logical device and its graphics
// and presentation queues.
type HelloTriangleApp struct {
	width  int
	height int

	// validationLayers is the list of required validation layers needed by this
	// program when the -debug flag is set.
	validationLayers       []string
	enableValidationLayers bool

	window   *glfw.Window
	instance vk.Instance

	// debugCallback receives the messages of the validation layers. It is only
	// created when hasDebugCallback is true.
	debugCallback    vk.DebugReportCallback
	hasDebugCallback bool

	surface vk.Surface

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// device is the logical device created for interfacing with the physical device.
	device vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

// Run runs the vulkan program.
func (h *HelloTriangleApp) Run() error {
	if err := h.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer h.cleanWindow()

	if err := h.initVulkan(); err != nil {
		h.cleanVulkan()
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer h.cleanVulkan()

	if err := h.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (h *HelloTriangleApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(h.width, h.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	h.window = window
	return nil
}

func (h *HelloTriangleApp) cleanWindow() {
	h.window.Destroy()
	glfw.Terminate()
}

func (h *HelloTriangleApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	if err := h.createInstance(); err != nil {
		return fmt.Errorf("createInstance: %w", err)
	}

	if err := h.setupDebugCallback(); err != nil {
		return fmt.Errorf("setupDebugCallback: %w", err)
	}

	if err := h.createSurface(); err != nil {
		return fmt.Errorf("createSurface: %w", err)
	}

	if err := h.pickPhysicalDevice(); err != nil {
		return fmt.Errorf("pickPhysicalDevice: %w", err)
	}

	if err := h.createLogicalDevice(); err != nil {
		return fmt.Errorf("createLogicalDevice: %w", err)
	}

	return nil
}

// cleanVulkan destroys whatever initVulkan managed to create, in reverse order
// of creation.
func (h *HelloTriangleApp) cleanVulkan() {
	if h.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(h.device, nil)
		h.device = vk.Device(vk.NullHandle)
	}
	if h.instance == vk.Instance(vk.NullHandle) {
		return
	}
	if h.surface != vk.NullSurface {
		vk.DestroySurface(h.instance, h.surface, nil)
		h.surface = vk.NullSurface
	}
	if h.hasDebugCallback {
		vk.DestroyDebugReportCallback(h.instance, h.debugCallback, nil)
		h.hasDebugCallback = false
	}
	vk.DestroyInstance(h.instance, nil)
	h.instance = vk.Instance(vk.NullHandle)
}

func (h *HelloTriangleApp) createInstance() error {
	if h.enableValidationLayers {
		if missing := h.missingValidationLayers(); len(missing) > 0 {
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

	extensions := h.getRequiredExtensions()
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

	if h.enableValidationLayers {
		createInfo.EnabledLayerCount = uint32(len(h.validationLayers))
		createInfo.PpEnabledLayerNames = support.CStrings(h.validationLayers)
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return fmt.Errorf("failed to create Vulkan instance: %w", err)
	}

	h.instance = instance
	return nil
}

// getRequiredExtensions returns the NUL terminated names of the instance
// extensions GLFW needs for creating surfaces plus the debug report extension
// when validation layers are enabled.
func (h *HelloTriangleApp) getRequiredExtensions() []string {
	extensions := support.CStrings(
		glfw.GetCurrentContext().GetRequiredInstanceExtensions(),
	)

	if h.enableValidationLayers {
		extensions = append(extensions, support.CString(vk.ExtDebugReportExtensionName))
	}

	return extensions
}

func (h *HelloTriangleApp) setupDebugCallback() error {
	if !h.enableValidationLayers {
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
	err := vk.Error(vk.CreateDebugReportCallback(h.instance, &createInfo, nil, &callback))
	if err != nil {
		return fmt.Errorf("failed to set up debug callback: %w", err)
	}

	h.debugCallback = callback
	h.hasDebugCallback = true
	return nil
}

func (h *HelloTriangleApp) createSurface() error {
	surfacePtr, err := h.window.CreateWindowSurface(h.instance, nil)
	if err != nil {
		return fmt.Errorf("cannot create surface within GLFW window: %w", err)
	}

	h.surface = vk.SurfaceFromPointer(surfacePtr)
	return nil
}

// pickPhysicalDevice selects the first device which has all the queue
// families needed by the program.
func (h *HelloTriangleApp) pickPhysicalDevice() error {
	var deviceCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(h.instance, &deviceCount, nil))
	if err != nil {
		return fmt.Errorf("failed to get the number of physical devices: %w", err)
	}
	if deviceCount == 0 {
		return fmt.Errorf("failed to find GPUs with Vulkan support")
	}

	pDevices := make([]vk.PhysicalDevice, deviceCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(h.instance, &deviceCount, pDevices))
	if err != nil {
		return fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	for _, device := range pDevices[:deviceCount] {
		suitable := h.isDeviceSuitable(device)

		if args.debug {
			log.Printf("Available device: %s (suitable: %t)", deviceName(device), suitable)
		}

		if suitable {
			h.physicalDevice = device
			return nil
		}
	}

	return fmt.Errorf("failed to find a suitable GPU")
}

func (h *HelloTriangleApp) isDeviceSuitable(device vk.PhysicalDevice) bool {
	indices := h.findQueueFamilies(device)

	return indices.IsComplete()
}

func (h *HelloTriangleApp) createLogicalDevice() error {
	indices := h.findQueueFamilies(h.physicalDevice)
	if !indices.IsComplete() {
		return fmt.Errorf("createLogicalDevice called for physical device which does " +
			"not have all the queues required by the program")
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}

	for _, familyIndex := range indices.Unique() {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{}}

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount: 0,
	}

	// Device layers are deprecated but older implementations still honor them.
	if h.enableValidationLayers {
		createInfo.PpEnabledLayerNames = support.CStrings(h.validationLayers)
		createInfo.EnabledLayerCount = uint32(len(h.validationLayers))
	}

	var device vk.Device
	err := vk.Error(vk.CreateDevice(h.physicalDevice, &createInfo, nil, &device))
	if err != nil {
		return fmt.Errorf("failed to create logical device: %w", err)
	}
	h.device = device

	var graphicsQueue vk.Queue
	vk.GetDeviceQueue(h.device, indices.Graphics.Get(), 0, &graphicsQueue)
	h.graphicsQueue = graphicsQueue

	var presentQueue vk.Queue
	vk.GetDeviceQueue(h.device, indices.Present.Get(), 0, &presentQueue)
	h.presentQueue = presentQueue

	return nil
}

// findQueueFamilies returns a FamilyIndices populated with Vulkan queue families needed
// by the program.
func (h *HelloTriangleApp) findQueueFamilies(device vk.PhysicalDevice) queues.FamilyIndices {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	return queues.Find(queueFamilyCount, func(i uint32) queues.Capabilities {
		family := queueFamilies[i]
		family.Deref()

		caps := queues.Capabilities{
			Graphics: family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
		}

		var hasPresent vk.Bool32
		err := vk.Error(
			vk.GetPhysicalDeviceSurfaceSupport(device, i, h.surface, &hasPresent),
		)
		if err != nil {
			log.Printf("error querying surface support for queue family %d: %s", i, err)
		} else {
			caps.Present = hasPresent.B()
		}

		return caps
	})
}

func (h *HelloTriangleApp) missingValidationLayers() []string {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return h.validationLayers
	}
	availableLayers := make([]vk.LayerProperties, count)

	if vk.EnumerateInstanceLayerProperties(&count, availableLayers) != vk.Success {
		return h.validationLayers
	}

	availableLayersStr := make([]string, 0, count)
	for _, layer := range availableLayers[:count] {
		layer.Deref()
		availableLayersStr = append(availableLayersStr, vk.ToString(layer.LayerName[:]))
	}

	return support.Missing(h.validationLayers, availableLayersStr)
}

func (h *HelloTriangleApp) mainLoop() error {
	log.Printf("main loop!\n")

	for !h.window.ShouldClose() {
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

func deviceName(device vk.PhysicalDevice) string {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	return vk.ToString(properties.DeviceName[:])
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
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("validation layer [ERROR %d] %s: %s", messageCode, pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		log.Printf("validation layer [WARN %d] %s: %s", messageCode, pLayerPrefix, pMessage)
	default:
		log.Printf("validation layer [%d] %s: %s", messageCode, pLayerPrefix, pMessage)
	}

	// Returning false tells the layers not to abort the call which triggered
	// the message.
	return vk.Bool32(vk.False)
}
