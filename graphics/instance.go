package graphics

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/forgevk/config"
)

// InstanceDesc configures window and instance creation. Validation, sync
// validation, VK_EXT_debug_utils, and VK_EXT_layer_settings are always
// enabled per distilled spec §4.3/§6; Debug only widens the debug messenger
// to also log info/verbose severities instead of just warnings and errors.
type InstanceDesc struct {
	AppName       string
	Width, Height int
	Debug         bool
	Usage         *config.Usage
}

// validationLayerName is the Khronos validation layer, enabled
// unconditionally per distilled spec §4.3's "Enable layers: the Khronos
// validation layer with sync-validation ON".
const validationLayerName = "VK_LAYER_KHRONOS_validation\x00"

// Instance owns the GLFW window, the vk.Instance, its surface, and the
// always-on VK_EXT_debug_utils messenger. It is the first object built on
// the road to a Device.
type Instance struct {
	Usage *config.Usage

	window *glfw.Window

	handle         vk.Instance
	surface        vk.Surface
	debugMessenger vk.DebugUtilsMessengerEXT
}

// NewInstance creates the GLFW window and surface-capable Vulkan instance
// described by desc. Grounded on the negotiation sequence in the teacher's
// platform-setup routine: resolve available instance extensions/layers,
// CreateInstance, then register the always-on debug utils messenger.
func NewInstance(desc InstanceDesc) (*Instance, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("graphics: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(desc.Width, desc.Height, desc.AppName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("graphics: create window: %w", err)
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("graphics: load vulkan loader: %w", err)
	}

	wanted := window.GetRequiredInstanceExtensions()
	available, err := InstanceExtensions()
	if err != nil {
		return nil, fmt.Errorf("graphics: enumerate instance extensions: %w", err)
	}
	required := append(append([]string{}, wanted...), "VK_EXT_debug_utils\x00", "VK_EXT_layer_settings\x00")
	extSet := newExtensionSet(wanted, required, available)
	if missing := extSet.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("graphics: missing required instance extensions: %v", missing)
	}
	enabledExtensions := extSet.Resolve()
	log.Printf("graphics: enabling %d instance extensions", len(enabledExtensions))

	availableLayers, err := ValidationLayers()
	if err != nil {
		return nil, fmt.Errorf("graphics: enumerate validation layers: %w", err)
	}
	layerSet := newExtensionSet(nil, []string{validationLayerName}, availableLayers)
	if missing := layerSet.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("graphics: missing required validation layer: %v", missing)
	}
	validationLayers := layerSet.Resolve()

	// Force the validation layer's sync-validation setting on regardless of
	// its default, per distilled spec §4.3/§6.
	syncValidation := vk.Bool32(vk.True)
	layerSettings := []vk.LayerSettingEXT{{
		PLayerName:   validationLayerName,
		PSettingName: "validate_sync\x00",
		Type:         vk.LayerSettingTypeBool32EXT,
		ValueCount:   1,
		PValues:      unsafePointer(&syncValidation),
	}}
	layerSettingsInfo := vk.LayerSettingsCreateInfoEXT{
		SType:        vk.StructureTypeLayerSettingsCreateInfoEXT,
		SettingCount: uint32(len(layerSettings)),
		PSettings:    layerSettings,
	}

	inst := &Instance{Usage: desc.Usage, window: window}

	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PNext: unsafePointer(&layerSettingsInfo),
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 3, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   safeString(desc.AppName),
			PEngineName:        "forgevk\x00",
		},
		EnabledExtensionCount:   uint32(len(enabledExtensions)),
		PpEnabledExtensionNames: enabledExtensions,
		EnabledLayerCount:       uint32(len(validationLayers)),
		PpEnabledLayerNames:     validationLayers,
	}, nil, &inst.handle)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: create instance: %w", err)
	}
	vk.InitInstance(inst.handle)

	severity := vk.DebugUtilsMessageSeverityFlags(
		vk.DebugUtilsMessageSeverityWarningBitExt | vk.DebugUtilsMessageSeverityErrorBitExt,
	)
	if desc.Debug {
		severity |= vk.DebugUtilsMessageSeverityFlags(
			vk.DebugUtilsMessageSeverityInfoBitExt | vk.DebugUtilsMessageSeverityVerboseBitExt,
		)
	}
	ret = vk.CreateDebugUtilsMessengerEXT(inst.handle, &vk.DebugUtilsMessengerCreateInfoEXT{
		SType:           vk.StructureTypeDebugUtilsMessengerCreateInfoEXT,
		MessageSeverity: severity,
		MessageType: vk.DebugUtilsMessageTypeFlags(
			vk.DebugUtilsMessageTypeGeneralBitExt | vk.DebugUtilsMessageTypeValidationBitExt | vk.DebugUtilsMessageTypePerformanceBitExt,
		),
		PfnUserCallback: dbgCallbackFunc,
	}, nil, &inst.debugMessenger)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("graphics: create debug utils messenger: %w", err)
	}
	log.Println("graphics: validation layer and debug utils messenger enabled")

	surfacePtr, err := window.CreateWindowSurface(inst.handle, nil)
	if err != nil {
		return nil, fmt.Errorf("graphics: create window surface: %w", err)
	}
	inst.surface = vk.SurfaceFromPointer(surfacePtr)

	return inst, nil
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

// Handle returns the underlying vk.Instance.
func (i *Instance) Handle() vk.Instance { return i.handle }

// Surface returns the window surface created alongside the instance.
func (i *Instance) Surface() vk.Surface { return i.surface }

// Window returns the backing GLFW window.
func (i *Instance) Window() *glfw.Window { return i.window }

// ShouldClose reports whether the window's close flag has been set.
func (i *Instance) ShouldClose() bool { return i.window.ShouldClose() }

// PollEvents pumps the GLFW event queue.
func (i *Instance) PollEvents() { glfw.PollEvents() }

// FramebufferSize returns the current drawable size in pixels.
func (i *Instance) FramebufferSize() (int, int) { return i.window.GetFramebufferSize() }

// Destroy tears down the debug messenger, surface, instance, and window, in
// that dependency order.
func (i *Instance) Destroy() {
	if i.debugMessenger != vk.NullDebugUtilsMessengerEXT {
		vk.DestroyDebugUtilsMessengerEXT(i.handle, i.debugMessenger, nil)
	}
	if i.surface != vk.NullSurface {
		vk.DestroySurface(i.handle, i.surface, nil)
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
	}
	if i.window != nil {
		i.window.Destroy()
	}
	glfw.Terminate()
}

func dbgCallbackFunc(severity vk.DebugUtilsMessageSeverityFlagBitsEXT, messageType vk.DebugUtilsMessageTypeFlagsEXT,
	callbackData *vk.DebugUtilsMessengerCallbackDataEXT, userData unsafe.Pointer) vk.Bool32 {

	callbackData.Deref()
	message := callbackData.PMessage
	switch {
	case severity&vk.DebugUtilsMessageSeverityErrorBitExt != 0:
		log.Printf("VULKAN ERROR: %s", message)
	case severity&vk.DebugUtilsMessageSeverityWarningBitExt != 0:
		log.Printf("VULKAN WARNING: %s", message)
	case severity&vk.DebugUtilsMessageSeverityInfoBitExt != 0:
		log.Printf("VULKAN INFO: %s", message)
	default:
		log.Printf("VULKAN VERBOSE: %s", message)
	}
	return vk.Bool32(vk.False)
}
