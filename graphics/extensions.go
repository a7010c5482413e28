package graphics

import vk "github.com/vulkan-go/vulkan"

// InstanceExtensions lists the instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// DeviceExtensions lists the extensions available on gpu.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// ValidationLayers lists the validation layers available on the platform.
func ValidationLayers() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// extensionSet reconciles a wanted/required wishlist against what is
// actually available, generalizing the teacher's BaseInstanceExtensions/
// BaseDeviceExtensions/BaseLayerExtensions into one type used for all three
// negotiations (instance extensions, device extensions, validation layers).
type extensionSet struct {
	wanted   []string
	required []string
	actual   []string
}

func newExtensionSet(wanted, required, actual []string) *extensionSet {
	return &extensionSet{wanted: wanted, required: required, actual: actual}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Missing returns the subset of required that actual does not provide.
func (e *extensionSet) Missing() []string {
	var missing []string
	for _, req := range e.required {
		if !contains(e.actual, req) {
			missing = append(missing, req)
		}
	}
	return missing
}

// Resolve returns the final list to enable: every required entry plus every
// wanted entry that is actually available and not already required.
func (e *extensionSet) Resolve() []string {
	out := append([]string{}, e.required...)
	for _, w := range e.wanted {
		if contains(e.required, w) {
			continue
		}
		if contains(e.actual, w) {
			out = append(out, w)
		}
	}
	return out
}
