// Package support contains helpers for checking whether the names of Vulkan
// layers and extensions required by a program are available.
//
// Vulkan Go expects NUL terminated strings for names passed into create info
// structures while names read back from properties structures are plain Go
// strings. The functions here accept both forms.
package support

import "strings"

// CString returns name terminated with a single NUL byte as expected by the
// Vulkan Go bindings.
func CString(name string) string {
	return strings.TrimRight(name, "\x00") + "\x00"
}

// CStrings returns a copy of names where every element is NUL terminated.
func CStrings(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, CString(name))
	}
	return out
}

// GoString strips the NUL termination from name.
func GoString(name string) string {
	return strings.TrimRight(name, "\x00")
}

// Missing returns the names from required which are not found in available,
// in the order they appear in required. A nil result means everything
// required is available.
func Missing(required, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[GoString(name)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := have[GoString(name)]; !ok {
			missing = append(missing, GoString(name))
		}
	}

	return missing
}

// PortabilityEnumeration is the instance extension which makes portability
// implementations such as MoltenVK show up when enumerating physical devices.
const PortabilityEnumeration = "VK_KHR_portability_enumeration"

// EnumeratePortabilityBit is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
// It must be set in the instance create flags when PortabilityEnumeration is
// enabled.
const EnumeratePortabilityBit = 0x00000001

// WithPortability appends PortabilityEnumeration to the NUL terminated
// extensions when it is listed in available and reports whether it did.
// Implementations which do not list it get extensions unchanged.
func WithPortability(extensions, available []string) ([]string, bool) {
	if len(Missing([]string{PortabilityEnumeration}, available)) > 0 {
		return extensions, false
	}
	if len(Missing([]string{PortabilityEnumeration}, extensions)) == 0 {
		return extensions, true
	}

	out := make([]string, 0, len(extensions)+1)
	out = append(out, extensions...)
	return append(out, CString(PortabilityEnumeration)), true
}
