package support

import (
	"slices"
	"testing"
)

func TestCString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "VK_LAYER_KHRONOS_validation", want: "VK_LAYER_KHRONOS_validation\x00"},
		{in: "VK_KHR_surface\x00", want: "VK_KHR_surface\x00"},
		{in: "VK_KHR_surface\x00\x00", want: "VK_KHR_surface\x00"},
		{in: "", want: "\x00"},
	}

	for _, test := range tests {
		if got := CString(test.in); got != test.want {
			t.Errorf("CString(%q): expected %q but got %q", test.in, test.want, got)
		}
	}
}

func TestCStringsDoesNotModifyInput(t *testing.T) {
	in := []string{"a", "b\x00"}
	got := CStrings(in)

	if !slices.Equal(got, []string{"a\x00", "b\x00"}) {
		t.Errorf("unexpected CStrings result: %q", got)
	}
	if in[0] != "a" {
		t.Errorf("CStrings modified its input: %q", in)
	}
}

func TestMissing(t *testing.T) {
	available := []string{
		"VK_LAYER_MESA_device_select",
		"VK_LAYER_KHRONOS_validation",
	}

	tests := []struct {
		desc     string
		required []string
		want     []string
	}{
		{
			desc:     "nothing required",
			required: nil,
			want:     nil,
		},
		{
			desc:     "NUL terminated name is found",
			required: []string{"VK_LAYER_KHRONOS_validation\x00"},
			want:     nil,
		},
		{
			desc: "missing names keep their order",
			required: []string{
				"VK_LAYER_LUNARG_api_dump",
				"VK_LAYER_KHRONOS_validation",
				"VK_LAYER_LUNARG_monitor\x00",
			},
			want: []string{"VK_LAYER_LUNARG_api_dump", "VK_LAYER_LUNARG_monitor"},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got := Missing(test.required, available)
			if !slices.Equal(got, test.want) {
				t.Errorf("expected %q but got %q", test.want, got)
			}
		})
	}
}

func TestMissingWithNothingAvailable(t *testing.T) {
	got := Missing([]string{"VK_KHR_surface"}, nil)
	if !slices.Equal(got, []string{"VK_KHR_surface"}) {
		t.Errorf("expected the only required name to be missing, got %q", got)
	}
}

func TestWithPortability(t *testing.T) {
	required := []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface\x00"}

	tests := []struct {
		desc      string
		required  []string
		available []string
		want      []string
		portable  bool
	}{
		{
			desc:      "not listed by the implementation",
			required:  required,
			available: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
			want:      required,
			portable:  false,
		},
		{
			desc:     "listed by the implementation",
			required: required,
			available: []string{
				"VK_KHR_surface",
				"VK_KHR_portability_enumeration",
				"VK_KHR_xcb_surface",
			},
			want: []string{
				"VK_KHR_surface\x00",
				"VK_KHR_xcb_surface\x00",
				"VK_KHR_portability_enumeration\x00",
			},
			portable: true,
		},
		{
			desc:      "already required",
			required:  []string{"VK_KHR_portability_enumeration\x00"},
			available: []string{"VK_KHR_portability_enumeration"},
			want:      []string{"VK_KHR_portability_enumeration\x00"},
			portable:  true,
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, portable := WithPortability(test.required, test.available)
			if portable != test.portable {
				t.Errorf("expected portable %t but got %t", test.portable, portable)
			}
			if !slices.Equal(got, test.want) {
				t.Errorf("expected %q but got %q", test.want, got)
			}
		})
	}
}

func TestWithPortabilityDoesNotModifyInput(t *testing.T) {
	required := make([]string, 1, 4)
	required[0] = "VK_KHR_surface\x00"

	got, _ := WithPortability(required, []string{PortabilityEnumeration})

	if len(got) != 2 {
		t.Fatalf("expected two extensions, got %q", got)
	}
	if extended := required[:2]; extended[1] != "" {
		t.Errorf("WithPortability wrote into the input's backing array: %q", extended)
	}
}
