package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDisplayServer(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}
	cases := []struct {
		name string
		goos string
		vars map[string]string
		want DisplayServer
	}{
		{"windows ignores env", "windows", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, DisplayServerWindows},
		{"wayland wins over display", "linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"}, DisplayServerWayland},
		{"x11", "linux", map[string]string{"DISPLAY": ":0"}, DisplayServerX11},
		{"darwin", "darwin", nil, DisplayServerUnknown},
		{"darwin with xquartz", "darwin", map[string]string{"DISPLAY": ":0"}, DisplayServerUnknown},
		{"headless linux", "linux", nil, DisplayServerUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, detectDisplayServer(tc.goos, env(tc.vars)))
		})
	}
}

func TestDisplayServerString(t *testing.T) {
	assert.Equal(t, "Wayland", DisplayServerWayland.String())
	assert.Equal(t, "Unknown", DisplayServer(42).String())
}
