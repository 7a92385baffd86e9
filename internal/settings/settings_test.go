package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/settings"
)

type dirs struct {
	exe     string
	appData string
}

func newStore(t *testing.T) (*settings.Store, dirs) {
	t.Helper()
	d := dirs{exe: t.TempDir(), appData: t.TempDir()}
	s := settings.New(settings.WithExecutableDir(d.exe), settings.WithAppDataDir(d.appData))
	return s, d
}

func (d dirs) localConfig() string {
	return filepath.Join(d.appData, settings.Version, "config", "config.json")
}

func (d dirs) portableConfig() string {
	return filepath.Join(d.exe, "config", "config.json")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func assertDefaults(t *testing.T, s *settings.Store) {
	t.Helper()
	assert.Equal(t, settings.System, s.Theme())
	assert.Equal(t, settings.Rect{X: settings.UseDefault, Y: settings.UseDefault, Width: 1280, Height: 820}, s.WindowRect())
	assert.False(t, s.IsWindowMaximized())
	assert.Equal(t, "Win+Shift+A", s.Hotkey(hotkey.Scale).String())
	assert.Equal(t, "Win+Shift+D", s.Hotkey(hotkey.Overlay).String())
	assert.False(t, s.IsAutoRestore())
	assert.EqualValues(t, 5, s.DownCount())
}

func TestInitialize(t *testing.T) {
	t.Run("should use defaults when no config file exists", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		assertDefaults(t, s)
		assert.False(t, s.IsPortableMode())
		assert.Equal(t, filepath.Join(d.appData, settings.Version), s.WorkingDir())
		assert.Equal(t, d.localConfig(), s.ConfigPath())
	})
	t.Run("should use defaults for an empty config file", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), "")
		require.NoError(t, s.Initialize())
		assertDefaults(t, s)
	})
	t.Run("should fail when the config file cannot be read", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, os.MkdirAll(d.localConfig(), 0755))
		err := s.Initialize()
		assert.ErrorIs(t, err, settings.ErrRead)
		assertDefaults(t, s)
	})
	t.Run("should load every field", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), `{
			"theme": 1,
			"windowPos": {"x": 10, "y": -20, "width": 800, "height": 600, "maximized": true},
			"hotkeys": {"scale": "Ctrl+Alt+S", "overlay": "Win+F3"},
			"autoRestore": true,
			"downCount": 9,
			"somethingElse": [1, 2]
		}`)
		require.NoError(t, s.Initialize())
		assert.Equal(t, settings.Dark, s.Theme())
		assert.Equal(t, settings.Rect{X: 10, Y: -20, Width: 800, Height: 600}, s.WindowRect())
		assert.True(t, s.IsWindowMaximized())
		assert.Equal(t, "Ctrl+Alt+S", s.Hotkey(hotkey.Scale).String())
		assert.Equal(t, "Win+F3", s.Hotkey(hotkey.Overlay).String())
		assert.True(t, s.IsAutoRestore())
		assert.EqualValues(t, 9, s.DownCount())
	})
	t.Run("should keep the default theme when theme is missing", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), `{"autoRestore": true}`)
		require.NoError(t, s.Initialize())
		assert.Equal(t, settings.System, s.Theme())
		assert.True(t, s.IsAutoRestore())
	})
	t.Run("should fill empty hotkeys with defaults only", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), `{"hotkeys": {"scale": "", "overlay": "Ctrl+Shift+O"}}`)
		require.NoError(t, s.Initialize())
		assert.Equal(t, "Win+Shift+A", s.Hotkey(hotkey.Scale).String())
		assert.Equal(t, "Ctrl+Shift+O", s.Hotkey(hotkey.Overlay).String())
	})
	t.Run("should tolerate malformed hotkey strings", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), `{"hotkeys": {"scale": "Shift+Bogus", "overlay": "???"}}`)
		require.NoError(t, s.Initialize())
		assert.Equal(t, hotkey.Hotkey{Shift: true}, s.Hotkey(hotkey.Scale))
		assert.Equal(t, "Win+Shift+D", s.Hotkey(hotkey.Overlay).String())
	})
	t.Run("should detect portable mode", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.portableConfig(), `{"theme": 0}`)
		writeFile(t, d.localConfig(), `{"theme": 1}`)
		require.NoError(t, s.Initialize())
		assert.True(t, s.IsPortableMode())
		assert.Equal(t, d.exe, s.WorkingDir())
		assert.Equal(t, settings.Light, s.Theme())
	})
	t.Run("should reset earlier state on a failed reload", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.localConfig(), `{"theme": 0, "autoRestore": true}`)
		require.NoError(t, s.Initialize())
		assert.Equal(t, settings.Light, s.Theme())

		writeFile(t, d.localConfig(), `{"theme": 0, "autoRestore": "yes"}`)
		assert.ErrorIs(t, s.Initialize(), settings.ErrMalformed)
		assertDefaults(t, s)
	})
}

func TestInitializeRejectsMalformedConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"theme": `},
		{"trailing data", `{"theme": 1} {}`},
		{"top level array", `[1, 2]`},
		{"top level string", `"theme"`},
		{"theme as string", `{"theme": "dark"}`},
		{"theme null", `{"theme": null}`},
		{"theme fractional", `{"theme": 1.5}`},
		{"theme out of range", `{"theme": 3}`},
		{"theme negative", `{"theme": -1}`},
		{"windowPos not object", `{"windowPos": 5}`},
		{"windowPos missing height", `{"windowPos": {"x": 0, "y": 0, "width": 1, "maximized": false}}`},
		{"windowPos string x", `{"windowPos": {"x": "0", "y": 0, "width": 1, "height": 1, "maximized": false}}`},
		{"windowPos missing maximized", `{"windowPos": {"x": 0, "y": 0, "width": 1, "height": 1}}`},
		{"windowPos numeric maximized", `{"windowPos": {"x": 0, "y": 0, "width": 1, "height": 1, "maximized": 0}}`},
		{"hotkeys not object", `{"hotkeys": "Win+A"}`},
		{"hotkey not string", `{"hotkeys": {"scale": 65}}`},
		{"autoRestore not bool", `{"autoRestore": 1}`},
		{"downCount negative", `{"downCount": -1}`},
		{"downCount fractional", `{"downCount": 2.5}`},
		{"downCount too large", `{"downCount": 4294967296}`},
		{"downCount string", `{"downCount": "5"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, d := newStore(t)
			writeFile(t, d.localConfig(), tc.content)
			err := s.Initialize()
			assert.ErrorIs(t, err, settings.ErrMalformed)
			assertDefaults(t, s)
		})
	}
}

func TestInitializeAcceptsIntegralFloats(t *testing.T) {
	s, d := newStore(t)
	writeFile(t, d.localConfig(), `{"theme": 1.0, "downCount": 7e0}`)
	require.NoError(t, s.Initialize())
	assert.Equal(t, settings.Dark, s.Theme())
	assert.EqualValues(t, 7, s.DownCount())
}

func TestSave(t *testing.T) {
	t.Run("should round trip the whole state", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		require.NoError(t, s.Save())
		assert.FileExists(t, d.localConfig())

		s2 := settings.New(settings.WithExecutableDir(d.exe), settings.WithAppDataDir(d.appData))
		require.NoError(t, s2.Initialize())
		assertDefaults(t, s2)
	})
	t.Run("should round trip changed values", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		s.SetTheme(settings.Light)
		s.SetWindowRect(settings.Rect{X: 5, Y: 6, Width: 700, Height: 500})
		s.SetWindowMaximized(true)
		s.SetHotkey(hotkey.Overlay, hotkey.New(false, true, true, false, hotkey.VKF1+8))
		s.SetAutoRestore(true)
		s.SetDownCount(0)
		require.NoError(t, s.Save())

		s2 := settings.New(settings.WithExecutableDir(d.exe), settings.WithAppDataDir(d.appData))
		require.NoError(t, s2.Initialize())
		assert.Equal(t, s.Theme(), s2.Theme())
		assert.Equal(t, s.WindowRect(), s2.WindowRect())
		assert.Equal(t, s.IsWindowMaximized(), s2.IsWindowMaximized())
		assert.Equal(t, s.Hotkeys(), s2.Hotkeys())
		assert.Equal(t, s.IsAutoRestore(), s2.IsAutoRestore())
		assert.Equal(t, s.DownCount(), s2.DownCount())
	})
	t.Run("should always emit every key", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		require.NoError(t, s.Save())
		data, err := os.ReadFile(d.localConfig())
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"theme": 2,
			"windowPos": {"x": -2147483648, "y": -2147483648, "width": 1280, "height": 820, "maximized": false},
			"hotkeys": {"scale": "Win+Shift+A", "overlay": "Win+Shift+D"},
			"autoRestore": false,
			"downCount": 5
		}`, string(data))
		assert.Contains(t, string(data), "\n  \"theme\": 2")
	})
	t.Run("should fail when the config directory cannot be created", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		writeFile(t, filepath.Join(d.appData, settings.Version, "config"), "blocker")
		assert.ErrorIs(t, s.Save(), settings.ErrCreateDir)
	})
	t.Run("should fail when the config file cannot be written", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		require.NoError(t, os.MkdirAll(d.localConfig(), 0755))
		assert.ErrorIs(t, s.Save(), settings.ErrWrite)
	})
}

func TestPortableMode(t *testing.T) {
	t.Run("should switch to the executable directory", func(t *testing.T) {
		s, d := newStore(t)
		require.NoError(t, s.Initialize())
		s.SetPortableMode(true)
		assert.True(t, s.IsPortableMode())
		assert.Equal(t, d.exe, s.WorkingDir())
		require.NoError(t, s.Save())
		assert.FileExists(t, d.portableConfig())

		s2 := settings.New(settings.WithExecutableDir(d.exe), settings.WithAppDataDir(d.appData))
		require.NoError(t, s2.Initialize())
		assert.True(t, s2.IsPortableMode())
	})
	t.Run("should delete the portable config when turned off", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.portableConfig(), `{}`)
		require.NoError(t, s.Initialize())
		require.True(t, s.IsPortableMode())

		s.SetPortableMode(false)
		assert.False(t, s.IsPortableMode())
		assert.NoFileExists(t, d.portableConfig())
		assert.Equal(t, filepath.Join(d.appData, settings.Version), s.WorkingDir())
		assert.DirExists(t, s.WorkingDir())
	})
	t.Run("should do nothing when unchanged", func(t *testing.T) {
		s, d := newStore(t)
		writeFile(t, d.portableConfig(), `{}`)
		require.NoError(t, s.Initialize())
		s.SetPortableMode(true)
		assert.FileExists(t, d.portableConfig())
	})
}
