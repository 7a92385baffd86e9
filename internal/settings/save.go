package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

type fileConfig struct {
	Theme       int                      `json:"theme"`
	WindowPos   fileWindowPos            `json:"windowPos"`
	Hotkeys     map[string]hotkey.Hotkey `json:"hotkeys"`
	AutoRestore bool                     `json:"autoRestore"`
	DownCount   uint32                   `json:"downCount"`
}

type fileWindowPos struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Maximized bool `json:"maximized"`
}

func newFileConfig(st state) fileConfig {
	fc := fileConfig{
		Theme: int(st.theme),
		WindowPos: fileWindowPos{
			X:         int(math.Round(st.windowRect.X)),
			Y:         int(math.Round(st.windowRect.Y)),
			Width:     int(math.Round(st.windowRect.Width)),
			Height:    int(math.Round(st.windowRect.Height)),
			Maximized: st.maximized,
		},
		Hotkeys:     make(map[string]hotkey.Hotkey, hotkey.ActionCount),
		AutoRestore: st.autoRestore,
		DownCount:   st.downCount,
	}
	for _, a := range hotkey.Actions() {
		fc.Hotkeys[a.String()] = st.hotkeys[a]
	}
	return fc
}

// Save writes the whole configuration to the config file in the working
// directory, creating the config directory when needed.
func (s *Store) Save() error {
	s.mu.RLock()
	st := s.st
	workingDir := s.workingDir
	s.mu.RUnlock()

	dir := filepath.Join(workingDir, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create config directory")
		return fmt.Errorf("%w '%s': %w", ErrCreateDir, dir, err)
	}

	data, err := json.MarshalIndent(newFileConfig(st), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := configPath(workingDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to save config")
		return fmt.Errorf("%w '%s': %w", ErrWrite, path, err)
	}
	s.logger.Debug().Str("path", path).Msg("Saved config")
	return nil
}
