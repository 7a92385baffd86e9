package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// Initialize selects the working directory and loads the config file from it.
//
// A missing or empty file yields defaults. A file that cannot be read fails
// with ErrRead. A present key holding a value of the wrong type fails the
// whole load with ErrMalformed and leaves every field at its default.
// Hotkey slots left empty by a successful load receive the built-in defaults.
// Initialize does not notify listeners.
func (s *Store) Initialize() error {
	portable := fileExists(configPath(s.exeDir))
	workingDir := s.resolveWorkingDir(portable)
	path := configPath(workingDir)

	s.mu.Lock()
	s.portable = portable
	s.workingDir = workingDir
	s.st = defaultState()
	s.st.fillDefaultHotkeys()
	s.mu.Unlock()

	s.logger.Debug().Bool("portable", portable).Str("workingDir", workingDir).Msg("Selected working directory")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to read config file")
		return fmt.Errorf("%w '%s': %w", ErrRead, path, err)
	}

	st := defaultState()
	if len(data) == 0 {
		s.logger.Info().Str("path", path).Msg("Config file is empty, using defaults")
	} else if err := parseConfig(data, &st); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to parse config file")
		return fmt.Errorf("%w '%s': %w", ErrMalformed, path, err)
	}
	st.fillDefaultHotkeys()

	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	s.logger.Info().Str("path", path).Msg("Loaded config file")
	return nil
}

// parseConfig applies the keys present in data to st.
// Absent keys are left alone and unknown keys are ignored.
func parseConfig(data []byte, st *state) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return errors.New("top-level value is not an object")
	}

	if v, ok := root["theme"]; ok {
		n, ok := integer(v)
		if !ok {
			return fieldError("theme", "an integer", v)
		}
		if t := Theme(n); !t.IsValid() {
			return fmt.Errorf("theme %d is out of range", n)
		}
		st.theme = Theme(n)
	}

	if v, ok := root["windowPos"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return fieldError("windowPos", "an object", v)
		}
		var coords [4]float64
		for i, key := range []string{"x", "y", "width", "height"} {
			n, ok := integer(obj[key])
			if !ok {
				return fieldError("windowPos."+key, "an integer", obj[key])
			}
			coords[i] = float64(n)
		}
		maximized, ok := obj["maximized"].(bool)
		if !ok {
			return fieldError("windowPos.maximized", "a boolean", obj["maximized"])
		}
		st.windowRect = Rect{X: coords[0], Y: coords[1], Width: coords[2], Height: coords[3]}
		st.maximized = maximized
	}

	if v, ok := root["hotkeys"]; ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return fieldError("hotkeys", "an object", v)
		}
		for _, a := range hotkey.Actions() {
			raw, ok := obj[a.String()]
			if !ok {
				continue
			}
			text, ok := raw.(string)
			if !ok {
				return fieldError("hotkeys."+a.String(), "a string", raw)
			}
			st.hotkeys[a] = hotkey.Parse(text)
		}
	}

	if v, ok := root["autoRestore"]; ok {
		b, ok := v.(bool)
		if !ok {
			return fieldError("autoRestore", "a boolean", v)
		}
		st.autoRestore = b
	}

	if v, ok := root["downCount"]; ok {
		n, ok := integer(v)
		if !ok || n < 0 || n > math.MaxUint32 {
			return fieldError("downCount", "an unsigned 32-bit integer", v)
		}
		st.downCount = uint32(n)
	}
	return nil
}

// integer accepts JSON numbers without a fractional part.
func integer(v any) (int64, bool) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func fieldError(field, want string, got any) error {
	if got == nil {
		return fmt.Errorf("%s must be %s, but is missing or null", field, want)
	}
	return fmt.Errorf("%s must be %s, got %T", field, want, got)
}
