package settings

import (
	"fmt"
	"os"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/notify"
)

// reentrant reports whether a write to the field of reg comes from inside
// one of its own listeners. Such writes are dropped. The check cannot tell
// goroutines apart, so callers writing from several goroutines must
// serialize their writes.
func reentrant[T any](s *Store, reg *notify.Registry[T]) bool {
	if !reg.Emitting() {
		return false
	}
	s.logger.Warn().Str("field", reg.Field()).Msg("Dropped write to setting from inside its own change listener")
	return true
}

// SetTheme changes the theme. It panics when t is not a known theme.
func (s *Store) SetTheme(t Theme) {
	if !t.IsValid() {
		panic(fmt.Sprintf("settings: invalid theme %d", int(t)))
	}
	s.mu.Lock()
	if s.st.theme == t || reentrant(s, s.themeChanged) {
		s.mu.Unlock()
		return
	}
	s.st.theme = t
	s.mu.Unlock()

	s.logger.Info().Stringer("theme", t).Msg("Theme changed")
	s.themeChanged.Emit(t)
}

func (s *Store) SetWindowRect(r Rect) {
	s.mu.Lock()
	if s.st.windowRect == r || reentrant(s, s.windowRectChanged) {
		s.mu.Unlock()
		return
	}
	s.st.windowRect = r
	s.mu.Unlock()
	s.windowRectChanged.Emit(r)
}

func (s *Store) SetWindowMaximized(v bool) {
	s.mu.Lock()
	if s.st.maximized == v || reentrant(s, s.maximizedChanged) {
		s.mu.Unlock()
		return
	}
	s.st.maximized = v
	s.mu.Unlock()
	s.maximizedChanged.Emit(v)
}

// SetHotkey binds hk to a. Listeners receive the action that changed.
func (s *Store) SetHotkey(a hotkey.Action, hk hotkey.Hotkey) {
	if !a.IsValid() {
		panic(fmt.Sprintf("settings: invalid action %d", int(a)))
	}
	s.mu.Lock()
	if s.st.hotkeys[a] == hk || reentrant(s, s.hotkeyChanged) {
		s.mu.Unlock()
		return
	}
	s.st.hotkeys[a] = hk
	s.mu.Unlock()

	s.logger.Info().Stringer("action", a).Str("hotkey", hk.String()).Msg("Hotkey changed")
	s.hotkeyChanged.Emit(a)
}

func (s *Store) SetAutoRestore(v bool) {
	s.mu.Lock()
	if s.st.autoRestore == v || reentrant(s, s.autoRestoreChanged) {
		s.mu.Unlock()
		return
	}
	s.st.autoRestore = v
	s.mu.Unlock()
	s.autoRestoreChanged.Emit(v)
}

func (s *Store) SetDownCount(n uint32) {
	s.mu.Lock()
	if s.st.downCount == n || reentrant(s, s.downCountChanged) {
		s.mu.Unlock()
		return
	}
	s.st.downCount = n
	s.mu.Unlock()
	s.downCountChanged.Emit(n)
}

func (s *Store) OnThemeChanged(fn func(Theme)) notify.Token {
	return s.themeChanged.Add(fn)
}

func (s *Store) OnWindowRectChanged(fn func(Rect)) notify.Token {
	return s.windowRectChanged.Add(fn)
}

func (s *Store) OnWindowMaximizedChanged(fn func(bool)) notify.Token {
	return s.maximizedChanged.Add(fn)
}

func (s *Store) OnHotkeyChanged(fn func(hotkey.Action)) notify.Token {
	return s.hotkeyChanged.Add(fn)
}

func (s *Store) OnAutoRestoreChanged(fn func(bool)) notify.Token {
	return s.autoRestoreChanged.Add(fn)
}

func (s *Store) OnDownCountChanged(fn func(uint32)) notify.Token {
	return s.downCountChanged.Add(fn)
}

// RemoveListener removes a subscription made with any of the On methods.
// It reports false for unknown or already removed tokens.
func (s *Store) RemoveListener(tok notify.Token) bool {
	switch tok.Field() {
	case s.themeChanged.Field():
		return s.themeChanged.Remove(tok)
	case s.windowRectChanged.Field():
		return s.windowRectChanged.Remove(tok)
	case s.maximizedChanged.Field():
		return s.maximizedChanged.Remove(tok)
	case s.hotkeyChanged.Field():
		return s.hotkeyChanged.Remove(tok)
	case s.autoRestoreChanged.Field():
		return s.autoRestoreChanged.Remove(tok)
	case s.downCountChanged.Field():
		return s.downCountChanged.Remove(tok)
	}
	return false
}

// SetPortableMode switches between the executable directory and the per-user
// directory. Turning it off deletes the config file next to the executable.
// Call Save afterwards to write the config to the new location.
func (s *Store) SetPortableMode(portable bool) {
	s.mu.Lock()
	if s.portable == portable {
		s.mu.Unlock()
		return
	}
	if !portable {
		// Best effort.
		_ = os.Remove(configPath(s.workingDir))
	}
	s.portable = portable
	s.workingDir = s.resolveWorkingDir(portable)
	dir := s.workingDir
	s.mu.Unlock()

	s.logger.Info().Bool("portable", portable).Str("workingDir", dir).Msg("Portable mode changed")
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create working directory")
	}
}
