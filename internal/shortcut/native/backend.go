// Package native registers system-wide hotkeys through golang.design/x/hotkey.
// On Linux that library needs an X display when it is loaded, so only the
// command imports this package.
package native

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	xhotkey "golang.design/x/hotkey"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/shortcut"
)

// LegacyBackend wraps the golang.design/x/hotkey library.
// It supports Windows and X11 on Linux, but not Wayland.
type LegacyBackend struct {
	mu             sync.Mutex
	registeredKeys map[string]*legacyHotkey
	displayServer  shortcut.DisplayServer
	logger         zerolog.Logger
}

// NewLegacyBackend creates a new legacy backend using golang.design/x/hotkey.
func NewLegacyBackend(logger zerolog.Logger) *LegacyBackend {
	ds := shortcut.DetectDisplayServer()
	logger.Debug().Stringer("displayServer", ds).Msg("Legacy backend: detected display server")
	return &LegacyBackend{
		registeredKeys: make(map[string]*legacyHotkey),
		displayServer:  ds,
		logger:         logger,
	}
}

// Name returns the name of this backend.
func (b *LegacyBackend) Name() string {
	return "Legacy (golang.design/x/hotkey)"
}

// IsAvailable checks if this backend can be used on the current system.
func (b *LegacyBackend) IsAvailable() bool {
	switch b.displayServer {
	case shortcut.DisplayServerWindows, shortcut.DisplayServerX11:
		return true
	case shortcut.DisplayServerWayland:
		b.logger.Info().Msg("Legacy backend: not available on Wayland")
		return false
	default:
		b.logger.Info().Msg("Legacy backend: unknown display server, assuming unavailable")
		return false
	}
}

// Register registers hk as a system-wide hotkey.
func (b *LegacyBackend) Register(hk hotkey.Hotkey) (shortcut.RegisteredHotkey, error) {
	if !hk.IsValid() {
		return nil, fmt.Errorf("hotkey %q is not a valid combination", hk)
	}
	key := hk.String()

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, exists := b.registeredKeys[key]; exists {
		b.logger.Debug().Str("hotkey", key).Msg("Legacy backend: already registered, returning existing")
		return existing, nil
	}

	mods, nativeKey, err := nativeHotkey(hk)
	if err != nil {
		return nil, fmt.Errorf("failed to translate hotkey '%s': %w", key, err)
	}

	native := xhotkey.New(mods, nativeKey)
	if err := native.Register(); err != nil {
		return nil, fmt.Errorf("failed to register hotkey '%s': %w", key, err)
	}

	wrapped := &legacyHotkey{
		hotkey:    native,
		hotkeyStr: key,
		keydownCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
		logger:    b.logger,
	}
	wrapped.startEventConverter()

	b.registeredKeys[key] = wrapped
	b.logger.Info().Str("hotkey", key).Msg("Legacy backend: registered hotkey")
	return wrapped, nil
}

// Unregister removes a single hotkey. Unknown hotkeys are ignored.
func (b *LegacyBackend) Unregister(hk hotkey.Hotkey) error {
	key := hk.String()

	b.mu.Lock()
	defer b.mu.Unlock()

	reg, exists := b.registeredKeys[key]
	if !exists {
		return nil
	}
	delete(b.registeredKeys, key)
	if err := reg.Close(); err != nil {
		b.logger.Error().Err(err).Str("hotkey", key).Msg("Legacy backend: unregister failed")
		return err
	}
	b.logger.Info().Str("hotkey", key).Msg("Legacy backend: unregistered hotkey")
	return nil
}

// UnregisterAll removes all registered hotkeys.
func (b *LegacyBackend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logger.Debug().Int("count", len(b.registeredKeys)).Msg("Legacy backend: unregistering all hotkeys")
	for key, reg := range b.registeredKeys {
		if err := reg.Close(); err != nil {
			b.logger.Error().Err(err).Str("hotkey", key).Msg("Legacy backend: unregister failed")
		}
	}
	b.registeredKeys = make(map[string]*legacyHotkey)
	return nil
}

// legacyHotkey wraps xhotkey.Hotkey to implement shortcut.RegisteredHotkey.
type legacyHotkey struct {
	hotkey    *xhotkey.Hotkey
	hotkeyStr string
	keydownCh chan struct{}
	stopCh    chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

// Keydown returns the channel that receives keydown events.
func (lh *legacyHotkey) Keydown() <-chan struct{} {
	return lh.keydownCh
}

// startEventConverter forwards xhotkey.Event values as struct{} signals.
func (lh *legacyHotkey) startEventConverter() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				lh.logger.Error().Interface("panic", r).Str("hotkey", lh.hotkeyStr).Msg("Recovered from panic in hotkey converter")
			}
		}()
		defer close(lh.keydownCh)

		for {
			select {
			case <-lh.stopCh:
				return
			case <-lh.hotkey.Keydown():
				select {
				case lh.keydownCh <- struct{}{}:
				case <-lh.stopCh:
					return
				}
			}
		}
	}()
}

// Close unregisters the hotkey and stops the converter. It is safe to call twice.
func (lh *legacyHotkey) Close() error {
	var err error
	lh.closeOnce.Do(func() {
		close(lh.stopCh)
		if uerr := lh.hotkey.Unregister(); uerr != nil {
			err = fmt.Errorf("failed to unregister hotkey '%s': %w", lh.hotkeyStr, uerr)
		}
	})
	return err
}

// SelectBackend chooses the backend for the current environment.
// It returns nil when no backend can serve the display server in use.
func SelectBackend(logger zerolog.Logger) shortcut.Backend {
	ds := shortcut.DetectDisplayServer()
	switch ds {
	case shortcut.DisplayServerWindows, shortcut.DisplayServerX11:
		backend := NewLegacyBackend(logger)
		if backend.IsAvailable() {
			logger.Info().Str("backend", backend.Name()).Stringer("displayServer", ds).Msg("Selected hotkey backend")
			return backend
		}
		logger.Warn().Stringer("displayServer", ds).Msg("Legacy backend not available")
		return nil
	case shortcut.DisplayServerWayland:
		logger.Warn().Msg("Wayland detected, global hotkeys are unavailable")
		return nil
	default:
		logger.Warn().Stringer("displayServer", ds).Msg("Global hotkeys are unavailable on this display server")
		return nil
	}
}
