package shortcut

import (
	"errors"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// ErrBackendNotAvailable is returned when a backend cannot be used on the current system.
var ErrBackendNotAvailable = errors.New("backend not available on this system")

// Backend abstracts the OS facility that turns a hotkey.Hotkey into a system-wide shortcut.
// This allows the manager to be driven by a fake in tests and to pick an
// implementation per display server.
type Backend interface {
	// Register registers a single hotkey and returns a handle for it.
	Register(hk hotkey.Hotkey) (RegisteredHotkey, error)

	// Unregister removes a previously registered hotkey.
	Unregister(hk hotkey.Hotkey) error

	// UnregisterAll removes all hotkeys registered by this backend.
	UnregisterAll() error

	// Name returns a human-readable name for this backend (for logging).
	Name() string

	// IsAvailable returns true if this backend can be used on the current system.
	IsAvailable() bool
}

// RegisteredHotkey represents a registered hotkey and provides a channel
// that receives events when the hotkey is pressed.
type RegisteredHotkey interface {
	// Keydown returns a channel that receives an event for every press.
	// The channel is closed once the hotkey is closed.
	Keydown() <-chan struct{}

	// Close cleans up resources associated with this hotkey.
	Close() error
}
