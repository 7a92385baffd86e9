//go:build linux

package main

import (
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
	"github.com/TanaroSch/hotkeyconf/internal/keyhook/xhook"
	"github.com/TanaroSch/hotkeyconf/internal/shortcut"
)

// keyboardOptions uses gohook on X11. Wayland hides other clients' keys from
// X11 tools, so there the evdev reader stays in place.
func keyboardOptions(logger zerolog.Logger) []keyhook.Option {
	if shortcut.DetectDisplayServer() != shortcut.DisplayServerX11 {
		logger.Info().Msg("No X11 session, capturing keys through evdev")
		return nil
	}
	return []keyhook.Option{keyhook.WithPlatform(xhook.Install)}
}
