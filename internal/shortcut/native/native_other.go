//go:build !windows && !linux

package native

import (
	"fmt"

	xhotkey "golang.design/x/hotkey"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// nativeHotkey is not implemented on this OS.
// The project primarily targets Windows and Linux.
func nativeHotkey(hk hotkey.Hotkey) ([]xhotkey.Modifier, xhotkey.Key, error) {
	return nil, 0, fmt.Errorf("hotkeys are not supported on this OS")
}
