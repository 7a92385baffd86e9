//go:build windows

package native

import (
	xhotkey "golang.design/x/hotkey"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// nativeHotkey converts hk into golang.design/x/hotkey modifiers and key.
// On Windows the library uses virtual-key codes directly.
func nativeHotkey(hk hotkey.Hotkey) ([]xhotkey.Modifier, xhotkey.Key, error) {
	var modifiers []xhotkey.Modifier
	if hk.Win {
		modifiers = append(modifiers, xhotkey.ModWin)
	}
	if hk.Ctrl {
		modifiers = append(modifiers, xhotkey.ModCtrl)
	}
	if hk.Shift {
		modifiers = append(modifiers, xhotkey.ModShift)
	}
	if hk.Alt {
		modifiers = append(modifiers, xhotkey.ModAlt)
	}
	return modifiers, xhotkey.Key(hk.Code), nil
}
