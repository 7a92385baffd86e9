//go:build linux

package native

import (
	"fmt"
	"strings"

	xhotkey "golang.design/x/hotkey"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// nativeHotkey converts hk into golang.design/x/hotkey modifiers and key.
//
// Linux implementation notes (X11):
// - Alt is typically Mod1
// - Super/Win is typically Mod4
func nativeHotkey(hk hotkey.Hotkey) ([]xhotkey.Modifier, xhotkey.Key, error) {
	key, exists := KeyMap[strings.ToLower(hk.Code.String())]
	if !exists {
		return nil, 0, fmt.Errorf("unsupported key: %s", hk.Code)
	}

	var modifiers []xhotkey.Modifier
	if hk.Win {
		modifiers = append(modifiers, xhotkey.Mod4)
	}
	if hk.Ctrl {
		modifiers = append(modifiers, xhotkey.ModCtrl)
	}
	if hk.Shift {
		modifiers = append(modifiers, xhotkey.ModShift)
	}
	if hk.Alt {
		modifiers = append(modifiers, xhotkey.Mod1)
	}
	return modifiers, key, nil
}
