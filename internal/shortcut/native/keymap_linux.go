//go:build linux

package native

import xhotkey "golang.design/x/hotkey"

// KeyMap maps lower-cased canonical key names to X11 keysyms.
var KeyMap = map[string]xhotkey.Key{
	// Letters
	"a": xhotkey.KeyA,
	"b": xhotkey.KeyB,
	"c": xhotkey.KeyC,
	"d": xhotkey.KeyD,
	"e": xhotkey.KeyE,
	"f": xhotkey.KeyF,
	"g": xhotkey.KeyG,
	"h": xhotkey.KeyH,
	"i": xhotkey.KeyI,
	"j": xhotkey.KeyJ,
	"k": xhotkey.KeyK,
	"l": xhotkey.KeyL,
	"m": xhotkey.KeyM,
	"n": xhotkey.KeyN,
	"o": xhotkey.KeyO,
	"p": xhotkey.KeyP,
	"q": xhotkey.KeyQ,
	"r": xhotkey.KeyR,
	"s": xhotkey.KeyS,
	"t": xhotkey.KeyT,
	"u": xhotkey.KeyU,
	"v": xhotkey.KeyV,
	"w": xhotkey.KeyW,
	"x": xhotkey.KeyX,
	"y": xhotkey.KeyY,
	"z": xhotkey.KeyZ,

	// Numbers
	"0": xhotkey.Key0,
	"1": xhotkey.Key1,
	"2": xhotkey.Key2,
	"3": xhotkey.Key3,
	"4": xhotkey.Key4,
	"5": xhotkey.Key5,
	"6": xhotkey.Key6,
	"7": xhotkey.Key7,
	"8": xhotkey.Key8,
	"9": xhotkey.Key9,

	// Function keys
	"f1":  xhotkey.KeyF1,
	"f2":  xhotkey.KeyF2,
	"f3":  xhotkey.KeyF3,
	"f4":  xhotkey.KeyF4,
	"f5":  xhotkey.KeyF5,
	"f6":  xhotkey.KeyF6,
	"f7":  xhotkey.KeyF7,
	"f8":  xhotkey.KeyF8,
	"f9":  xhotkey.KeyF9,
	"f10": xhotkey.KeyF10,
	"f11": xhotkey.KeyF11,
	"f12": xhotkey.KeyF12,

	// Special keys
	"space":  xhotkey.KeySpace,
	"tab":    xhotkey.KeyTab,
	"enter":  xhotkey.KeyReturn,
	"esc":    xhotkey.KeyEscape,
	"delete": xhotkey.KeyDelete,
	"left":   xhotkey.KeyLeft,
	"right":  xhotkey.KeyRight,
	"up":     xhotkey.KeyUp,
	"down":   xhotkey.KeyDown,
}
