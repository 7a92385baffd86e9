package keyhook

import "github.com/TanaroSch/hotkeyconf/internal/hotkey"

// KeysymToKeyCode maps an X11 keysym to a virtual-key code.
func KeysymToKeyCode(sym uint32) (hotkey.KeyCode, bool) {
	switch {
	case sym >= '0' && sym <= '9', sym >= 'A' && sym <= 'Z':
		return hotkey.KeyCode(sym), true
	case sym >= 'a' && sym <= 'z':
		return hotkey.KeyCode(sym - 'a' + 'A'), true
	case sym >= xkKP0 && sym <= xkKP0+9:
		return hotkey.VKNumpad0 + hotkey.KeyCode(sym-xkKP0), true
	case sym >= xkF1 && sym < xkF1+24:
		return hotkey.VKF1 + hotkey.KeyCode(sym-xkF1), true
	}
	code, ok := keysyms[sym]
	return code, ok
}

const (
	xkKP0 = 0xffb0
	xkF1  = 0xffbe
)

// keysyms covers X11 keysymdef.h names outside the contiguous ranges.
var keysyms = map[uint32]hotkey.KeyCode{
	0x0020: hotkey.VKSpace,
	0x0027: hotkey.VKOem7,     // apostrophe
	0x002c: hotkey.VKOemComma, // comma
	0x002d: hotkey.VKOemMinus, // minus
	0x002e: hotkey.VKOemDot,   // period
	0x002f: hotkey.VKOem2,     // slash
	0x003b: hotkey.VKOem1,     // semicolon
	0x003d: hotkey.VKOemPlus,  // equal
	0x005b: hotkey.VKOem4,     // bracketleft
	0x005c: hotkey.VKOem5,     // backslash
	0x005d: hotkey.VKOem6,     // bracketright
	0x0060: hotkey.VKOem3,     // grave
	0xfe03: hotkey.VKRMenu,    // ISO_Level3_Shift (AltGr)
	0xff08: hotkey.VKBack,
	0xff09: hotkey.VKTab,
	0xff0d: hotkey.VKReturn,
	0xff13: hotkey.VKPause,
	0xff14: hotkey.VKScroll,
	0xff1b: hotkey.VKEscape,
	0xff50: hotkey.VKHome,
	0xff51: hotkey.VKLeft,
	0xff52: hotkey.VKUp,
	0xff53: hotkey.VKRight,
	0xff54: hotkey.VKDown,
	0xff55: hotkey.VKPrior,
	0xff56: hotkey.VKNext,
	0xff57: hotkey.VKEnd,
	0xff61: hotkey.VKSnapshot,
	0xff63: hotkey.VKInsert,
	0xff7f: hotkey.VKNumLock,
	0xff8d: hotkey.VKReturn, // KP_Enter
	0xffaa: hotkey.VKMultiply,
	0xffab: hotkey.VKAdd,
	0xffad: hotkey.VKSubtract,
	0xffae: hotkey.VKDecimal,
	0xffaf: hotkey.VKDivide,
	0xffe1: hotkey.VKLShift,
	0xffe2: hotkey.VKRShift,
	0xffe3: hotkey.VKLControl,
	0xffe4: hotkey.VKRControl,
	0xffe5: hotkey.VKCapital,
	0xffe7: hotkey.VKLWin, // Meta_L
	0xffe8: hotkey.VKRWin, // Meta_R
	0xffe9: hotkey.VKLMenu,
	0xffea: hotkey.VKRMenu,
	0xffeb: hotkey.VKLWin,
	0xffec: hotkey.VKRWin,
	0xffff: hotkey.VKDelete,
}
