package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyCode is a Windows virtual-key code. Zero means "no key".
type KeyCode uint8

// Modifier virtual keys.
const (
	VKShift    KeyCode = 0x10
	VKControl  KeyCode = 0x11
	VKMenu     KeyCode = 0x12
	VKLWin     KeyCode = 0x5B
	VKRWin     KeyCode = 0x5C
	VKLShift   KeyCode = 0xA0
	VKRShift   KeyCode = 0xA1
	VKLControl KeyCode = 0xA2
	VKRControl KeyCode = 0xA3
	VKLMenu    KeyCode = 0xA4
	VKRMenu    KeyCode = 0xA5
)

// Non-modifier virtual keys referenced by name elsewhere.
const (
	VKBack     KeyCode = 0x08
	VKTab      KeyCode = 0x09
	VKReturn   KeyCode = 0x0D
	VKPause    KeyCode = 0x13
	VKCapital  KeyCode = 0x14
	VKEscape   KeyCode = 0x1B
	VKSpace    KeyCode = 0x20
	VKPrior    KeyCode = 0x21
	VKNext     KeyCode = 0x22
	VKEnd      KeyCode = 0x23
	VKHome     KeyCode = 0x24
	VKLeft     KeyCode = 0x25
	VKUp       KeyCode = 0x26
	VKRight    KeyCode = 0x27
	VKDown     KeyCode = 0x28
	VKSnapshot KeyCode = 0x2C
	VKInsert   KeyCode = 0x2D
	VKDelete   KeyCode = 0x2E
	VKNumpad0  KeyCode = 0x60
	VKMultiply KeyCode = 0x6A
	VKAdd      KeyCode = 0x6B
	VKSubtract KeyCode = 0x6D
	VKDecimal  KeyCode = 0x6E
	VKDivide   KeyCode = 0x6F
	VKF1       KeyCode = 0x70
	VKNumLock  KeyCode = 0x90
	VKScroll   KeyCode = 0x91
	VKOem1     KeyCode = 0xBA
	VKOemPlus  KeyCode = 0xBB
	VKOemComma KeyCode = 0xBC
	VKOemMinus KeyCode = 0xBD
	VKOemDot   KeyCode = 0xBE
	VKOem2     KeyCode = 0xBF
	VKOem3     KeyCode = 0xC0
	VKOem4     KeyCode = 0xDB
	VKOem5     KeyCode = 0xDC
	VKOem6     KeyCode = 0xDD
	VKOem7     KeyCode = 0xDE
)

// ModifierKind identifies which modifier flag a virtual key drives.
type ModifierKind int

const (
	NoModifier ModifierKind = iota
	ModWin
	ModCtrl
	ModShift
	ModAlt
)

// Modifier reports which modifier flag c maps to, or NoModifier.
func (c KeyCode) Modifier() ModifierKind {
	switch c {
	case VKLWin, VKRWin:
		return ModWin
	case VKControl, VKLControl, VKRControl:
		return ModCtrl
	case VKShift, VKLShift, VKRShift:
		return ModShift
	case VKMenu, VKLMenu, VKRMenu:
		return ModAlt
	}
	return NoModifier
}

// IsModifier reports whether c is one of the Win, Ctrl, Shift or Alt keys.
func (c KeyCode) IsModifier() bool {
	return c.Modifier() != NoModifier
}

// String returns the canonical key name. Codes without a name are written
// as a hex token like "0x07" so they survive a round-trip through ParseKey.
func (c KeyCode) String() string {
	if name, ok := keyNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// ParseKey resolves a key token, case-insensitively. It returns 0 for
// anything it does not recognise.
func ParseKey(token string) KeyCode {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return 0
	}
	if c, ok := keysByName[t]; ok {
		return c
	}
	if strings.HasPrefix(t, "0x") {
		v, err := strconv.ParseUint(t[2:], 16, 8)
		if err != nil {
			return 0
		}
		return KeyCode(v)
	}
	return 0
}

var keyNames = map[KeyCode]string{
	VKBack:     "Backspace",
	VKTab:      "Tab",
	VKReturn:   "Enter",
	VKPause:    "Pause",
	VKCapital:  "CapsLock",
	VKEscape:   "Esc",
	VKSpace:    "Space",
	VKPrior:    "PageUp",
	VKNext:     "PageDown",
	VKEnd:      "End",
	VKHome:     "Home",
	VKLeft:     "Left",
	VKUp:       "Up",
	VKRight:    "Right",
	VKDown:     "Down",
	VKSnapshot: "PrintScreen",
	VKInsert:   "Insert",
	VKDelete:   "Delete",
	VKMultiply: "Multiply",
	VKAdd:      "Add",
	VKSubtract: "Subtract",
	VKDecimal:  "Decimal",
	VKDivide:   "Divide",
	VKNumLock:  "NumLock",
	VKScroll:   "ScrollLock",
	VKOem1:     ";",
	VKOemPlus:  "=",
	VKOemComma: ",",
	VKOemMinus: "-",
	VKOemDot:   ".",
	VKOem2:     "/",
	VKOem3:     "`",
	VKOem4:     "[",
	VKOem5:     "\\",
	VKOem6:     "]",
	VKOem7:     "'",
}

// aliases accepted by ParseKey in addition to the canonical names
var keyAliases = map[string]KeyCode{
	"escape":    VKEscape,
	"return":    VKReturn,
	"del":       VKDelete,
	"ins":       VKInsert,
	"pgup":      VKPrior,
	"pgdn":      VKNext,
	"back":      VKBack,
	"backquote": VKOem3,
	"grave":     VKOem3,
	"plus":      VKOemPlus,
	"minus":     VKOemMinus,
}

var keysByName map[string]KeyCode

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		keyNames[KeyCode(c)] = string(c)
	}
	for c := '0'; c <= '9'; c++ {
		keyNames[KeyCode(c)] = string(c)
	}
	for i := 0; i < 10; i++ {
		keyNames[VKNumpad0+KeyCode(i)] = fmt.Sprintf("Num%d", i)
	}
	for i := 0; i < 24; i++ {
		keyNames[VKF1+KeyCode(i)] = fmt.Sprintf("F%d", i+1)
	}
	keysByName = make(map[string]KeyCode, len(keyNames)+len(keyAliases))
	for c, name := range keyNames {
		keysByName[strings.ToLower(name)] = c
	}
	for name, c := range keyAliases {
		keysByName[name] = c
	}
}
