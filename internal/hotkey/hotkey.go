// Package hotkey defines keyboard shortcut values, the actions they are bound to,
// and the registration of those shortcuts as system-wide hotkeys.
package hotkey

import "strings"

// Hotkey is a keyboard shortcut: a set of modifiers plus one non-modifier key.
// The zero value is the empty hotkey.
type Hotkey struct {
	Win   bool
	Ctrl  bool
	Shift bool
	Alt   bool
	Code  KeyCode
}

// New returns a hotkey with the given modifiers and key.
func New(win, ctrl, shift, alt bool, code KeyCode) Hotkey {
	return Hotkey{Win: win, Ctrl: ctrl, Shift: shift, Alt: alt, Code: code}
}

// IsEmpty reports whether no modifier and no key is set.
func (h Hotkey) IsEmpty() bool {
	return !h.HasModifiers() && h.Code == 0
}

// HasModifiers reports whether at least one modifier is set.
func (h Hotkey) HasModifiers() bool {
	return h.Win || h.Ctrl || h.Shift || h.Alt
}

// IsValid reports whether the hotkey can be bound: at least one modifier
// and a key that is not itself a modifier.
func (h Hotkey) IsValid() bool {
	return h.HasModifiers() && h.Code != 0 && !h.Code.IsModifier()
}

// Equal reports whether both hotkeys have identical modifiers and key.
func (h Hotkey) Equal(other Hotkey) bool {
	return h == other
}

// SetModifier sets the flag for kind. NoModifier is ignored.
func (h *Hotkey) SetModifier(kind ModifierKind, on bool) {
	switch kind {
	case ModWin:
		h.Win = on
	case ModCtrl:
		h.Ctrl = on
	case ModShift:
		h.Shift = on
	case ModAlt:
		h.Alt = on
	}
}

// String returns the canonical form, e.g. "Win+Shift+A".
// Modifiers always come in the order Win, Ctrl, Shift, Alt.
func (h Hotkey) String() string {
	parts := make([]string, 0, 5)
	if h.Win {
		parts = append(parts, "Win")
	}
	if h.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if h.Shift {
		parts = append(parts, "Shift")
	}
	if h.Alt {
		parts = append(parts, "Alt")
	}
	if h.Code != 0 {
		parts = append(parts, h.Code.String())
	}
	return strings.Join(parts, "+")
}

// Parse decodes a "+"-joined hotkey string case-insensitively.
// It never fails: tokens it does not understand are dropped, and the last
// non-modifier token decides the key (an unknown one leaves it unset).
func Parse(s string) Hotkey {
	var h Hotkey
	for _, part := range strings.Split(s, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		switch token {
		case "win", "super":
			h.Win = true
		case "ctrl", "control":
			h.Ctrl = true
		case "shift":
			h.Shift = true
		case "alt":
			h.Alt = true
		default:
			h.Code = ParseKey(token)
		}
	}
	return h
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (h Hotkey) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never returns an error.
func (h *Hotkey) UnmarshalText(text []byte) error {
	*h = Parse(string(text))
	return nil
}
