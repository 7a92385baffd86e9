package hotkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

func TestHotkeyString(t *testing.T) {
	cases := []struct {
		name string
		hk   hotkey.Hotkey
		want string
	}{
		{"empty", hotkey.Hotkey{}, ""},
		{"win shift a", hotkey.New(true, false, true, false, 'A'), "Win+Shift+A"},
		{"all modifiers", hotkey.New(true, true, true, true, hotkey.VKF1+11), "Win+Ctrl+Shift+Alt+F12"},
		{"modifiers only", hotkey.Hotkey{Ctrl: true, Alt: true}, "Ctrl+Alt"},
		{"key only", hotkey.Hotkey{Code: hotkey.VKSpace}, "Space"},
		{"unnamed key", hotkey.Hotkey{Alt: true, Code: 0x07}, "Alt+0x07"},
		{"punctuation", hotkey.Hotkey{Ctrl: true, Code: hotkey.VKOem3}, "Ctrl+`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.hk.String())
		})
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want hotkey.Hotkey
	}{
		{"empty", "", hotkey.Hotkey{}},
		{"canonical", "Win+Shift+A", hotkey.New(true, false, true, false, 'A')},
		{"case insensitive", "wIN+sHIFT+a", hotkey.New(true, false, true, false, 'A')},
		{"any modifier order", "Alt+Ctrl+Delete", hotkey.New(false, true, false, true, hotkey.VKDelete)},
		{"aliases", "control+super+escape", hotkey.New(true, true, false, false, hotkey.VKEscape)},
		{"spaces around tokens", " Ctrl + F5 ", hotkey.Hotkey{Ctrl: true, Code: hotkey.VKF1 + 4}},
		{"last key wins", "Ctrl+A+B", hotkey.Hotkey{Ctrl: true, Code: 'B'}},
		{"unknown last key clears key", "Ctrl+A+Bogus", hotkey.Hotkey{Ctrl: true}},
		{"unknown tokens degrade", "Hyper+Meta", hotkey.Hotkey{}},
		{"hex key", "Shift+0x07", hotkey.Hotkey{Shift: true, Code: 0x07}},
		{"bad hex", "Shift+0xZZ", hotkey.Hotkey{Shift: true}},
		{"empty tokens skipped", "Win++A", hotkey.Hotkey{Win: true, Code: 'A'}},
		{"only separators", "+++", hotkey.Hotkey{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hotkey.Parse(tc.in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for mods := 1; mods < 16; mods++ {
		for code := 1; code < 256; code++ {
			hk := hotkey.New(mods&1 != 0, mods&2 != 0, mods&4 != 0, mods&8 != 0, hotkey.KeyCode(code))
			if !hk.IsValid() {
				continue
			}
			got := hotkey.Parse(hk.String())
			if !assert.Equal(t, hk, got, "round trip of %q", hk.String()) {
				return
			}
		}
	}
}

func TestIsEmptyAndIsValid(t *testing.T) {
	cases := []struct {
		name      string
		hk        hotkey.Hotkey
		wantEmpty bool
		wantValid bool
	}{
		{"zero", hotkey.Hotkey{}, true, false},
		{"modifier only", hotkey.Hotkey{Shift: true}, false, false},
		{"key only", hotkey.Hotkey{Code: 'A'}, false, false},
		{"modifier key as code", hotkey.Hotkey{Ctrl: true, Code: hotkey.VKLShift}, false, false},
		{"complete", hotkey.Hotkey{Win: true, Shift: true, Code: 'A'}, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantEmpty, tc.hk.IsEmpty())
			assert.Equal(t, tc.wantValid, tc.hk.IsValid())
		})
	}
}

func TestKeyCodeModifier(t *testing.T) {
	assert.Equal(t, hotkey.ModWin, hotkey.VKLWin.Modifier())
	assert.Equal(t, hotkey.ModWin, hotkey.VKRWin.Modifier())
	assert.Equal(t, hotkey.ModCtrl, hotkey.VKRControl.Modifier())
	assert.Equal(t, hotkey.ModShift, hotkey.VKShift.Modifier())
	assert.Equal(t, hotkey.ModAlt, hotkey.VKLMenu.Modifier())
	assert.Equal(t, hotkey.NoModifier, hotkey.KeyCode('A').Modifier())
	assert.False(t, hotkey.KeyCode('A').IsModifier())
}

func TestSetModifier(t *testing.T) {
	var hk hotkey.Hotkey
	hk.SetModifier(hotkey.ModCtrl, true)
	hk.SetModifier(hotkey.ModAlt, true)
	hk.SetModifier(hotkey.NoModifier, true)
	assert.Equal(t, hotkey.Hotkey{Ctrl: true, Alt: true}, hk)
	hk.SetModifier(hotkey.ModCtrl, false)
	assert.Equal(t, hotkey.Hotkey{Alt: true}, hk)
}

func TestText(t *testing.T) {
	hk := hotkey.New(true, false, true, false, 'D')
	b, err := hk.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "Win+Shift+D", string(b))

	var got hotkey.Hotkey
	assert.NoError(t, got.UnmarshalText([]byte("not a hotkey")))
	assert.True(t, got.IsEmpty())
}

func TestActions(t *testing.T) {
	assert.Equal(t, []hotkey.Action{hotkey.Scale, hotkey.Overlay}, hotkey.Actions())
	assert.Equal(t, "scale", hotkey.Scale.String())
	assert.Equal(t, "overlay", hotkey.Overlay.String())
	assert.Equal(t, "Action(7)", hotkey.Action(7).String())
	assert.False(t, hotkey.ActionCount.IsValid())
}

func TestDefaultHotkey(t *testing.T) {
	assert.Equal(t, "Win+Shift+A", hotkey.DefaultHotkey(hotkey.Scale).String())
	assert.Equal(t, "Win+Shift+D", hotkey.DefaultHotkey(hotkey.Overlay).String())
	assert.True(t, hotkey.DefaultHotkey(hotkey.ActionCount).IsEmpty())
}
