//go:build linux

package keyhook

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// Linux has no way to swallow events from evdev without grabbing the device,
// so the hook only observes. Handler results are ignored.

const (
	evKey      = 1
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2

	// input_event on 64-bit Linux: timeval (16) + type (2) + code (2) + value (4).
	inputEventSize = 24
)

func installPlatform(dispatch func(Event) bool, logger zerolog.Logger) (func() error, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return nil, fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return nil, errors.New("no keyboard devices found (is user in 'input' group?)")
	}

	stop := make(chan struct{})
	var files []*os.File
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			logger.Debug().Err(err).Str("device", path).Msg("Skipping keyboard device")
			continue
		}
		files = append(files, f)
		go readEvents(f, stop, dispatch)
	}
	if len(files) == 0 {
		return nil, errors.New("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	logger.Info().Int("devices", len(files)).Msg("Observing keyboards through evdev; key presses still reach other applications")

	return func() error {
		close(stop)
		var errs []error
		for _, f := range files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}

func readEvents(f *os.File, stop <-chan struct{}, dispatch func(Event) bool) {
	buf := make([]byte, inputEventSize*16)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			select {
			case <-stop:
				return
			default:
			}
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))
			if evType != evKey {
				continue
			}
			code, ok := evdevKeys[evCode]
			if !ok {
				continue
			}
			switch evValue {
			case keyPress, keyRepeat:
				dispatch(Event{Kind: KeyDown, Code: code})
			case keyRelease:
				dispatch(Event{Kind: KeyUp, Code: code})
			}
		}
	}
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") && isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key"))
	if err != nil {
		return false
	}
	// Real keyboards have long key capability bitmaps.
	return len(strings.TrimSpace(string(data))) > 10
}

// evdevKeys maps linux/input-event-codes.h key codes to virtual-key codes.
var evdevKeys = map[uint16]hotkey.KeyCode{
	1:   hotkey.VKEscape,
	12:  hotkey.VKOemMinus,
	13:  hotkey.VKOemPlus,
	14:  hotkey.VKBack,
	15:  hotkey.VKTab,
	26:  hotkey.VKOem4,
	27:  hotkey.VKOem6,
	28:  hotkey.VKReturn,
	29:  hotkey.VKLControl,
	39:  hotkey.VKOem1,
	40:  hotkey.VKOem7,
	41:  hotkey.VKOem3,
	42:  hotkey.VKLShift,
	43:  hotkey.VKOem5,
	51:  hotkey.VKOemComma,
	52:  hotkey.VKOemDot,
	53:  hotkey.VKOem2,
	54:  hotkey.VKRShift,
	55:  hotkey.VKMultiply,
	56:  hotkey.VKLMenu,
	57:  hotkey.VKSpace,
	58:  hotkey.VKCapital,
	69:  hotkey.VKNumLock,
	70:  hotkey.VKScroll,
	71:  hotkey.VKNumpad0 + 7,
	72:  hotkey.VKNumpad0 + 8,
	73:  hotkey.VKNumpad0 + 9,
	74:  hotkey.VKSubtract,
	75:  hotkey.VKNumpad0 + 4,
	76:  hotkey.VKNumpad0 + 5,
	77:  hotkey.VKNumpad0 + 6,
	78:  hotkey.VKAdd,
	79:  hotkey.VKNumpad0 + 1,
	80:  hotkey.VKNumpad0 + 2,
	81:  hotkey.VKNumpad0 + 3,
	82:  hotkey.VKNumpad0,
	83:  hotkey.VKDecimal,
	87:  hotkey.VKF1 + 10,
	88:  hotkey.VKF1 + 11,
	96:  hotkey.VKReturn,
	97:  hotkey.VKRControl,
	98:  hotkey.VKDivide,
	99:  hotkey.VKSnapshot,
	100: hotkey.VKRMenu,
	102: hotkey.VKHome,
	103: hotkey.VKUp,
	104: hotkey.VKPrior,
	105: hotkey.VKLeft,
	106: hotkey.VKRight,
	107: hotkey.VKEnd,
	108: hotkey.VKDown,
	109: hotkey.VKNext,
	110: hotkey.VKInsert,
	111: hotkey.VKDelete,
	119: hotkey.VKPause,
	125: hotkey.VKLWin,
	126: hotkey.VKRWin,
}

func init() {
	// Digit row: KEY_1..KEY_9 are 2..10, KEY_0 is 11.
	for i := uint16(0); i < 9; i++ {
		evdevKeys[2+i] = hotkey.KeyCode('1' + i)
	}
	evdevKeys[11] = '0'
	for _, row := range []struct {
		first   uint16
		letters string
	}{{16, "QWERTYUIOP"}, {30, "ASDFGHJKL"}, {44, "ZXCVBNM"}} {
		for j := 0; j < len(row.letters); j++ {
			evdevKeys[row.first+uint16(j)] = hotkey.KeyCode(row.letters[j])
		}
	}
	// KEY_F1..KEY_F10 are 59..68, KEY_F13..KEY_F24 are 183..194.
	for i := uint16(0); i < 10; i++ {
		evdevKeys[59+i] = hotkey.VKF1 + hotkey.KeyCode(i)
	}
	for i := uint16(0); i < 12; i++ {
		evdevKeys[183+i] = hotkey.VKF1 + 12 + hotkey.KeyCode(i)
	}
}
