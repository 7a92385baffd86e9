//go:build windows

package keyhook

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	pmNoRemove   = 0x0000

	stopTimeout = 2 * time.Second
)

// kbdLLHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdLLHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// winMsg mirrors the Win32 MSG struct.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	ptX      int32
	ptY      int32
	lPrivate uint32
}

// Callbacks created by windows.NewCallback are never freed, so there is only one.
var (
	hookProcOnce sync.Once
	hookProc     uintptr
)

func lowLevelKeyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) == hcAction {
		var kind EventKind
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			kind = KeyDown
		case wmKeyUp, wmSysKeyUp:
			kind = KeyUp
		}
		kb := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		if kind != 0 && kb.vkCode > 0 && kb.vkCode <= 0xFF {
			if active.dispatch(Event{Kind: kind, Code: hotkey.KeyCode(kb.vkCode)}) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

type loopReady struct {
	threadID uint32
	err      error
}

// The hook callback is process-wide and always dispatches through the active
// slot, so dispatch is not needed here.
func installPlatform(_ func(Event) bool, logger zerolog.Logger) (func() error, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	hookProcOnce.Do(func() {
		hookProc = windows.NewCallback(lowLevelKeyboardProc)
	})

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan struct{})
	go runHookLoop(logger, readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		return nil, ready.err
	}

	return func() error {
		err := postQuit(ready.threadID)
		timer := time.NewTimer(stopTimeout)
		defer timer.Stop()
		select {
		case <-doneCh:
		case <-timer.C:
			logger.Warn().Uint32("threadID", ready.threadID).Msg("Keyboard hook loop did not stop in time")
			err = errors.Join(err, errors.New("keyboard hook loop stop timed out"))
		}
		return err
	}, nil
}

// runHookLoop installs the hook on a locked OS thread and pumps its messages
// until WM_QUIT arrives. The hook is removed on the same thread.
func runHookLoop(logger zerolog.Logger, readyCh chan<- loopReady, doneCh chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	threadID := windows.GetCurrentThreadId()

	// Creates the thread message queue so WM_QUIT can be posted to it.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		readyCh <- loopReady{err: fmt.Errorf("GetModuleHandleEx: %w", err)}
		return
	}
	hook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookProc, uintptr(module), 0)
	if hook == 0 {
		readyCh <- loopReady{err: fmt.Errorf("SetWindowsHookExW: %w", err)}
		return
	}
	defer func() {
		if ret, _, err := procUnhookWindowsHookEx.Call(hook); ret == 0 {
			logger.Error().Err(err).Msg("UnhookWindowsHookEx failed")
		}
	}()

	readyCh <- loopReady{threadID: threadID}

	for {
		var msg winMsg
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			logger.Warn().Err(err).Msg("GetMessageW failed, stopping keyboard hook loop")
			return
		case 0:
			return
		}
	}
}

func postQuit(threadID uint32) error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
	if ret != 0 {
		return nil
	}
	if err == syscall.Errno(0) {
		return errors.New("PostThreadMessageW failed")
	}
	return err
}
