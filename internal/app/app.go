// Package app wires the settings store, global hotkeys, hotkey capture and
// the tray UI together.
package app

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/capture"
	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
	"github.com/TanaroSch/hotkeyconf/internal/notify"
	"github.com/TanaroSch/hotkeyconf/internal/settings"
	"github.com/TanaroSch/hotkeyconf/internal/shortcut"
)

// View shows the current settings, typically in the tray menu.
type View interface {
	SetHotkey(a hotkey.Action, hk hotkey.Hotkey)
	SetAutoRestore(on bool)
	SetTheme(t settings.Theme)
	SetPortable(on bool)
}

// Prompter runs an interactive capture session for an action.
type Prompter interface {
	Capture(c *capture.Capturer, a hotkey.Action) (committed bool, err error)
}

type Notifier interface {
	Info(title, message string)
	Warn(title, message string)
	Error(title, message string)
}

type Options struct {
	Store *settings.Store
	// Backend registers global hotkeys. Nil disables them.
	Backend   shortcut.Backend
	Installer keyhook.Installer
	Prompter  Prompter
	Notifier  Notifier
	// OpenFile opens a file in the default editor.
	OpenFile func(path string) error
	// OnTrigger is called when a bound hotkey is pressed.
	OnTrigger func(a hotkey.Action)
	Logger    zerolog.Logger
}

// Application represents the main application.
type Application struct {
	store     *settings.Store
	manager   *shortcut.Manager
	capturer  *capture.Capturer
	prompter  Prompter
	notifier  Notifier
	openFile  func(path string) error
	onTrigger func(a hotkey.Action)
	logger    zerolog.Logger

	// writeMu serializes store writes from menu goroutines. A setter called
	// while another goroutine notifies the same field would be dropped.
	writeMu sync.Mutex

	mu     sync.Mutex
	view   View
	tokens []notify.Token
}

func New(opts Options) *Application {
	a := &Application{
		store:     opts.Store,
		prompter:  opts.Prompter,
		notifier:  opts.Notifier,
		openFile:  opts.OpenFile,
		onTrigger: opts.OnTrigger,
		logger:    opts.Logger,
	}
	a.capturer = capture.NewCapturer(opts.Store, opts.Installer, capture.WithLogger(opts.Logger))
	if opts.Backend != nil {
		a.manager = shortcut.NewManager(opts.Store, opts.Backend, a.onHotkeyTriggered, opts.Logger)
	} else {
		a.logger.Warn().Msg("No hotkey backend available, global hotkeys are disabled")
	}
	return a
}

// Start subscribes to setting changes and registers the global hotkeys.
func (a *Application) Start() {
	a.mu.Lock()
	a.tokens = append(a.tokens,
		a.store.OnHotkeyChanged(a.onHotkeyChanged),
		a.store.OnAutoRestoreChanged(func(on bool) {
			a.withView(func(v View) { v.SetAutoRestore(on) })
		}),
		a.store.OnThemeChanged(func(t settings.Theme) {
			a.withView(func(v View) { v.SetTheme(t) })
		}),
	)
	a.mu.Unlock()

	if a.manager == nil {
		return
	}
	if err := a.manager.RegisterAll(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to register some hotkeys")
		a.notifier.Warn("Hotkey Registration Issue", fmt.Sprintf("Some hotkeys could not be registered: %v", err))
	}
}

// AttachView sets the view and fills it with the current settings.
func (a *Application) AttachView(v View) {
	a.mu.Lock()
	a.view = v
	a.mu.Unlock()

	for _, act := range hotkey.Actions() {
		v.SetHotkey(act, a.store.Hotkey(act))
	}
	v.SetAutoRestore(a.store.IsAutoRestore())
	v.SetTheme(a.store.Theme())
	v.SetPortable(a.store.IsPortableMode())
}

func (a *Application) withView(fn func(v View)) {
	a.mu.Lock()
	v := a.view
	a.mu.Unlock()
	if v != nil {
		fn(v)
	}
}

func (a *Application) onHotkeyChanged(act hotkey.Action) {
	hk := a.store.Hotkey(act)
	a.withView(func(v View) { v.SetHotkey(act, hk) })
}

func (a *Application) onHotkeyTriggered(act hotkey.Action) {
	a.logger.Info().Stringer("action", act).Msg("Hotkey triggered")
	if a.onTrigger != nil {
		a.onTrigger(act)
	}
}

// EditHotkey records a new hotkey for act. Global hotkeys are suspended while
// the capture prompt is open.
func (a *Application) EditHotkey(act hotkey.Action) {
	if a.manager != nil {
		a.manager.Suspend()
		defer func() {
			if err := a.manager.Resume(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to re-register hotkeys")
				a.notifier.Warn("Hotkey Registration Issue", fmt.Sprintf("Some hotkeys could not be registered: %v", err))
			}
		}()
	}

	committed, err := a.prompter.Capture(a.capturer, act)
	switch {
	case errors.Is(err, capture.ErrSessionActive):
		a.notifier.Info("Hotkey Capture", "Another hotkey is being edited already.")
		return
	case errors.Is(err, capture.ErrInvalidCandidate):
		a.notifier.Warn("Hotkey Not Saved", fmt.Sprintf("The %s hotkey needs a modifier and a key not used by another action.", act))
		return
	case err != nil:
		a.logger.Error().Err(err).Stringer("action", act).Msg("Hotkey capture failed")
		a.notifier.Error("Hotkey Capture Failed", err.Error())
		return
	}
	if !committed {
		a.logger.Info().Stringer("action", act).Msg("Hotkey capture cancelled")
		return
	}
	a.writeMu.Lock()
	saved := a.save()
	a.writeMu.Unlock()
	if saved {
		a.notifier.Info("Hotkey Updated", fmt.Sprintf("%s is now bound to %s.", act, a.store.Hotkey(act)))
	}
}

func (a *Application) ToggleAutoRestore() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.store.SetAutoRestore(!a.store.IsAutoRestore())
	a.save()
}

func (a *Application) SetTheme(t settings.Theme) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.store.SetTheme(t)
	a.save()
	// Re-check the item in case the click only unchecked it.
	a.withView(func(v View) { v.SetTheme(a.store.Theme()) })
}

// TogglePortable moves the config between the executable and the per-user directory.
func (a *Application) TogglePortable() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.store.SetPortableMode(!a.store.IsPortableMode())
	a.save()
	portable := a.store.IsPortableMode()
	a.withView(func(v View) { v.SetPortable(portable) })
	a.notifier.Info("Portable Mode", fmt.Sprintf("Config is now stored in %s.", a.store.WorkingDir()))
}

// OpenConfig opens the config file, writing it first if it does not exist yet.
func (a *Application) OpenConfig() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	path := a.store.ConfigPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if !a.save() {
			return
		}
	}
	if a.openFile == nil {
		return
	}
	if err := a.openFile(path); err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Failed to open config file")
		a.notifier.Warn("Error Opening File", fmt.Sprintf("Could not open %s: %v", path, err))
	}
}

// Shutdown ends any capture, unregisters hotkeys and saves the settings.
func (a *Application) Shutdown() {
	a.capturer.Close()
	if a.manager != nil {
		a.manager.Close()
	}
	a.mu.Lock()
	tokens := a.tokens
	a.tokens = nil
	a.mu.Unlock()
	for _, tok := range tokens {
		a.store.RemoveListener(tok)
	}
	a.writeMu.Lock()
	a.save()
	a.writeMu.Unlock()
	a.logger.Info().Msg("Application shut down")
}

func (a *Application) save() bool {
	if err := a.store.Save(); err != nil {
		a.notifier.Error("Save Error", fmt.Sprintf("Failed to save settings: %v", err))
		return false
	}
	return true
}
