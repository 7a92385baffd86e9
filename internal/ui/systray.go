package ui

import (
	"fmt"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/settings"
)

// TrayActions are invoked from menu clicks, each on its own goroutine.
type TrayActions struct {
	OnReady             func()
	OnEditHotkey        func(a hotkey.Action)
	OnToggleAutoRestore func()
	OnSetTheme          func(t settings.Theme)
	OnTogglePortable    func()
	OnOpenConfig        func()
	OnExit              func()
}

// SystrayManager owns the tray icon and its menu.
type SystrayManager struct {
	appName      string
	version      string
	embeddedIcon []byte
	actions      TrayActions
	logger       zerolog.Logger

	hotkeyItems   [hotkey.ActionCount]*systray.MenuItem
	miAutoRestore *systray.MenuItem
	miPortable    *systray.MenuItem
	themeItems    map[settings.Theme]*systray.MenuItem
}

func NewSystrayManager(appName, version string, embeddedIcon []byte, actions TrayActions, logger zerolog.Logger) *SystrayManager {
	return &SystrayManager{
		appName:      appName,
		version:      version,
		embeddedIcon: embeddedIcon,
		actions:      actions,
		logger:       logger,
		themeItems:   make(map[settings.Theme]*systray.MenuItem),
	}
}

// Run starts the tray and blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

// Quit stops the tray.
func (s *SystrayManager) Quit() {
	systray.Quit()
}

// SetHotkey updates the menu label of a.
func (s *SystrayManager) SetHotkey(a hotkey.Action, hk hotkey.Hotkey) {
	if !a.IsValid() || s.hotkeyItems[a] == nil {
		return
	}
	s.hotkeyItems[a].SetTitle(hotkeyTitle(a, hk))
}

func (s *SystrayManager) SetAutoRestore(on bool) {
	setChecked(s.miAutoRestore, on)
}

func (s *SystrayManager) SetPortable(on bool) {
	setChecked(s.miPortable, on)
}

func (s *SystrayManager) SetTheme(t settings.Theme) {
	for theme, item := range s.themeItems {
		setChecked(item, theme == t)
	}
}

func setChecked(item *systray.MenuItem, on bool) {
	if item == nil {
		return
	}
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func hotkeyTitle(a hotkey.Action, hk hotkey.Hotkey) string {
	label := hk.String()
	if label == "" {
		label = "not set"
	}
	return fmt.Sprintf("Edit %s hotkey (%s)...", a, label)
}

func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("%s %s", s.appName, s.version)
	systray.SetTitle(s.appName)
	systray.SetTooltip(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		s.logger.Warn().Msg("No embedded icon data to set for systray")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", s.version), s.appName+" version")
	miVersion.Disable()
	systray.AddSeparator()

	for _, a := range hotkey.Actions() {
		item := systray.AddMenuItem(hotkeyTitle(a, hotkey.Hotkey{}), fmt.Sprintf("Record a new hotkey for %s", a))
		s.hotkeyItems[a] = item
		s.handle(item, "Edit "+a.String()+" hotkey", func() {
			if s.actions.OnEditHotkey != nil {
				s.actions.OnEditHotkey(a)
			}
		})
	}
	systray.AddSeparator()

	s.miAutoRestore = systray.AddMenuItemCheckbox("Auto restore", "Restore scaling automatically", false)
	s.handle(s.miAutoRestore, "Auto restore", s.actions.OnToggleAutoRestore)

	miTheme := systray.AddMenuItem("Theme", "Choose the color theme")
	for _, t := range []settings.Theme{settings.Light, settings.Dark, settings.System} {
		item := miTheme.AddSubMenuItemCheckbox(t.String(), "Use the "+t.String()+" theme", false)
		s.themeItems[t] = item
		s.handle(item, "Theme "+t.String(), func() {
			if s.actions.OnSetTheme != nil {
				s.actions.OnSetTheme(t)
			}
		})
	}

	s.miPortable = systray.AddMenuItemCheckbox("Portable mode", "Keep the config next to the executable", false)
	s.handle(s.miPortable, "Portable mode", s.actions.OnTogglePortable)

	miOpenConfig := systray.AddMenuItem("Open Config File", "Open config.json in default editor")
	s.handle(miOpenConfig, "Open Config File", s.actions.OnOpenConfig)

	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")
	go func() {
		<-miQuit.ClickedCh
		s.logger.Info().Msg("Quit menu item clicked")
		systray.Quit()
	}()

	s.logger.Info().Msg("Systray ready and menu configured")
	if s.actions.OnReady != nil {
		s.actions.OnReady()
	}
}

func (s *SystrayManager) handle(item *systray.MenuItem, name string, fn func()) {
	if fn == nil {
		return
	}
	go func() {
		for range item.ClickedCh {
			s.logger.Debug().Str("item", name).Msg("Menu item clicked")
			fn()
		}
	}()
}

func (s *SystrayManager) onExit() {
	s.logger.Info().Msg("Systray exiting")
	if s.actions.OnExit != nil {
		s.actions.OnExit()
	}
}
