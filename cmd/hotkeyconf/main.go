package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	xappdirs "github.com/chasinglogic/appdirs"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/app"
	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
	"github.com/TanaroSch/hotkeyconf/internal/logging"
	"github.com/TanaroSch/hotkeyconf/internal/resources"
	"github.com/TanaroSch/hotkeyconf/internal/settings"
	"github.com/TanaroSch/hotkeyconf/internal/shortcut/native"
	"github.com/TanaroSch/hotkeyconf/internal/ui"
)

const appName = "hotkeyconf"

func main() {
	logLevel := flag.String("loglevel", "info", "log level: trace, debug, info, warn, error")
	logFile := flag.String("logfile", "", "log file path (default: per-user data directory)")
	notifyLevel := flag.String("notify-level", "warn", "minimum notification level: info, warn, error")
	showDirs := flag.Bool("show-dirs", false, "print config and log locations and exit")
	flag.Parse()

	logPath := *logFile
	if logPath == "" {
		logPath = filepath.Join(xappdirs.New(appName).UserData(), "log", appName+".log")
	}

	logger, closer, err := logging.New(logging.Options{Level: *logLevel, FilePath: logPath, Console: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store := settings.New(settings.WithLogger(logger))
	if *showDirs {
		fmt.Printf("Working directory: %s\n", store.WorkingDir())
		fmt.Printf("Config file:       %s\n", store.ConfigPath())
		fmt.Printf("Log file:          %s\n", logPath)
		return
	}

	logger.Info().Str("version", settings.Version).Msg("Starting")
	if err := store.Initialize(); err != nil {
		logger.Error().Err(err).Str("path", store.ConfigPath()).Msg("Failed to load settings")
		_ = zenity.Error(
			fmt.Sprintf("Could not load %s:\n%v\n\nFix or delete the file and start again.", store.ConfigPath(), err),
			zenity.Title(appName),
		)
		os.Exit(1)
	}

	if err := run(store, logger, *notifyLevel); err != nil {
		logger.Error().Err(err).Msg("Fatal error")
		os.Exit(1)
	}
}

func run(store *settings.Store, logger zerolog.Logger, notifyLevel string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	icon, err := resources.GetIcon()
	if err != nil {
		logger.Warn().Err(err).Msg("No tray icon available")
	}

	notifier := ui.NewNotificationManager(appName, ui.ParseLevel(notifyLevel), icon, logger)
	application := app.New(app.Options{
		Store:     store,
		Backend:   native.SelectBackend(logger),
		Installer: keyhook.NewSystem(logger, keyboardOptions(logger)...),
		Prompter:  ui.NewCapturePrompt(appName, logger),
		Notifier:  notifier,
		OpenFile: func(path string) error {
			return ui.OpenFileInDefaultApp(path, logger)
		},
		OnTrigger: func(a hotkey.Action) {
			notifier.Info(appName, fmt.Sprintf("%s hotkey pressed", a))
		},
		Logger: logger,
	})

	var tray *ui.SystrayManager
	tray = ui.NewSystrayManager(appName, settings.Version, icon, ui.TrayActions{
		OnReady: func() {
			application.AttachView(tray)
			application.Start()
		},
		OnEditHotkey:        application.EditHotkey,
		OnToggleAutoRestore: application.ToggleAutoRestore,
		OnSetTheme:          application.SetTheme,
		OnTogglePortable:    application.TogglePortable,
		OnOpenConfig:        application.OpenConfig,
		OnExit:              application.Shutdown,
	}, logger)

	tray.Run()
	return nil
}
