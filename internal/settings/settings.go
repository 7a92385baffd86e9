// Package settings implements the persisted application configuration:
// working-directory selection, strict JSON loading, saving and per-field
// change notification.
package settings

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	xappdirs "github.com/chasinglogic/appdirs"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/notify"
)

// Version names the per-user working directory in non-portable mode.
const Version = "0.4.0"

const (
	appName        = "hotkeyconf"
	configDirName  = "config"
	configFileName = "config.json"
)

var (
	ErrRead      = errors.New("failed to read config file")
	ErrMalformed = errors.New("malformed config file")
	ErrCreateDir = errors.New("failed to create config directory")
	ErrWrite     = errors.New("failed to write config file")
)

// Theme is the UI color theme.
type Theme int

const (
	Light Theme = iota
	Dark
	System
)

func (t Theme) String() string {
	switch t {
	case Light:
		return "light"
	case Dark:
		return "dark"
	case System:
		return "system"
	}
	return fmt.Sprintf("Theme(%d)", int(t))
}

func (t Theme) IsValid() bool {
	return t >= Light && t <= System
}

// UseDefault lets the OS choose a window coordinate.
const UseDefault = math.MinInt32

// Rect is the main window geometry. All values are integral.
type Rect struct {
	X, Y, Width, Height float64
}

// DefaultRect is the window geometry used when nothing was saved.
var DefaultRect = Rect{X: UseDefault, Y: UseDefault, Width: 1280, Height: 820}

const defaultDownCount = 5

type state struct {
	theme       Theme
	windowRect  Rect
	maximized   bool
	hotkeys     [hotkey.ActionCount]hotkey.Hotkey
	autoRestore bool
	downCount   uint32
}

func defaultState() state {
	return state{
		theme:      System,
		windowRect: DefaultRect,
		downCount:  defaultDownCount,
	}
}

func (st *state) fillDefaultHotkeys() {
	for _, a := range hotkey.Actions() {
		if st.hotkeys[a].IsEmpty() {
			st.hotkeys[a] = hotkey.DefaultHotkey(a)
		}
	}
}

// Store owns the configuration. Setters notify the listeners of the changed
// field synchronously on the calling goroutine, in registration order.
// Setters are meant to be called from a single goroutine; getters may be
// called from anywhere.
type Store struct {
	exeDir     string
	appDataDir string
	logger     zerolog.Logger

	mu         sync.RWMutex
	workingDir string
	portable   bool
	st         state

	themeChanged       *notify.Registry[Theme]
	windowRectChanged  *notify.Registry[Rect]
	maximizedChanged   *notify.Registry[bool]
	hotkeyChanged      *notify.Registry[hotkey.Action]
	autoRestoreChanged *notify.Registry[bool]
	downCountChanged   *notify.Registry[uint32]
}

type Option func(*Store)

// WithExecutableDir sets the directory checked for a portable config.
func WithExecutableDir(dir string) Option {
	return func(s *Store) { s.exeDir = dir }
}

// WithAppDataDir sets the per-user data root used outside portable mode.
func WithAppDataDir(dir string) Option {
	return func(s *Store) { s.appDataDir = dir }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a store holding default values. Call Initialize to load the config file.
func New(opts ...Option) *Store {
	s := &Store{
		logger:             zerolog.Nop(),
		st:                 defaultState(),
		themeChanged:       notify.NewRegistry[Theme]("theme"),
		windowRectChanged:  notify.NewRegistry[Rect]("windowPos"),
		maximizedChanged:   notify.NewRegistry[bool]("maximized"),
		hotkeyChanged:      notify.NewRegistry[hotkey.Action]("hotkeys"),
		autoRestoreChanged: notify.NewRegistry[bool]("autoRestore"),
		downCountChanged:   notify.NewRegistry[uint32]("downCount"),
	}
	s.st.fillDefaultHotkeys()
	for _, o := range opts {
		o(s)
	}
	if s.exeDir == "" {
		exe, err := os.Executable()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Could not locate executable, using current directory")
			s.exeDir = "."
		} else {
			s.exeDir = filepath.Dir(exe)
		}
	}
	if s.appDataDir == "" {
		s.appDataDir = xappdirs.New(appName).UserData()
	}
	s.workingDir = s.resolveWorkingDir(false)
	return s
}

func (s *Store) resolveWorkingDir(portable bool) string {
	if portable {
		return s.exeDir
	}
	return filepath.Join(s.appDataDir, Version)
}

func configPath(workingDir string) string {
	return filepath.Join(workingDir, configDirName, configFileName)
}

// WorkingDir returns the directory that holds the config directory.
func (s *Store) WorkingDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDir
}

// ConfigPath returns the path of the config file in the current working directory.
func (s *Store) ConfigPath() string {
	return configPath(s.WorkingDir())
}

func (s *Store) IsPortableMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portable
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.theme
}

func (s *Store) WindowRect() Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.windowRect
}

func (s *Store) IsWindowMaximized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.maximized
}

// Hotkey returns the hotkey bound to a. Invalid actions yield an empty hotkey.
func (s *Store) Hotkey(a hotkey.Action) hotkey.Hotkey {
	if !a.IsValid() {
		return hotkey.Hotkey{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.hotkeys[a]
}

// Hotkeys returns a copy of the whole hotkey table.
func (s *Store) Hotkeys() [hotkey.ActionCount]hotkey.Hotkey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.hotkeys
}

func (s *Store) IsAutoRestore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.autoRestore
}

func (s *Store) DownCount() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.downCount
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
