package shortcut

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/notify"
)

// Source provides the hotkey table and reports changes to it.
type Source interface {
	Hotkey(a hotkey.Action) hotkey.Hotkey
	OnHotkeyChanged(fn func(hotkey.Action)) notify.Token
	RemoveListener(tok notify.Token) bool
}

// Manager keeps the system-wide hotkeys in sync with a Source.
type Manager struct {
	mu         sync.Mutex
	src        Source
	backend    Backend
	onTrigger  func(hotkey.Action)
	logger     zerolog.Logger
	registered map[hotkey.Action]hotkey.Hotkey
	suspended  bool
	token      notify.Token
}

// NewManager creates a manager and subscribes it to hotkey changes of src.
// onTrigger is called from a background goroutine whenever a bound hotkey is pressed.
func NewManager(src Source, backend Backend, onTrigger func(hotkey.Action), logger zerolog.Logger) *Manager {
	m := &Manager{
		src:        src,
		backend:    backend,
		onTrigger:  onTrigger,
		logger:     logger,
		registered: make(map[hotkey.Action]hotkey.Hotkey),
	}
	m.token = src.OnHotkeyChanged(m.onHotkeyChanged)
	return m
}

// RegisterAll registers the hotkeys of every action, replacing any earlier
// registration. Failures for single actions are collected and returned together.
func (m *Manager) RegisterAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspended = false
	return m.registerAllLocked()
}

// UnregisterAll unregisters all currently registered hotkeys.
func (m *Manager) UnregisterAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterAllLocked()
}

// Suspend unregisters all hotkeys until Resume is called.
// Changes reported while suspended are picked up by Resume.
func (m *Manager) Suspend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suspended {
		return
	}
	m.suspended = true
	m.unregisterAllLocked()
	m.logger.Debug().Msg("Hotkeys suspended")
}

// Resume re-registers all hotkeys after Suspend.
func (m *Manager) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.suspended {
		return nil
	}
	m.suspended = false
	m.logger.Debug().Msg("Hotkeys resumed")
	return m.registerAllLocked()
}

// Registered returns the hotkey currently registered for a.
func (m *Manager) Registered(a hotkey.Action) (hotkey.Hotkey, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hk, ok := m.registered[a]
	return hk, ok
}

// Close unregisters everything and stops listening for changes.
func (m *Manager) Close() {
	m.src.RemoveListener(m.token)
	m.UnregisterAll()
}

func (m *Manager) onHotkeyChanged(a hotkey.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suspended {
		return
	}
	m.unregisterLocked(a)
	if err := m.registerLocked(a); err != nil {
		m.logger.Error().Err(err).Stringer("action", a).Msg("Failed to re-register hotkey")
	}
}

func (m *Manager) registerAllLocked() error {
	m.unregisterAllLocked()
	var errs []error
	for _, a := range hotkey.Actions() {
		if err := m.registerLocked(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) registerLocked(a hotkey.Action) error {
	hk := m.src.Hotkey(a)
	if !hk.IsValid() {
		m.logger.Info().Stringer("action", a).Str("hotkey", hk.String()).Msg("Skipping invalid hotkey")
		return nil
	}
	for other, bound := range m.registered {
		if other != a && bound == hk {
			return fmt.Errorf("hotkey '%s' for %s is already used by %s", hk, a, other)
		}
	}

	reg, err := m.backend.Register(hk)
	if err != nil {
		return fmt.Errorf("failed to register hotkey '%s' for %s: %w", hk, a, err)
	}
	m.registered[a] = hk

	go func() {
		for range reg.Keydown() {
			m.logger.Info().Stringer("action", a).Str("hotkey", hk.String()).Msg("Hotkey pressed")
			if m.onTrigger != nil {
				m.onTrigger(a)
			}
		}
	}()

	m.logger.Info().Stringer("action", a).Str("hotkey", hk.String()).Msg("Registered hotkey")
	return nil
}

func (m *Manager) unregisterLocked(a hotkey.Action) {
	hk, ok := m.registered[a]
	if !ok {
		return
	}
	delete(m.registered, a)
	if err := m.backend.Unregister(hk); err != nil {
		m.logger.Error().Err(err).Stringer("action", a).Msg("Failed to unregister hotkey")
	}
}

func (m *Manager) unregisterAllLocked() {
	for a := range m.registered {
		m.unregisterLocked(a)
	}
}
