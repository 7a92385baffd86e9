// Package keyhook installs a system-wide low-level keyboard hook.
//
// Only one hook may be installed per process. The active Handler lives in a
// process-wide slot guarded by a checked acquire/release, and the platform
// callback forwards every key event to it.
package keyhook

import (
	"errors"
	"sync"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

var (
	// ErrBusy is returned by Install while another hook is installed.
	ErrBusy = errors.New("a keyboard hook is already installed")

	// ErrUnsupported is returned on platforms without a low-level keyboard hook.
	ErrUnsupported = errors.New("low-level keyboard hooks are not supported on this platform")
)

type EventKind int

const (
	KeyDown EventKind = iota + 1
	KeyUp
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	}
	return "unknown"
}

// Event is a single key transition.
type Event struct {
	Kind EventKind
	Code hotkey.KeyCode
}

// Handler receives key events. It runs on the hook thread and must return
// quickly. Returning true swallows the event where the platform allows it.
type Handler interface {
	HandleKey(ev Event) bool
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event) bool

func (f HandlerFunc) HandleKey(ev Event) bool {
	return f(ev)
}

// Hook is an installed keyboard hook. Release uninstalls it and may be
// called any number of times; only the first call has an effect.
type Hook interface {
	Release() error
}

// Installer installs keyboard hooks.
type Installer interface {
	Install(h Handler) (Hook, error)
}

// slot holds the handler of the one installed hook.
type slot struct {
	mu      sync.Mutex
	handler Handler
	owner   uint64
	nextID  uint64
}

var active slot

func (s *slot) acquire(h Handler) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler != nil {
		return 0, ErrBusy
	}
	s.nextID++
	s.owner = s.nextID
	s.handler = h
	return s.owner, nil
}

func (s *slot) release(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler == nil || s.owner != id {
		return false
	}
	s.handler = nil
	s.owner = 0
	return true
}

// dispatch forwards ev to the installed handler. It reports false when no
// handler is installed.
func (s *slot) dispatch(ev Event) bool {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return false
	}
	return h.HandleKey(ev)
}

// guard releases a hook exactly once.
type guard struct {
	id       uint64
	teardown func() error
	once     sync.Once
	err      error
}

func (g *guard) Release() error {
	g.once.Do(func() {
		if g.teardown != nil {
			g.err = g.teardown()
		}
		active.release(g.id)
	})
	return g.err
}
