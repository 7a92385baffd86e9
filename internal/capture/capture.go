// Package capture records a new hotkey for an action from live keyboard input.
//
// A Capturer runs at most one Session at a time. The session installs a
// low-level keyboard hook, builds a candidate from the keys held down and
// writes it to the store on Commit. The hook is released exactly once,
// whichever way the session ends.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ErikKalkoken/go-set"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
)

var (
	ErrSessionActive    = errors.New("a capture session is already active")
	ErrInvalidCandidate = errors.New("captured hotkey is not valid")
	ErrNotPreviewing    = errors.New("capture session has ended")
)

// Store is the part of the settings store a capture session needs.
type Store interface {
	Hotkey(a hotkey.Action) hotkey.Hotkey
	SetHotkey(a hotkey.Action, hk hotkey.Hotkey)
}

type State int

const (
	Idle State = iota
	Previewing
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrorState tells why a candidate cannot be committed.
type ErrorState int

const (
	None ErrorState = iota
	Incomplete
	Duplicate
)

func (e ErrorState) String() string {
	switch e {
	case None:
		return "none"
	case Incomplete:
		return "incomplete"
	case Duplicate:
		return "duplicate"
	}
	return fmt.Sprintf("ErrorState(%d)", int(e))
}

// Capturer owns the current session slot.
type Capturer struct {
	store     Store
	installer keyhook.Installer
	logger    zerolog.Logger

	mu      sync.Mutex
	current *Session
}

type Option func(*Capturer)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Capturer) { c.logger = logger }
}

func NewCapturer(store Store, installer keyhook.Installer, opts ...Option) *Capturer {
	c := &Capturer{
		store:     store,
		installer: installer,
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SessionOption configures a single session.
type SessionOption func(*Session)

// WithOnChange sets a function called whenever the candidate or its error
// state changes. It runs on the hook thread, must return quickly and must not
// call Commit, Cancel or Close.
func WithOnChange(fn func(candidate hotkey.Hotkey, es ErrorState)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// Begin starts capturing a hotkey for a. It fails with ErrSessionActive while
// another session is open.
func (c *Capturer) Begin(a hotkey.Action, opts ...SessionOption) (*Session, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("cannot capture hotkey for unknown action %s", a)
	}

	c.mu.Lock()
	if c.current != nil {
		busy := c.current.action
		c.mu.Unlock()
		c.logger.Error().Stringer("action", a).Stringer("active", busy).Msg("Refusing to begin a second capture session")
		return nil, ErrSessionActive
	}
	s := &Session{
		c:        c,
		action:   a,
		baseline: c.store.Hotkey(a),
		state:    Previewing,
		errState: Incomplete,
	}
	for _, o := range opts {
		o(s)
	}
	c.current = s
	c.mu.Unlock()

	hook, err := c.installer.Install(s)
	if err != nil {
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		c.logger.Error().Err(err).Stringer("action", a).Msg("Failed to install keyboard hook")
		return nil, fmt.Errorf("failed to begin capture for %s: %w", a, err)
	}
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()

	c.logger.Info().Stringer("action", a).Str("baseline", s.baseline.String()).Msg("Capture started")
	return s, nil
}

// Active returns the open session or nil.
func (c *Capturer) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close tears down the open session, if any, without committing it.
func (c *Capturer) Close() {
	if s := c.Active(); s != nil {
		s.Close()
	}
}

// Session is one capture. Its methods are safe for concurrent use.
type Session struct {
	c        *Capturer
	action   hotkey.Action
	baseline hotkey.Hotkey
	onChange func(hotkey.Hotkey, ErrorState)
	endOnce  sync.Once

	mu        sync.Mutex
	state     State
	pressed   set.Set[hotkey.KeyCode]
	code      hotkey.KeyCode
	candidate hotkey.Hotkey
	errState  ErrorState
	hook      keyhook.Hook
}

// HandleKey updates the candidate from a key event. It consumes every event
// while the session is previewing.
func (s *Session) HandleKey(ev keyhook.Event) bool {
	s.mu.Lock()
	if s.state != Previewing {
		s.mu.Unlock()
		return false
	}
	var changed bool
	switch ev.Kind {
	case keyhook.KeyDown:
		// Auto-repeat of a held key.
		if s.pressed.Contains(ev.Code) {
			break
		}
		s.pressed.Add(ev.Code)
		if !ev.Code.IsModifier() {
			s.code = ev.Code
		}
		candidate := s.snapshot()
		es := s.validate(candidate)
		changed = candidate != s.candidate || es != s.errState
		s.candidate, s.errState = candidate, es
	case keyhook.KeyUp:
		// The candidate stays as it is so it can be confirmed after release.
		s.pressed.Delete(ev.Code)
		if ev.Code == s.code {
			s.code = 0
		}
	}
	candidate, es, fn := s.candidate, s.errState, s.onChange
	s.mu.Unlock()

	if changed && fn != nil {
		fn(candidate, es)
	}
	return true
}

func (s *Session) snapshot() hotkey.Hotkey {
	hk := hotkey.Hotkey{Code: s.code}
	for c := range s.pressed.All() {
		hk.SetModifier(c.Modifier(), true)
	}
	return hk
}

func (s *Session) validate(hk hotkey.Hotkey) ErrorState {
	if !hk.IsValid() {
		return Incomplete
	}
	for _, other := range hotkey.Actions() {
		if other != s.action && s.c.store.Hotkey(other) == hk {
			return Duplicate
		}
	}
	return None
}

// Commit stores the candidate and ends the session. An invalid candidate is
// refused with ErrInvalidCandidate and the session keeps previewing.
func (s *Session) Commit() error {
	s.mu.Lock()
	if s.state != Previewing {
		s.mu.Unlock()
		return ErrNotPreviewing
	}
	// Other actions may have changed since the last key event.
	s.errState = s.validate(s.candidate)
	if s.errState != None {
		es := s.errState
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidCandidate, es)
	}
	s.state = Committed
	hk := s.candidate
	s.mu.Unlock()

	s.end()
	s.c.logger.Info().Stringer("action", s.action).Str("hotkey", hk.String()).Msg("Capture committed")
	s.c.store.SetHotkey(s.action, hk)
	return nil
}

// Cancel ends the session without touching the store.
func (s *Session) Cancel() {
	if s.finish(Cancelled) {
		s.c.logger.Info().Stringer("action", s.action).Msg("Capture cancelled")
	}
}

// Close ends the session from an abnormal teardown, such as the prompt being
// destroyed. It does nothing once the session has ended.
func (s *Session) Close() {
	if s.finish(Cancelled) {
		s.c.logger.Info().Stringer("action", s.action).Msg("Capture closed")
	}
}

func (s *Session) finish(to State) bool {
	s.mu.Lock()
	if s.state != Previewing {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.mu.Unlock()
	s.end()
	return true
}

// end releases the hook and frees the capturer for the next session.
func (s *Session) end() {
	s.endOnce.Do(func() {
		s.mu.Lock()
		hook := s.hook
		s.mu.Unlock()
		if hook != nil {
			if err := hook.Release(); err != nil {
				s.c.logger.Error().Err(err).Stringer("action", s.action).Msg("Failed to release keyboard hook")
			}
		}
		s.c.mu.Lock()
		if s.c.current == s {
			s.c.current = nil
		}
		s.c.mu.Unlock()
	})
}

func (s *Session) Action() hotkey.Action {
	return s.action
}

// Baseline returns the stored hotkey of the action when the session began.
func (s *Session) Baseline() hotkey.Hotkey {
	return s.baseline
}

func (s *Session) Candidate() hotkey.Hotkey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

func (s *Session) ErrorState() ErrorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errState
}

// IsError reports whether the candidate cannot be committed.
func (s *Session) IsError() bool {
	return s.ErrorState() != None
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
