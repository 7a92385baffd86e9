package keyhook

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Platform starts an OS keyboard source that passes every key event to
// dispatch. The returned teardown stops it and must not be called from dispatch.
type Platform func(dispatch func(Event) bool, logger zerolog.Logger) (teardown func() error, err error)

// System installs the platform keyboard hook.
type System struct {
	logger   zerolog.Logger
	platform Platform
}

type Option func(*System)

// WithPlatform replaces the built-in hook of the current OS.
func WithPlatform(p Platform) Option {
	return func(s *System) { s.platform = p }
}

func NewSystem(logger zerolog.Logger, opts ...Option) *System {
	s := &System{logger: logger, platform: installPlatform}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Install claims the process-wide slot for h and installs the platform hook.
// It returns ErrBusy while another hook is installed.
func (s *System) Install(h Handler) (Hook, error) {
	if h == nil {
		return nil, fmt.Errorf("keyhook: nil handler")
	}
	id, err := active.acquire(h)
	if err != nil {
		return nil, err
	}
	teardown, err := s.platform(active.dispatch, s.logger)
	if err != nil {
		active.release(id)
		return nil, fmt.Errorf("failed to install keyboard hook: %w", err)
	}
	s.logger.Debug().Msg("Keyboard hook installed")
	return &guard{
		id: id,
		teardown: func() error {
			err := teardown()
			s.logger.Debug().Err(err).Msg("Keyboard hook released")
			return err
		},
	}, nil
}
