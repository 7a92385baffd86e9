//go:build linux

// Package xhook observes the keyboard on X11 through github.com/robotn/gohook.
// X11 delivers every key to the focused client as well, so events are never
// swallowed.
package xhook

import (
	"sync"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
)

// Install is a keyhook.Platform backed by gohook.
func Install(dispatch func(keyhook.Event) bool, logger zerolog.Logger) (func() error, error) {
	events := hook.Start()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if kev, ok := translate(ev); ok {
					dispatch(kev)
				}
			}
		}
	}()
	logger.Info().Msg("Observing the keyboard through gohook; key presses still reach other applications")

	var once sync.Once
	return func() error {
		once.Do(func() {
			close(stop)
			hook.End()
			<-done
		})
		return nil
	}, nil
}

// translate converts a gohook event. gohook reports a physical press as
// KeyHold; its KeyDown is the typed character and is skipped.
func translate(ev hook.Event) (keyhook.Event, bool) {
	var kind keyhook.EventKind
	switch ev.Kind {
	case hook.KeyHold:
		kind = keyhook.KeyDown
	case hook.KeyUp:
		kind = keyhook.KeyUp
	default:
		return keyhook.Event{}, false
	}
	// On X11 the raw code is the keysym.
	code, ok := keyhook.KeysymToKeyCode(uint32(ev.Rawcode))
	if !ok {
		return keyhook.Event{}, false
	}
	return keyhook.Event{Kind: kind, Code: code}, true
}
