package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/capture"
	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// CapturePrompt shows a native dialog that previews the hotkey being captured.
type CapturePrompt struct {
	appName string
	logger  zerolog.Logger
	open    func(title string) (dialog, error)
}

// dialog is the part of zenity.ProgressDialog the prompt drives.
type dialog interface {
	Text(text string) error
	Value(value int) error
	Done() <-chan struct{}
	Close() error
}

func NewCapturePrompt(appName string, logger zerolog.Logger) *CapturePrompt {
	return &CapturePrompt{appName: appName, logger: logger, open: openProgress}
}

func openProgress(title string) (dialog, error) {
	dlg, err := zenity.Progress(
		zenity.Title(title),
		zenity.OKLabel("Save"),
		zenity.CancelLabel("Cancel"),
		zenity.MaxValue(100),
	)
	if err != nil {
		return nil, err
	}
	return dlg, nil
}

// Capture runs one capture session for a until the user saves a valid hotkey
// or cancels. It reports whether a new hotkey was committed.
func (p *CapturePrompt) Capture(c *capture.Capturer, a hotkey.Action) (bool, error) {
	// The hook thread only drops the latest state here; the dialog is
	// updated from this goroutine.
	updates := make(chan preview, 1)
	s, err := c.Begin(a, capture.WithOnChange(func(hk hotkey.Hotkey, es capture.ErrorState) {
		select {
		case <-updates:
		default:
		}
		updates <- preview{hk, es}
	}))
	if err != nil {
		return false, err
	}
	defer s.Close()

	title := fmt.Sprintf("%s - Edit %s hotkey", p.appName, a)
	for {
		dlg, err := p.open(title)
		if err != nil {
			return false, fmt.Errorf("failed to open capture dialog: %w", err)
		}
		saved, err := p.run(dlg, s, updates)
		if err != nil {
			return false, err
		}
		if !saved {
			s.Cancel()
			return false, nil
		}
		err = s.Commit()
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, capture.ErrInvalidCandidate) {
			return false, err
		}
		// Save stays enabled once a valid candidate was shown, so the
		// session keeps previewing in a fresh dialog.
		p.logger.Info().Err(err).Stringer("action", a).Msg("Reopening capture dialog")
	}
}

// run previews the session until the dialog closes and reports whether it
// was closed with Save.
func (p *CapturePrompt) run(dlg dialog, s *capture.Session, updates <-chan preview) (bool, error) {
	p.show(dlg, s.Baseline(), preview{s.Candidate(), s.ErrorState()})
	for {
		select {
		case u := <-updates:
			p.show(dlg, s.Baseline(), u)
		case <-dlg.Done():
			return dialogOutcome(dlg)
		}
	}
}

// dialogOutcome reads how a finished dialog was closed. The Windows Close
// drops ErrCanceled, but Text returns the dialog result on every platform
// once Done is closed.
func dialogOutcome(dlg dialog) (bool, error) {
	err := dlg.Text("")
	if err == nil {
		err = dlg.Close()
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, zenity.ErrCanceled):
		return false, nil
	default:
		return false, fmt.Errorf("capture dialog failed: %w", err)
	}
}

type preview struct {
	candidate hotkey.Hotkey
	errState  capture.ErrorState
}

func (p *CapturePrompt) show(dlg dialog, baseline hotkey.Hotkey, u preview) {
	if err := dlg.Text(promptText(baseline, u.candidate, u.errState)); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to update capture dialog")
	}
	value := 0
	if u.errState == capture.None {
		value = 100
	}
	_ = dlg.Value(value)
}

func promptText(baseline, candidate hotkey.Hotkey, es capture.ErrorState) string {
	var b strings.Builder
	b.WriteString("Press the new key combination, then click Save.\n\n")
	fmt.Fprintf(&b, "Current: %s\n", displayHotkey(baseline))
	fmt.Fprintf(&b, "New: %s", displayHotkey(candidate))
	switch es {
	case capture.Incomplete:
		if !candidate.IsEmpty() {
			b.WriteString("\n\nUse at least one of Win, Ctrl, Shift or Alt together with another key.")
		}
	case capture.Duplicate:
		b.WriteString("\n\nThis combination is already used by another action.")
	}
	return b.String()
}

func displayHotkey(hk hotkey.Hotkey) string {
	if hk.IsEmpty() {
		return "(none)"
	}
	return hk.String()
}
