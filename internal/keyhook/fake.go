package keyhook

import (
	"sync"

	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
)

// Fake is an Installer that delivers synthetic key events. It is meant for tests.
type Fake struct {
	mu         sync.Mutex
	handler    Handler
	installErr error
	installs   int
	releases   int
}

func NewFake() *Fake {
	return &Fake{}
}

// SetInstallError makes the following calls to Install fail with err.
func (f *Fake) SetInstallError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installErr = err
}

func (f *Fake) Install(h Handler) (Hook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.installErr != nil {
		return nil, f.installErr
	}
	if f.handler != nil {
		return nil, ErrBusy
	}
	f.handler = h
	f.installs++
	return &fakeHook{f: f}, nil
}

// Installed reports whether a hook is currently installed.
func (f *Fake) Installed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

// Installs returns how many hooks were installed so far.
func (f *Fake) Installs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs
}

// Releases returns how many hooks were released so far.
func (f *Fake) Releases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

// Send delivers ev to the installed handler and returns whether it was consumed.
// Without an installed hook the event is not consumed.
func (f *Fake) Send(ev Event) bool {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return false
	}
	return h.HandleKey(ev)
}

// Down sends key-down events for codes in order.
func (f *Fake) Down(codes ...hotkey.KeyCode) {
	for _, c := range codes {
		f.Send(Event{Kind: KeyDown, Code: c})
	}
}

// Up sends key-up events for codes in order.
func (f *Fake) Up(codes ...hotkey.KeyCode) {
	for _, c := range codes {
		f.Send(Event{Kind: KeyUp, Code: c})
	}
}

type fakeHook struct {
	f    *Fake
	once sync.Once
}

func (h *fakeHook) Release() error {
	h.once.Do(func() {
		h.f.mu.Lock()
		defer h.f.mu.Unlock()
		h.f.handler = nil
		h.f.releases++
	})
	return nil
}
