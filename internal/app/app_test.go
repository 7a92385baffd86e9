package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkeyconf/internal/app"
	"github.com/TanaroSch/hotkeyconf/internal/capture"
	"github.com/TanaroSch/hotkeyconf/internal/hotkey"
	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
	"github.com/TanaroSch/hotkeyconf/internal/settings"
	"github.com/TanaroSch/hotkeyconf/internal/shortcut"
)

type fakeRegistration struct {
	ch   chan struct{}
	once sync.Once
}

func (r *fakeRegistration) Keydown() <-chan struct{} { return r.ch }

func (r *fakeRegistration) Close() error {
	r.once.Do(func() { close(r.ch) })
	return nil
}

type fakeBackend struct {
	mu   sync.Mutex
	regs map[hotkey.Hotkey]*fakeRegistration
}

func (b *fakeBackend) Register(hk hotkey.Hotkey) (shortcut.RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &fakeRegistration{ch: make(chan struct{})}
	b.regs[hk] = r
	return r, nil
}

func (b *fakeBackend) Unregister(hk hotkey.Hotkey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.regs[hk]; ok {
		delete(b.regs, hk)
		return r.Close()
	}
	return nil
}

func (b *fakeBackend) UnregisterAll() error { return nil }
func (b *fakeBackend) Name() string          { return "fake" }
func (b *fakeBackend) IsAvailable() bool     { return true }

func (b *fakeBackend) registered() []hotkey.Hotkey {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []hotkey.Hotkey
	for hk := range b.regs {
		out = append(out, hk)
	}
	return out
}

func (b *fakeBackend) press(hk hotkey.Hotkey) bool {
	b.mu.Lock()
	r, ok := b.regs[hk]
	b.mu.Unlock()
	if ok {
		r.ch <- struct{}{}
	}
	return ok
}

type fakeView struct {
	mu          sync.Mutex
	hotkeys     map[hotkey.Action]hotkey.Hotkey
	autoRestore bool
	theme       settings.Theme
	portable    bool
	onTheme     func(settings.Theme)
}

func (v *fakeView) SetHotkey(a hotkey.Action, hk hotkey.Hotkey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hotkeys[a] = hk
}

func (v *fakeView) SetAutoRestore(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.autoRestore = on
}

func (v *fakeView) SetTheme(t settings.Theme) {
	if v.onTheme != nil {
		v.onTheme(t)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme = t
}

func (v *fakeView) SetPortable(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.portable = on
}

type note struct {
	level string
	title string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *fakeNotifier) add(level, title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{level, title})
}

func (n *fakeNotifier) Info(title, _ string)  { n.add("info", title) }
func (n *fakeNotifier) Warn(title, _ string)  { n.add("warn", title) }
func (n *fakeNotifier) Error(title, _ string) { n.add("error", title) }

func (n *fakeNotifier) titles(level string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, x := range n.notes {
		if x.level == level {
			out = append(out, x.title)
		}
	}
	return out
}

// scriptedPrompter types keys into the fake hook and then commits or cancels.
type scriptedPrompter struct {
	hook   *keyhook.Fake
	keys   []hotkey.KeyCode
	commit bool
	err    error
	during func()
}

func (p *scriptedPrompter) Capture(c *capture.Capturer, a hotkey.Action) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	s, err := c.Begin(a)
	if err != nil {
		return false, err
	}
	defer s.Close()
	p.hook.Down(p.keys...)
	p.hook.Up(p.keys...)
	if p.during != nil {
		p.during()
	}
	if !p.commit {
		s.Cancel()
		return false, nil
	}
	if err := s.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

type fixture struct {
	app      *app.Application
	store    *settings.Store
	backend  *fakeBackend
	hook     *keyhook.Fake
	prompter *scriptedPrompter
	notifier *fakeNotifier
	view     *fakeView
	exeDir   string
	opened   []string
	triggers chan hotkey.Action
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  &fakeBackend{regs: make(map[hotkey.Hotkey]*fakeRegistration)},
		hook:     keyhook.NewFake(),
		notifier: &fakeNotifier{},
		view:     &fakeView{hotkeys: make(map[hotkey.Action]hotkey.Hotkey)},
		exeDir:   t.TempDir(),
		triggers: make(chan hotkey.Action, 4),
	}
	f.prompter = &scriptedPrompter{hook: f.hook}
	f.store = settings.New(settings.WithExecutableDir(f.exeDir), settings.WithAppDataDir(t.TempDir()))
	require.NoError(t, f.store.Initialize())
	f.app = app.New(app.Options{
		Store:     f.store,
		Backend:   f.backend,
		Installer: f.hook,
		Prompter:  f.prompter,
		Notifier:  f.notifier,
		OpenFile: func(path string) error {
			f.opened = append(f.opened, path)
			return nil
		},
		OnTrigger: func(a hotkey.Action) { f.triggers <- a },
		Logger:    zerolog.Nop(),
	})
	f.app.Start()
	f.app.AttachView(f.view)
	return f
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	assert.ElementsMatch(t, []hotkey.Hotkey{
		hotkey.DefaultHotkey(hotkey.Scale),
		hotkey.DefaultHotkey(hotkey.Overlay),
	}, f.backend.registered())
	assert.Equal(t, hotkey.DefaultHotkey(hotkey.Scale), f.view.hotkeys[hotkey.Scale])
	assert.Equal(t, hotkey.DefaultHotkey(hotkey.Overlay), f.view.hotkeys[hotkey.Overlay])
	assert.Equal(t, settings.System, f.view.theme)
	assert.False(t, f.view.portable)
}

func TestTrigger(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	require.True(t, f.backend.press(hotkey.DefaultHotkey(hotkey.Overlay)))
	select {
	case a := <-f.triggers:
		assert.Equal(t, hotkey.Overlay, a)
	case <-time.After(2 * time.Second):
		t.Fatal("hotkey trigger not delivered")
	}
}

func TestEditHotkey(t *testing.T) {
	t.Run("should save a committed hotkey and register it", func(t *testing.T) {
		f := newFixture(t)
		defer f.app.Shutdown()
		f.prompter.keys = []hotkey.KeyCode{hotkey.VKLControl, hotkey.VKLMenu, 'K'}
		f.prompter.commit = true
		f.prompter.during = func() {
			assert.Empty(t, f.backend.registered(), "hotkeys stay suspended while capturing")
		}

		f.app.EditHotkey(hotkey.Scale)

		want := hotkey.Hotkey{Ctrl: true, Alt: true, Code: 'K'}
		assert.Equal(t, want, f.store.Hotkey(hotkey.Scale))
		assert.Equal(t, want, f.view.hotkeys[hotkey.Scale])
		assert.ElementsMatch(t, []hotkey.Hotkey{want, hotkey.DefaultHotkey(hotkey.Overlay)}, f.backend.registered())
		data, err := os.ReadFile(f.store.ConfigPath())
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Ctrl+Alt+K"`)
		assert.Equal(t, []string{"Hotkey Updated"}, f.notifier.titles("info"))
		assert.False(t, f.hook.Installed())
	})
	t.Run("should leave everything unchanged on cancel", func(t *testing.T) {
		f := newFixture(t)
		defer f.app.Shutdown()
		f.prompter.keys = []hotkey.KeyCode{hotkey.VKLControl, 'K'}

		f.app.EditHotkey(hotkey.Scale)

		assert.Equal(t, hotkey.DefaultHotkey(hotkey.Scale), f.store.Hotkey(hotkey.Scale))
		assert.NoFileExists(t, f.store.ConfigPath())
		assert.Len(t, f.backend.registered(), 2)
		assert.Empty(t, f.notifier.notes)
	})
	t.Run("should warn when the candidate is refused", func(t *testing.T) {
		f := newFixture(t)
		defer f.app.Shutdown()
		f.prompter.keys = []hotkey.KeyCode{hotkey.VKLShift}
		f.prompter.commit = true

		f.app.EditHotkey(hotkey.Scale)

		assert.Equal(t, []string{"Hotkey Not Saved"}, f.notifier.titles("warn"))
		assert.NoFileExists(t, f.store.ConfigPath())
	})
	t.Run("should report capture failures", func(t *testing.T) {
		f := newFixture(t)
		defer f.app.Shutdown()
		f.prompter.err = errors.New("dialog failed")

		f.app.EditHotkey(hotkey.Overlay)

		assert.Equal(t, []string{"Hotkey Capture Failed"}, f.notifier.titles("error"))
		assert.Len(t, f.backend.registered(), 2)
	})
	t.Run("should refuse a second capture", func(t *testing.T) {
		f := newFixture(t)
		defer f.app.Shutdown()
		f.prompter.err = capture.ErrSessionActive

		f.app.EditHotkey(hotkey.Overlay)

		assert.Equal(t, []string{"Hotkey Capture"}, f.notifier.titles("info"))
	})
}

func TestToggleAutoRestore(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	f.app.ToggleAutoRestore()

	assert.True(t, f.store.IsAutoRestore())
	assert.True(t, f.view.autoRestore)
	data, err := os.ReadFile(f.store.ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"autoRestore": true`)
}

func TestSetTheme(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	f.app.SetTheme(settings.Dark)

	assert.Equal(t, settings.Dark, f.store.Theme())
	assert.Equal(t, settings.Dark, f.view.theme)
	assert.FileExists(t, f.store.ConfigPath())
}

func TestConcurrentMenuWrites(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	entered := make(chan struct{})
	release := make(chan struct{})
	var block sync.Once
	f.view.onTheme = func(th settings.Theme) {
		if th == settings.Dark {
			block.Do(func() {
				close(entered)
				<-release
			})
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.app.SetTheme(settings.Dark)
	}()
	<-entered
	go func() {
		defer wg.Done()
		f.app.SetTheme(settings.Light)
	}()
	// Give the second click a chance to reach the store while the first
	// one is still notifying.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, settings.Light, f.store.Theme())
	assert.Equal(t, settings.Light, f.view.theme)
}

func TestTogglePortable(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()
	local := filepath.Join(f.exeDir, "config", "config.json")

	f.app.TogglePortable()
	assert.True(t, f.store.IsPortableMode())
	assert.True(t, f.view.portable)
	assert.FileExists(t, local)

	f.app.TogglePortable()
	assert.False(t, f.store.IsPortableMode())
	assert.False(t, f.view.portable)
	assert.NoFileExists(t, local)
	assert.FileExists(t, f.store.ConfigPath())
}

func TestOpenConfig(t *testing.T) {
	f := newFixture(t)
	defer f.app.Shutdown()

	f.app.OpenConfig()

	assert.Equal(t, []string{f.store.ConfigPath()}, f.opened)
	assert.FileExists(t, f.store.ConfigPath())
}

func TestShutdown(t *testing.T) {
	f := newFixture(t)

	f.app.Shutdown()

	assert.Empty(t, f.backend.registered())
	assert.FileExists(t, f.store.ConfigPath())

	f.store.SetTheme(settings.Light)
	assert.Equal(t, settings.System, f.view.theme, "view is detached after shutdown")
}

func TestWithoutBackend(t *testing.T) {
	st := settings.New(settings.WithExecutableDir(t.TempDir()), settings.WithAppDataDir(t.TempDir()))
	require.NoError(t, st.Initialize())
	hook := keyhook.NewFake()
	a := app.New(app.Options{
		Store:     st,
		Installer: hook,
		Prompter:  &scriptedPrompter{hook: hook, keys: []hotkey.KeyCode{hotkey.VKLWin, 'Q'}, commit: true},
		Notifier:  &fakeNotifier{},
		Logger:    zerolog.Nop(),
	})
	a.Start()
	a.EditHotkey(hotkey.Overlay)
	assert.Equal(t, "Win+Q", st.Hotkey(hotkey.Overlay).String())
	a.Shutdown()
}
