package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/tmplplay/internal/compiler"
	"github.com/five82/tmplplay/internal/debounce"
	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/theme"
)

type compileCall struct {
	structSrc string
	tmplSrc   string
	at        time.Duration
}

type harness struct {
	clock   *debounce.ManualClock
	store   *prefs.MemoryStore
	calls   []compileCall
	session *Session
}

func testCatalog(t *testing.T) *theme.Catalog {
	t.Helper()
	c, err := theme.NewCatalog([]theme.Theme{{ID: "B", Name: "B"}, {ID: "A", Name: "A"}}, "A")
	require.NoError(t, err)
	return c
}

func newHarness(t *testing.T, persisted prefs.State) *harness {
	t.Helper()
	h := &harness{clock: debounce.NewManualClock(), store: prefs.NewMemoryStore()}
	s, err := New(Options{
		Catalog:   testCatalog(t),
		Persisted: persisted,
		Store:     h.store,
		Scheduler: debounce.New(h.clock),
		Compile: func(structSrc, tmplSrc string) string {
			h.calls = append(h.calls, compileCall{structSrc, tmplSrc, h.clock.Now()})
			return "code(" + structSrc + "|" + tmplSrc + ")"
		},
	})
	require.NoError(t, err)
	h.session = s
	t.Cleanup(s.Close)
	return h
}

func (h *harness) stored(t *testing.T, key string) string {
	t.Helper()
	raw, err := h.store.Get(key)
	require.NoError(t, err)
	text, err := prefs.Decode(raw)
	require.NoError(t, err)
	return text
}

func TestNew_CompilesOnceAndIsIdle(t *testing.T) {
	h := newHarness(t, nil)
	snap := h.session.Snapshot()

	require.Len(t, h.calls, 1)
	require.Equal(t, Idle, snap.State())
	require.Equal(t, DefaultStruct, snap.StructSource)
	require.Equal(t, DefaultTemplate, snap.TemplateSource)
	require.Equal(t, "A", snap.Theme)
	_, ok := snap.CompileDuration()
	require.True(t, ok)
	require.Equal(t, 0, h.clock.Pending())
}

func TestNew_UsesPersistedSources(t *testing.T) {
	h := newHarness(t, prefs.State{
		prefs.ThemeKey:    "B",
		prefs.StructKey:   "type S struct{}",
		prefs.TemplateKey: "tmpl",
	})
	snap := h.session.Snapshot()

	require.Equal(t, "B", snap.Theme)
	require.Equal(t, "type S struct{}", snap.StructSource)
	require.Equal(t, "tmpl", snap.TemplateSource)
	require.Equal(t, "code(type S struct{}|tmpl)", snap.GeneratedCode())
}

func TestNew_UnknownPersistedThemeFallsBackAndPersists(t *testing.T) {
	h := newHarness(t, prefs.State{prefs.ThemeKey: "Z"})

	require.Equal(t, "A", h.session.Snapshot().Theme)
	require.Equal(t, "A", h.stored(t, prefs.ThemeKey))
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, ErrNoCatalog)
}

func TestOnSourceEdit_CoalescesBurst(t *testing.T) {
	h := newHarness(t, nil)

	for i, text := range []string{"a", "ab", "abc", "abcd"} {
		if i > 0 {
			h.clock.Advance(100 * time.Millisecond)
		}
		snap := h.session.OnSourceEdit(TemplateSource, text)
		require.Equal(t, PendingCompile, snap.State())
	}
	require.Len(t, h.calls, 1, "no compile during the burst")

	h.clock.Advance(499 * time.Millisecond)
	require.Len(t, h.calls, 1)

	h.clock.Advance(time.Millisecond)
	require.Len(t, h.calls, 2)
	require.Equal(t, "abcd", h.calls[1].tmplSrc)
	require.Equal(t, 800*time.Millisecond, h.calls[1].at)

	h.clock.Advance(10 * time.Second)
	require.Len(t, h.calls, 2, "exactly one compile per burst")
	require.Equal(t, Idle, h.session.Snapshot().State())
}

func TestOnSourceEdit_SpacedEditsCompileIndependently(t *testing.T) {
	h := newHarness(t, nil)

	h.session.OnSourceEdit(StructSource, "type One struct{}")
	h.clock.Advance(600 * time.Millisecond)
	h.session.OnSourceEdit(TemplateSource, "second")
	h.clock.Advance(600 * time.Millisecond)

	require.Len(t, h.calls, 3)
	require.Equal(t, compileCall{"type One struct{}", DefaultTemplate, 500 * time.Millisecond}, h.calls[1])
	require.Equal(t, compileCall{"type One struct{}", "second", 1100 * time.Millisecond}, h.calls[2])
}

func TestOnSourceEdit_StaleWhileRevalidate(t *testing.T) {
	h := newHarness(t, nil)
	before := h.session.Snapshot()

	snap := h.session.OnSourceEdit(StructSource, "type X struct{}")
	require.Equal(t, before.GeneratedCode(), snap.GeneratedCode())
	require.True(t, snap.Stale())
	_, ok := snap.CompileDuration()
	require.False(t, ok, "duration must not be reported for other sources")
	require.Equal(t, "type X struct{}", h.stored(t, prefs.StructKey))

	h.clock.Advance(QuietPeriod)
	snap = h.session.Snapshot()
	require.False(t, snap.Stale())
	require.Equal(t, "code(type X struct{}|"+DefaultTemplate+")", snap.GeneratedCode())
	_, ok = snap.CompileDuration()
	require.True(t, ok)
	require.True(t, snap.Pending.IsZero())
}

func TestOnTimerFire_IgnoresStaleHandle(t *testing.T) {
	h := newHarness(t, nil)

	first := h.session.OnSourceEdit(TemplateSource, "one").Pending
	second := h.session.OnSourceEdit(TemplateSource, "two").Pending
	require.NotEqual(t, first, second)

	snap := h.session.OnTimerFire(first)
	require.Len(t, h.calls, 1)
	require.Equal(t, second, snap.Pending)

	snap = h.session.OnTimerFire(debounce.Handle{})
	require.Len(t, h.calls, 1)
	require.Equal(t, PendingCompile, snap.State())

	snap = h.session.OnTimerFire(second)
	require.Len(t, h.calls, 2)
	require.Equal(t, Idle, snap.State())

	// The armed timer still fires, but its handle is no longer pending.
	h.clock.Advance(time.Second)
	require.Len(t, h.calls, 2)
}

func TestOnThemeChange(t *testing.T) {
	h := newHarness(t, nil)
	pending := h.session.OnSourceEdit(TemplateSource, "x").Pending

	snap, err := h.session.OnThemeChange("nope")
	require.ErrorIs(t, err, ErrThemeNotFound)
	require.Equal(t, "A", snap.Theme)

	snap, err = h.session.OnThemeChange("B")
	require.NoError(t, err)
	require.Equal(t, "B", snap.Theme)
	require.Equal(t, pending, snap.Pending, "theme change keeps the pending compile")
	require.Equal(t, "B", h.stored(t, prefs.ThemeKey))
	require.Len(t, h.calls, 1, "theme change does not compile")

	h.clock.Advance(QuietPeriod)
	require.Len(t, h.calls, 2)
	require.Equal(t, "B", h.session.Snapshot().Theme)
}

func TestReplace_CancelsPendingAndCompiles(t *testing.T) {
	h := newHarness(t, nil)
	h.session.OnSourceEdit(TemplateSource, "typing")

	snap := h.session.Replace("type R struct{}", "shared")
	require.Equal(t, Idle, snap.State())
	require.Equal(t, "code(type R struct{}|shared)", snap.GeneratedCode())
	require.False(t, snap.Stale())
	require.Equal(t, 0, h.clock.Pending())
	require.Equal(t, "shared", h.stored(t, prefs.TemplateKey))

	h.clock.Advance(time.Second)
	require.Len(t, h.calls, 2)
}

func TestReset_RestoresDefaultThroughEdit(t *testing.T) {
	h := newHarness(t, prefs.State{prefs.StructKey: "type Old struct{}"})

	snap := h.session.Reset(StructSource)
	require.Equal(t, DefaultStruct, snap.StructSource)
	require.Equal(t, PendingCompile, snap.State())
}

func TestClose_CancelsPending(t *testing.T) {
	h := newHarness(t, nil)
	h.session.OnSourceEdit(TemplateSource, "x")
	h.session.Close()

	h.clock.Advance(time.Second)
	require.Len(t, h.calls, 1)
	require.Equal(t, Idle, h.session.Snapshot().State())

	h.session.OnSourceEdit(TemplateSource, "after close")
	require.Equal(t, 0, h.clock.Pending())
}

func TestSubscribe_ReceivesTimerCompiles(t *testing.T) {
	h := newHarness(t, nil)
	var got []Snapshot
	h.session.Subscribe(func(s Snapshot) { got = append(got, s) })

	h.session.OnSourceEdit(StructSource, "type P struct{}")
	require.Empty(t, got)

	h.clock.Advance(QuietPeriod)
	require.Len(t, got, 1)
	require.Equal(t, "type P struct{}", got[0].Compiled.Struct)
}

func TestRun_CompilerPanicBecomesDiagnostic(t *testing.T) {
	s, err := New(Options{
		Catalog:   testCatalog(t),
		Scheduler: debounce.New(debounce.NewManualClock()),
		Compile:   func(string, string) string { panic("boom") },
	})
	require.NoError(t, err)
	require.Contains(t, s.Snapshot().GeneratedCode(), "compiler panicked: boom")
}

type failingStore struct{}

func (failingStore) Get(string) (string, error) { return "", errors.New("down") }
func (failingStore) Set(string, string) error   { return errors.New("down") }
func (failingStore) Delete(string) error        { return errors.New("down") }

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	clock := debounce.NewManualClock()
	s, err := New(Options{
		Catalog:   testCatalog(t),
		Store:     failingStore{},
		Scheduler: debounce.New(clock),
	})
	require.NoError(t, err)

	snap := s.OnSourceEdit(TemplateSource, "x")
	require.Equal(t, "x", snap.TemplateSource)
	_, err = s.OnThemeChange("B")
	require.NoError(t, err)
}

func TestCompile_IdempotentAcrossSessions(t *testing.T) {
	opts := Options{Catalog: testCatalog(t), Compile: compiler.Compile}
	a, err := New(opts)
	require.NoError(t, err)
	b, err := New(opts)
	require.NoError(t, err)
	require.Equal(t, a.Snapshot().GeneratedCode(), b.Snapshot().GeneratedCode())
	require.NotContains(t, a.Snapshot().GeneratedCode(), "error:")
	require.NotEqual(t, a.Key(), b.Key())
}
