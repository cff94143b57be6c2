package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/tmplplay/internal/debounce"
	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/share"
	"github.com/five82/tmplplay/internal/state"
	"github.com/five82/tmplplay/internal/theme"
)

type testUI struct {
	model   Model
	clock   *debounce.ManualClock
	session *state.Session
	catalog *theme.Catalog
	copied  []string
	frames  int
}

func newTestUI(t *testing.T) *testUI {
	t.Helper()
	catalog, err := theme.FromChroma(theme.DefaultID)
	if err != nil {
		t.Fatalf("FromChroma: %v", err)
	}
	u := &testUI{clock: debounce.NewManualClock(), catalog: catalog}
	u.session, err = state.New(state.Options{
		Catalog:   catalog,
		Store:     prefs.NewMemoryStore(),
		Scheduler: debounce.New(u.clock),
	})
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	t.Cleanup(u.session.Close)

	u.model = New(Options{
		Session:      u.session,
		Catalog:      catalog,
		Copy:         func(s string) error { u.copied = append(u.copied, s); return nil },
		OnFirstFrame: func() { u.frames++ },
	})
	u.run(tea.WindowSizeMsg{Width: 120, Height: 40})
	return u
}

// send delivers msg without running the returned command.
func (u *testUI) send(msg tea.Msg) {
	next, _ := u.model.Update(msg)
	u.model = next.(Model)
}

// run delivers msg, runs its command and delivers the result.
func (u *testUI) run(msg tea.Msg) {
	next, cmd := u.model.Update(msg)
	u.model = next.(Model)
	if cmd == nil {
		return
	}
	if follow := cmd(); follow != nil {
		next, _ = u.model.Update(follow)
		u.model = next.(Model)
	}
}

func (u *testUI) confirm() {
	u.run(tea.KeyMsg{Type: tea.KeyEnter})
}

func (u *testUI) typeText(s string) {
	u.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (u *testUI) press(t tea.KeyType) {
	u.send(tea.KeyMsg{Type: t})
}

func TestFirstFrameCallbackRunsOnce(t *testing.T) {
	u := newTestUI(t)
	u.run(tea.WindowSizeMsg{Width: 100, Height: 30})
	if u.frames != 1 {
		t.Fatalf("OnFirstFrame ran %d times, want 1", u.frames)
	}
}

func TestTabCyclesFocus(t *testing.T) {
	u := newTestUI(t)
	want := []Pane{PaneTemplate, PaneCode, PaneStruct}
	for _, p := range want {
		u.press(tea.KeyTab)
		if u.model.focus != p {
			t.Fatalf("focus = %v, want %v", u.model.focus, p)
		}
	}
	u.press(tea.KeyShiftTab)
	if u.model.focus != PaneCode {
		t.Fatalf("focus after shift+tab = %v, want %v", u.model.focus, PaneCode)
	}
}

func TestEditingSchedulesCompile(t *testing.T) {
	u := newTestUI(t)
	u.press(tea.KeyEnter)
	if !u.model.editing {
		t.Fatal("enter did not start editing")
	}

	u.typeText("x")
	snap := u.session.Snapshot()
	if !strings.HasSuffix(snap.StructSource, "x") {
		t.Fatalf("struct source = %q, want trailing x", snap.StructSource)
	}
	if snap.State() != state.PendingCompile {
		t.Fatalf("state = %v, want pending", snap.State())
	}
	if !strings.Contains(ansi.Strip(u.model.View()), "pending") {
		t.Fatal("header does not show pending state")
	}

	u.clock.Advance(state.QuietPeriod)
	u.send(snapshotMsg{})
	if u.model.snap.State() != state.Idle {
		t.Fatalf("state after quiet period = %v, want idle", u.model.snap.State())
	}

	u.press(tea.KeyEsc)
	if u.model.editing {
		t.Fatal("esc did not stop editing")
	}
}

func TestQuitKeyIsTypedWhileEditing(t *testing.T) {
	u := newTestUI(t)
	u.press(tea.KeyTab)
	u.press(tea.KeyEnter)
	u.typeText("q")
	if !u.model.editing {
		t.Fatal("q left editing mode")
	}
	if !strings.HasSuffix(u.session.Snapshot().TemplateSource, "q") {
		t.Fatalf("template source = %q, want trailing q", u.session.Snapshot().TemplateSource)
	}
}

func TestCycleTheme(t *testing.T) {
	u := newTestUI(t)
	want := u.catalog.Next(theme.DefaultID)
	u.typeText("T")
	if got := u.session.Snapshot().Theme; got != want.ID {
		t.Fatalf("theme = %q, want %q", got, want.ID)
	}
	if u.model.theme.Name != want.Name {
		t.Fatalf("chrome theme = %q, want %q", u.model.theme.Name, want.Name)
	}
}

func TestThemePicker(t *testing.T) {
	u := newTestUI(t)
	u.typeText("t")
	if _, ok := u.model.modal.(*themePicker); !ok {
		t.Fatalf("modal = %T, want *themePicker", u.model.modal)
	}
	u.typeText("dracula")
	u.confirm()
	if u.model.modal != nil {
		t.Fatal("picker still open after enter")
	}
	if got := u.session.Snapshot().Theme; got != "dracula" {
		t.Fatalf("theme = %q, want dracula", got)
	}
}

func TestThemePickerEscapeKeepsTheme(t *testing.T) {
	u := newTestUI(t)
	u.typeText("t")
	u.press(tea.KeyDown)
	u.press(tea.KeyEsc)
	if u.model.modal != nil {
		t.Fatal("picker still open after esc")
	}
	if got := u.session.Snapshot().Theme; got != theme.DefaultID {
		t.Fatalf("theme = %q, want %q", got, theme.DefaultID)
	}
}

func TestShareCopiesLink(t *testing.T) {
	u := newTestUI(t)
	u.typeText("s")
	if len(u.copied) != 1 {
		t.Fatalf("copied %d links, want 1", len(u.copied))
	}
	s, tmpl, ok := share.Parse(u.copied[0])
	if !ok {
		t.Fatalf("copied link %q does not parse", u.copied[0])
	}
	snap := u.session.Snapshot()
	if s != snap.StructSource || tmpl != snap.TemplateSource {
		t.Fatal("share link does not carry the current buffers")
	}
	if !strings.Contains(ansi.Strip(u.model.View()), "Copied to clipboard") {
		t.Fatal("share modal not shown")
	}
	u.typeText("x")
	if u.model.modal != nil {
		t.Fatal("share modal still open")
	}
}

func TestShareRefusesNULBuffer(t *testing.T) {
	u := newTestUI(t)
	u.session.OnSourceEdit(state.TemplateSource, "a\x00b")
	u.send(snapshotMsg{})

	u.typeText("s")
	if len(u.copied) != 0 {
		t.Fatalf("copied %q, want nothing", u.copied)
	}
	if u.model.modal != nil {
		t.Fatal("share modal opened for an unshareable buffer")
	}
	if !u.model.statusErr || !strings.Contains(u.model.status, "NUL") {
		t.Fatalf("status = %q (err=%v)", u.model.status, u.model.statusErr)
	}
}

func TestOpenLinkReplacesBuffers(t *testing.T) {
	u := newTestUI(t)
	link, err := share.Link(share.DefaultBase, "type S struct{ A int }", "{{.A}}")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	u.typeText("o")
	u.typeText(link)
	u.confirm()

	snap := u.session.Snapshot()
	if snap.StructSource != "type S struct{ A int }" || snap.TemplateSource != "{{.A}}" {
		t.Fatalf("buffers = %q / %q", snap.StructSource, snap.TemplateSource)
	}
	if !strings.Contains(snap.GeneratedCode(), "func (t *S) Render") {
		t.Fatalf("generated code not refreshed:\n%s", snap.GeneratedCode())
	}
}

func TestOpenLinkRejectsGarbage(t *testing.T) {
	u := newTestUI(t)
	before := u.session.Snapshot()

	u.typeText("o")
	u.typeText("not a link")
	u.confirm()

	if !u.model.statusErr || u.model.status == "" {
		t.Fatalf("status = %q (err=%v), want an error", u.model.status, u.model.statusErr)
	}
	if u.session.Snapshot().StructSource != before.StructSource {
		t.Fatal("garbage link changed the buffers")
	}
}

func TestResetRestoresExample(t *testing.T) {
	u := newTestUI(t)
	u.session.OnSourceEdit(state.StructSource, "type Z struct{}")
	u.send(snapshotMsg{})
	u.typeText("r")
	if got := u.session.Snapshot().StructSource; got != state.DefaultStruct {
		t.Fatalf("struct source = %q, want the example", got)
	}
}

func TestHeaderShowsCompileDuration(t *testing.T) {
	u := newTestUI(t)
	view := ansi.Strip(u.model.View())
	if !strings.Contains(view, "(duration: ") {
		t.Fatalf("header lacks duration:\n%s", strings.SplitN(view, "\n", 2)[0])
	}
	if !strings.Contains(view, "Render(w io.Writer) error") {
		t.Fatal("generated pane does not show the Render method")
	}
}

func TestHelpToggle(t *testing.T) {
	u := newTestUI(t)
	u.typeText("?")
	if !strings.Contains(ansi.Strip(u.model.View()), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	u.typeText("?")
	if u.model.showHelp {
		t.Fatal("help still shown")
	}
}

func TestSyntaxFor(t *testing.T) {
	html := state.Snapshot{StructSource: "//tmplplay:template ext=html\ntype A struct{}"}
	plain := state.Snapshot{StructSource: "type A struct{}"}

	if got := syntaxFor(PaneTemplate, html); got != "go-html-template" {
		t.Fatalf("syntaxFor(html) = %q", got)
	}
	if got := syntaxFor(PaneTemplate, plain); got != "go-text-template" {
		t.Fatalf("syntaxFor(plain) = %q", got)
	}
	if got := syntaxFor(PaneCode, html); got != "go" {
		t.Fatalf("syntaxFor(code) = %q", got)
	}
}
