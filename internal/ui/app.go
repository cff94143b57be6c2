package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tmplplay/internal/compiler"
	"github.com/five82/tmplplay/internal/highlight"
	"github.com/five82/tmplplay/internal/logging"
	"github.com/five82/tmplplay/internal/share"
	"github.com/five82/tmplplay/internal/state"
	"github.com/five82/tmplplay/internal/theme"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *state.Session
	Catalog   *theme.Catalog
	Renderer  *highlight.Renderer
	ShareBase string
	// Copy writes to the system clipboard. Nil uses the OS clipboard.
	Copy func(string) error
	// OnFirstFrame runs once, after the first frame has been sized.
	OnFirstFrame func()
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	session    *state.Session
	catalog    *theme.Catalog
	renderer   *highlight.Renderer
	shareBase  string
	copy       func(string) error
	firstFrame func()
	log        *slog.Logger
	keys       keyMap

	// UI state
	theme    Theme
	palette  highlight.Palette
	width    int
	height   int
	ready    bool
	focus    Pane
	editing  bool
	showHelp bool
	modal    Modal

	// Data state
	snap    state.Snapshot
	editors [2]textarea.Model
	panes   [paneCount]viewport.Model

	// Footer status
	status    string
	statusErr bool
	statusSeq int
}

// snapshotMsg tells the model the session published a new snapshot.
type snapshotMsg struct{}

type clearStatusMsg struct {
	seq int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = highlight.NewRenderer(nil)
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	base := opts.ShareBase
	if base == "" {
		base = share.DefaultBase
	}

	m := Model{
		session:    opts.Session,
		catalog:    opts.Catalog,
		renderer:   renderer,
		shareBase:  base,
		copy:       copyFn,
		firstFrame: opts.OnFirstFrame,
		log:        logging.For(logging.CatUI),
		keys:       DefaultKeyMap(),
		snap:       opts.Session.Snapshot(),
	}
	for i := range m.editors {
		m.editors[i] = newEditor()
	}
	for i := range m.panes {
		m.panes[i] = viewport.New(0, 0)
	}
	m.applyTheme()
	return m
}

func newEditor() textarea.Model {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	return ta
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.ready {
			return m, nil
		}
		m.ready = true
		m.refresh()
		if fn := m.firstFrame; fn != nil {
			m.firstFrame = nil
			return m, func() tea.Msg {
				fn()
				return nil
			}
		}
		return m, nil

	case snapshotMsg:
		m.snap = m.session.Snapshot()
		if m.editing {
			ed := &m.editors[m.focus]
			if cur := m.snap.Source(sourceOf(m.focus)); cur != ed.Value() {
				ed.SetValue(cur)
			}
		}
		m.refresh()
		return m, nil

	case themeSelectedMsg:
		return m.changeTheme(msg.id)

	case linkOpenedMsg:
		if !msg.ok {
			return m.setStatus("Not a tmplplay share link", true)
		}
		m.stopEditing()
		m.snap = m.session.Replace(msg.structSource, msg.templateSource)
		m.refresh()
		return m.setStatus("Loaded shared buffers", false)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Cursor blink and other widget messages.
	var cmd tea.Cmd
	switch {
	case m.modal != nil:
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
	case m.editing:
		m.editors[m.focus], cmd = m.editors[m.focus].Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape):
			m.showHelp = false
		}
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if m.focus == PaneCode {
			return m, nil
		}
		return m.startEditing()

	case key.Matches(msg, m.keys.CycleTheme):
		return m.changeTheme(m.catalog.Next(m.snap.Theme).ID)

	case key.Matches(msg, m.keys.PickTheme):
		m.modal = newThemePicker(m.catalog, m.snap.Theme)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Reset):
		if m.focus == PaneCode {
			return m.setStatus("Select the struct or template pane to reset it", true)
		}
		m.snap = m.session.Reset(sourceOf(m.focus))
		m.refresh()
		return m.setStatus(m.focus.String()+" reset to the example", false)

	case key.Matches(msg, m.keys.Share):
		link, err := share.Link(m.shareBase, m.snap.StructSource, m.snap.TemplateSource)
		if err != nil {
			return m.setStatus("Cannot share: "+err.Error(), true)
		}
		err = m.copy(link)
		if err != nil {
			m.log.Debug("clipboard write failed", "error", err)
		}
		m.modal = newShareModal(link, err)
		return m, nil

	case key.Matches(msg, m.keys.Open):
		m.modal = newOpenModal()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Top):
		m.panes[m.focus].GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.panes[m.focus].GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.panes[m.focus], cmd = m.panes[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.stopEditing()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.stopEditing()
		m.focus = (m.focus + 1) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.stopEditing()
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil
	}

	ed := &m.editors[m.focus]
	before := ed.Value()
	var cmd tea.Cmd
	*ed, cmd = ed.Update(msg)
	if after := ed.Value(); after != before {
		m.snap = m.session.OnSourceEdit(sourceOf(m.focus), after)
	}
	return m, cmd
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	ed := &m.editors[m.focus]
	ed.SetValue(m.snap.Source(sourceOf(m.focus)))
	m.editing = true
	return m, ed.Focus()
}

func (m *Model) stopEditing() {
	if !m.editing {
		return
	}
	m.editors[m.focus].Blur()
	m.editing = false
	m.refresh()
}

func (m Model) changeTheme(id string) (tea.Model, tea.Cmd) {
	snap, err := m.session.OnThemeChange(id)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.snap = snap
	m.applyTheme()
	m.refresh()
	return m.setStatus("Theme: "+m.theme.Name, false)
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	seq := m.statusSeq
	return m, tea.Tick(StatusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// applyTheme restyles the chrome and editors for the snapshot's theme.
func (m *Model) applyTheme() {
	t, _ := m.catalog.Resolve(m.snap.Theme)
	m.theme = themeFor(t)
	m.palette = t.Palette()

	bg := lipgloss.Color(m.theme.Background)
	text := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text)).Background(bg)
	for i := range m.editors {
		focused, blurred := textarea.DefaultStyles()
		for _, s := range []*textarea.Style{&focused, &blurred} {
			s.Base = lipgloss.NewStyle().Background(bg)
			s.Text = text
			s.CursorLine = text.Background(lipgloss.Color(m.theme.Surface))
			s.LineNumber = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Background(bg)
			s.CursorLineNumber = s.LineNumber.Foreground(lipgloss.Color(m.theme.Muted))
			s.EndOfBuffer = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Background(bg)
		}
		m.editors[i].FocusedStyle = focused
		m.editors[i].BlurredStyle = blurred
	}
	for i := range m.panes {
		m.panes[i].Style = lipgloss.NewStyle().Background(bg)
	}
}

func (m *Model) resize() {
	rects := layoutPanes(m.width, m.height)
	for p := Pane(0); p < paneCount; p++ {
		w, h := rects[p].inner()
		m.panes[p].Width = w
		m.panes[p].Height = h
		if p != PaneCode {
			m.editors[p].SetWidth(w)
			m.editors[p].SetHeight(h)
		}
	}
}

// refresh re-renders pane content from the snapshot.
func (m *Model) refresh() {
	def := m.palette.Defaults
	for p := Pane(0); p < paneCount; p++ {
		text := m.paneText(p)
		if p == PaneCode && isDiagnostic(text) {
			m.panes[p].SetContent(m.renderDiagnostic(text))
			continue
		}
		nodes := m.renderer.Render(text, syntaxFor(p, m.snap), m.palette)
		m.panes[p].SetContent(renderNodes(nodes, def))
	}
}

func (m Model) paneText(p Pane) string {
	switch p {
	case PaneStruct:
		return m.snap.StructSource
	case PaneTemplate:
		return m.snap.TemplateSource
	}
	return m.snap.GeneratedCode()
}

func (m Model) renderDiagnostic(text string) string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "error: ") {
			lines[i] = styles.DangerText.Render(line)
		} else if line != "" {
			lines[i] = styles.MutedText.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("tmplplay", styles.AccentText.Bold(true)),
		bg.Render(m.theme.Name, styles.Text),
	}
	switch m.snap.State() {
	case state.PendingCompile:
		parts = append(parts, bg.Render("● pending", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● idle", styles.SuccessText))
	}
	if d, ok := m.snap.CompileDuration(); ok {
		parts = append(parts, bg.Render(fmt.Sprintf("(duration: %s)", formatDuration(d)), styles.MutedText))
	} else if m.snap.Stale() {
		parts = append(parts, bg.Render("(stale)", styles.FaintText))
	}

	line := bg.Spaces(1) + bg.Join(parts, "  ")
	return bg.FillLine(line, m.width)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	if m.status != "" {
		style := styles.MutedText
		if m.statusErr {
			style = styles.DangerText
		}
		return bg.FillLine(bg.Spaces(1)+bg.Render(truncate(m.status, m.width-2), style), m.width)
	}

	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.AccentText)+bg.Spaces(1)+bg.Render(strings.ToLower(h.Desc), styles.MutedText))
	}
	return bg.FillLine(bg.Spaces(1)+bg.Join(parts, "  "), m.width)
}

func (m Model) renderBody() string {
	rects := layoutPanes(m.width, m.height)
	var views [paneCount]string
	for p := Pane(0); p < paneCount; p++ {
		views[p] = m.renderPane(p, rects[p])
	}
	if m.width < LayoutStackedWidth {
		return lipgloss.JoinVertical(lipgloss.Left, views[:]...)
	}
	left := lipgloss.JoinVertical(lipgloss.Left, views[PaneStruct], views[PaneTemplate])
	return lipgloss.JoinHorizontal(lipgloss.Top, left, views[PaneCode])
}

func (m Model) renderPane(p Pane, rect paneRect) string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	w, h := rect.inner()

	border := m.theme.Border
	titleStyle := styles.MutedText
	if p == m.focus {
		border = m.theme.BorderFocus
		titleStyle = styles.AccentText.Bold(true)
	}
	title := p.String()
	if m.editing && p == m.focus {
		title += " (editing)"
	}

	var body string
	if m.editing && p == m.focus {
		body = bg.FillBlock(m.editors[p].View(), w, h)
	} else {
		body = m.panes[p].View()
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		BorderBackground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.Background)).
		Width(w).
		Height(h + 1)
	return box.Render(bg.FillLine(titleStyle.Render(truncate(title, w)), w) + "\n" + body)
}

func sourceOf(p Pane) state.Source {
	if p == PaneTemplate {
		return state.TemplateSource
	}
	return state.StructSource
}

// syntaxFor picks the lexer for a pane.
func syntaxFor(p Pane, snap state.Snapshot) highlight.Syntax {
	if p != PaneTemplate {
		return highlight.SyntaxGo
	}
	if compiler.IsMarkup(snap.StructSource) {
		return highlight.SyntaxHTMLTemplate
	}
	return highlight.SyntaxTemplate
}

func isDiagnostic(code string) bool {
	return strings.HasPrefix(code, "error: ")
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	}
	return d.Round(time.Microsecond).String()
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Session == nil || opts.Catalog == nil {
		return errors.New("ui: session and catalog are required")
	}
	m := New(opts)

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	opts.Session.Subscribe(func(state.Snapshot) {
		p.Send(snapshotMsg{})
	})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
