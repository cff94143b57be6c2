package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tmplplay/internal/share"
)

// linkOpenedMsg carries the buffers decoded from a pasted link.
type linkOpenedMsg struct {
	structSource   string
	templateSource string
	ok             bool
}

// shareModal shows the link for the current buffers.
type shareModal struct {
	link   string
	copied error
}

func newShareModal(link string, copyErr error) *shareModal {
	return &shareModal{link: link, copied: copyErr}
}

func (s *shareModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return s, nil, true
	}
	return s, nil, false
}

func (s *shareModal) View(th Theme, width, height int) string {
	styles := th.Styles().WithBackground(th.Background)
	boxWidth := 72
	inner := min(boxWidth, max(width-4, 10)) - 6

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Share link"))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render(truncateMiddle(s.link, max(inner, 8))))
	b.WriteString("\n\n")
	if s.copied == nil {
		b.WriteString(styles.SuccessText.Render("Copied to clipboard"))
	} else {
		b.WriteString(styles.WarningText.Render("Clipboard unavailable: " + s.copied.Error()))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("press any key to close"))
	return modalBox(th, b.String(), boxWidth, width, height)
}

// openModal reads a pasted link.
type openModal struct {
	input textinput.Model
}

func newOpenModal() *openModal {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "paste a share link"
	in.CharLimit = 0
	in.Focus()
	return &openModal{input: in}
}

func (o *openModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return o, nil, true
		case key.Matches(km, keys.Confirm):
			link := strings.TrimSpace(o.input.Value())
			return o, func() tea.Msg {
				s, t, ok := share.Parse(link)
				return linkOpenedMsg{structSource: s, templateSource: t, ok: ok}
			}, true
		}
	}
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd, false
}

func (o *openModal) View(th Theme, width, height int) string {
	styles := th.Styles().WithBackground(th.Background)
	o.input.Width = max(min(66, width-10), 8)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Open link"))
	b.WriteString("\n\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter to load, esc to cancel"))
	return modalBox(th, b.String(), 72, width, height)
}
