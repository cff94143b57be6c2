package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tmplplay/internal/theme"
)

const pickerRows = 10

// themeSelectedMsg carries the theme chosen in the picker.
type themeSelectedMsg struct {
	id string
}

// themePicker filters the catalog as the user types.
type themePicker struct {
	catalog *theme.Catalog
	input   textinput.Model
	matches []theme.Theme
	cursor  int
}

func newThemePicker(c *theme.Catalog, current string) *themePicker {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "filter themes"
	in.CharLimit = 64
	in.Focus()

	p := &themePicker{catalog: c, input: in}
	p.matches = c.Filter("")
	for i, t := range p.matches {
		if t.ID == current {
			p.cursor = i
			break
		}
	}
	return p
}

// Selected returns the highlighted theme, if any.
func (p *themePicker) Selected() (theme.Theme, bool) {
	if len(p.matches) == 0 {
		return theme.Theme{}, false
	}
	return p.matches[p.cursor], true
}

func (p *themePicker) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd, false
	}

	switch km.String() {
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil, false
	case "down", "ctrl+n":
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
		return p, nil, false
	}

	switch {
	case key.Matches(km, keys.Escape):
		return p, nil, true
	case key.Matches(km, keys.Confirm):
		t, ok := p.Selected()
		if !ok {
			return p, nil, false
		}
		id := t.ID
		return p, func() tea.Msg { return themeSelectedMsg{id: id} }, true
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.matches = p.catalog.Filter(p.input.Value())
		p.cursor = 0
	}
	return p, cmd, false
}

func (p *themePicker) View(th Theme, width, height int) string {
	styles := th.Styles().WithBackground(th.Background)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Theme"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.matches) == 0 {
		b.WriteString(styles.MutedText.Render("no matching themes"))
		return modalBox(th, b.String(), 44, width, height)
	}

	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	end := min(start+pickerRows, len(p.matches))
	for i := start; i < end; i++ {
		line := truncate(p.matches[i].Name, 36)
		if i == p.cursor {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if rest := len(p.matches) - end; rest > 0 {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("  …"))
	}
	return modalBox(th, b.String(), 44, width, height)
}
