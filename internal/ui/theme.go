package ui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/five82/tmplplay/internal/highlight"
	"github.com/five82/tmplplay/internal/theme"
)

// Theme defines the chrome colours around the editors. It is derived from the
// active syntax theme so panes, header and footer sit on the same background
// as the highlighted text.
type Theme struct {
	Name string

	// Base colors
	Background string // Pane and editor background
	Surface    string // Header and footer bar

	// Border colors
	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// themeFor derives chrome colours from a catalog theme.
func themeFor(t theme.Theme) Theme {
	def := t.Defaults()
	bg := toColorful(def.Background)
	fg := toColorful(def.Foreground)

	th := Theme{
		Name:       t.Name,
		Background: bg.Hex(),
		Surface:    bg.BlendLab(fg, 0.08).Clamped().Hex(),
		Border:     bg.BlendLab(fg, 0.3).Clamped().Hex(),
		Text:       fg.Hex(),
		Muted:      fg.BlendLab(bg, 0.35).Clamped().Hex(),
		Faint:      fg.BlendLab(bg, 0.6).Clamped().Hex(),
	}
	if isDark(bg) {
		th.Accent, th.Success, th.Warning, th.Danger = "#61afef", "#98c379", "#e5c07b", "#e06c75"
	} else {
		th.Accent, th.Success, th.Warning, th.Danger = "#0550ae", "#116329", "#9a6700", "#cf222e"
	}
	th.BorderFocus = th.Accent
	return th
}

func toColorful(c highlight.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func isDark(c colorful.Color) bool {
	l, _, _ := c.Lab()
	return l < 0.5
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	bg := lipgloss.Color(t.Background)
	return Styles{
		Background: lipgloss.NewStyle().
			Background(bg),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Accent)).
			Foreground(bg),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	return out
}
