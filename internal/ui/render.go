package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tmplplay/internal/highlight"
)

// renderNodes draws highlighted runs as terminal lines. Runs are split at
// newlines so no escape sequence spans a line break; that keeps viewport
// scrolling and pane clipping intact.
func renderNodes(nodes []highlight.Node, def highlight.Defaults) string {
	base := lipgloss.NewStyle().
		Foreground(termColor(def.Foreground.Hex())).
		Background(termColor(def.Background.Hex()))

	var b strings.Builder
	for _, n := range nodes {
		style := base
		if n.Kind == highlight.StyledSpan {
			style = spanStyle(base, n.Style)
		}
		text := strings.ReplaceAll(n.Text, "\r", "")
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

func spanStyle(base lipgloss.Style, d highlight.Descriptor) lipgloss.Style {
	s := base
	if d.Foreground != "" {
		s = s.Foreground(termColor(d.Foreground))
	}
	if d.Background != "" {
		s = s.Background(termColor(d.Background))
	}
	return s.Bold(d.Bold).Underline(d.Underline).Italic(d.Italic)
}

// termColor drops the alpha byte terminals cannot show.
func termColor(hex string) lipgloss.Color {
	if len(hex) == len("#rrggbbaa") {
		hex = hex[:len("#rrggbb")]
	}
	return lipgloss.Color(hex)
}
