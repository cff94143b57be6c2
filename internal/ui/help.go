package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)

	sections := []helpSection{
		{
			title: "Panes",
			items: []helpItem{
				{"tab", "Next pane"},
				{"shift+tab", "Previous pane"},
				{"enter/i", "Edit struct or template"},
				{"esc", "Stop editing"},
				{"j/k", "Scroll down/up"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "Buffers",
			items: []helpItem{
				{"r", "Reset to example"},
				{"s", "Copy share link"},
				{"o", "Open share link"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Next theme"},
				{"t", "Pick theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Background(lipgloss.Color(m.theme.Background)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return modalBox(m.theme, b.String(), 44, m.width, m.height)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
