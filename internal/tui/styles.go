package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the title line.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// SizeStyle dims byte counters next to the bars.
	SizeStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		"downloaded": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"cached":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
