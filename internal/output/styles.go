package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals outside this block.
var (
	// ColorCyan is used for identifiable nouns: target ids, module names, paths.
	ColorCyan = lipgloss.Color("14")

	// colorGreen is used for the "built" status.
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "stopped" tool status.
	ColorYellow = lipgloss.Color("220")

	// colorBoldRed is used for the "failed" status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark.
	colorGreenCheck = lipgloss.Color("10")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (target ids, module names, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Build and tool status values.
const (
	StatusBuilt   = "built"
	StatusStopped = "stopped"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusBuilt:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusStopped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusSkipped:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minTargetColumnWidth keeps status words aligned across lines.
const minTargetColumnWidth = 32

// FormatTargetLine renders a target id with a right-aligned, color-coded
// status suffix: "t:<target>  <status>".
func FormatTargetLine(target, status string) string {
	padding := minTargetColumnWidth - len(target)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("t:") + StyleNoun.Render(target) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}
