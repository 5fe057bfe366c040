package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles keyed by the markup class of a console entry.
var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - debug, trace frames

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // Yellow

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // Blue

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White

	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13")) // Magenta bold

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - trace titles

	dividerText = strings.Repeat("━", 60)
)

// classStyles maps the class of an entry's outer span to its style.
var classStyles = map[string]lipgloss.Style{
	"debug":      dimStyle,
	"error":      errorStyle,
	"error-name": errorStyle,
	"warn":       warnStyle,
	"info":       infoStyle,
	"log":        logStyle,
	"title":      titleStyle,
	"trace":      dimStyle,
}
