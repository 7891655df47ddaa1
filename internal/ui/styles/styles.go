// Package styles provides Lip Gloss styles for weave's terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#06B6D4") // Cyan
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
)

// Status icons for library updates and checks.
var (
	IconOK       = lipgloss.NewStyle().Foreground(Success).Render("✓")
	IconSkipped  = lipgloss.NewStyle().Foreground(Warning).Render("⊘")
	IconConflict = lipgloss.NewStyle().Foreground(Warning).Render("!")
	IconFailed   = lipgloss.NewStyle().Foreground(Error).Render("✗")
)

// Text styles.
var (
	// TitleStyle is for section headings.
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// NameStyle is for dependency and library names.
	NameStyle = lipgloss.NewStyle().
			Bold(true)

	// KindStyle is for the dependency kind column.
	KindStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Width(8)

	MutedTextStyle   = lipgloss.NewStyle().Foreground(Muted)
	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
)

// Icon returns the icon for an update status name.
func Icon(status string) string {
	switch status {
	case "updated", "ok":
		return IconOK
	case "skipped":
		return IconSkipped
	case "conflict":
		return IconConflict
	default:
		return IconFailed
	}
}
