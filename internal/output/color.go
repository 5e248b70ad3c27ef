// Package output provides styled terminal rendering helpers for repolens.
package output

import "github.com/charmbracelet/lipgloss"

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess marks good scores and improvements.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError marks poor scores, regressions and high-severity findings.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning marks middling scores and medium-severity findings.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and rules.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)

	// StyleLabel pads metric labels into a column.
	StyleLabel = lipgloss.NewStyle().Width(24)
)

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleError = plain
		StyleWarning = plain
		StyleMuted = plain
		StyleBold = plain
		StyleLabel = plain.Width(24)
	}
}

// ScoreStyle picks the style for a score on a 0..outOf scale: at least 70%
// is good, at least 40% is middling.
func ScoreStyle(score, outOf float64) lipgloss.Style {
	if outOf <= 0 {
		return StyleMuted
	}
	switch ratio := score / outOf; {
	case ratio >= 0.7:
		return StyleSuccess
	case ratio >= 0.4:
		return StyleWarning
	default:
		return StyleError
	}
}

// LevelStyle styles alert levels and finding severities.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "critical", "High":
		return StyleError
	case "warning", "Medium":
		return StyleWarning
	default:
		return StyleMuted
	}
}
