package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a bar for a score on a 0..outOf scale. The bar is clamped
// to the scale; the label shows the raw score.
// Example: "████████░░ 8.0/10"
func ScoreBar(score, outOf float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if outOf > 0 {
		filled = int((score / outOf) * float64(width))
	}
	filled = min(width, max(0, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", ScoreStyle(score, outOf).Render(bar), StyleMuted.Render(fmt.Sprintf("%.1f/%.0f", score, outOf)))
}

// TrendArrow renders a delta colored by its direction label ("improved",
// "regressed", "changed" or "unchanged").
func TrendArrow(delta float64, direction string) string {
	if direction == "unchanged" || delta == 0 {
		return StyleMuted.Render("─")
	}

	var arrow string
	if delta > 0 {
		arrow = fmt.Sprintf("▲ +%s", trimFloat(delta))
	} else {
		arrow = fmt.Sprintf("▼ %s", trimFloat(delta))
	}

	switch direction {
	case "improved":
		return StyleSuccess.Render(arrow)
	case "regressed":
		return StyleError.Render(arrow)
	default:
		return StyleMuted.Render(arrow)
	}
}

// trimFloat prints whole numbers without decimals and others with one.
func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// Section renders a styled section header with a horizontal rule of the
// given width.
func Section(title string, width int) string {
	if width <= 0 {
		width = 66
	}
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", width))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// KeyValue renders one label/value line.
func KeyValue(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}
