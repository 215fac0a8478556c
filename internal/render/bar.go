package render

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// bar renders a horizontal score bar for a 0-100 value.
func bar(label string, score float64, width int) string {
	var b strings.Builder
	if label != "" {
		b.WriteString(bodyStyle.Render(label) + "  ")
	}

	barWidth := width - lipgloss.Width(b.String()) - 5
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * score / 100)
	filled = max(0, min(filled, barWidth))

	b.WriteString(lipgloss.NewStyle().Foreground(scoreColor(score)).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("░", barWidth-filled)))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %3.0f%%", score)))
	return b.String()
}

func scoreColor(score float64) color.Color {
	switch {
	case score >= 80:
		return Success
	case score >= 50:
		return Accent
	default:
		return Error
	}
}
