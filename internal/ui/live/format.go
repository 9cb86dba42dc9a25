package live

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/metrics"
)

// formatQuestionText truncates question text for display.
func formatQuestionText(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}
	if limit <= 3 {
		limit = 80
	}
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

// formatValue renders a metric value on scale, coloured by band.
func formatValue(value metrics.Value, scale metrics.Scale, noColor bool) string {
	text := metrics.FormatScaled(value, scale)
	if noColor {
		return text
	}
	return bandStyle(metrics.BandOf(value)).Render(text)
}

// formatAverage renders a mean with its contributing row count.
func formatAverage(avg metrics.Average, scale metrics.Scale) string {
	if avg.Count == 0 {
		return metrics.Placeholder
	}
	return metrics.FormatScaled(metrics.Number(avg.Mean), scale) + " (n=" + fmtInt(avg.Count) + ")"
}

// bandStyle maps a colour band to a lipgloss style.
func bandStyle(band metrics.Band) lipgloss.Style {
	style := lipgloss.NewStyle()
	if color := band.Color(); color != "" {
		style = style.Background(lipgloss.Color(color)).Foreground(lipgloss.Color("0"))
	}
	return style
}

// scaleName names the active scale.
func scaleName(scale metrics.Scale) string {
	if scale == metrics.ScaleAbsolute {
		return "abs"
	}
	return "pct"
}

// checkbox renders a toggle marker.
func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
