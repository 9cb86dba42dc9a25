package report

import (
	"strconv"

	"ragdesk/internal/metrics"
)

// formatAverage renders a mean with its contributing count, or "-" when nothing contributed.
func formatAverage(avg metrics.Average, scale metrics.Scale) string {
	if avg.Count == 0 {
		return metrics.Placeholder
	}
	return metrics.FormatScaled(metrics.Number(avg.Mean), scale) + " (n=" + strconv.Itoa(avg.Count) + ")"
}

// bandName names the colour bucket of a value, or "" when it has none.
func bandName(value metrics.Value) string {
	band := metrics.BandOf(value)
	if band == metrics.BandNone {
		return ""
	}
	return band.String()
}
