package metrics

import "strconv"

// Placeholder is shown for metrics with no value.
const Placeholder = "-"

// Band is a colour bucket for a metric value on the 0..1 scale.
type Band int

const (
	BandNone Band = iota
	BandPoor
	BandFair
	BandGood
)

// BandOf buckets a value: above 0.7 is good, 0.4 and above is fair, the rest poor.
func BandOf(value Value) Band {
	n, ok := value.Float()
	if !ok {
		return BandNone
	}
	switch {
	case n > 0.7:
		return BandGood
	case n >= 0.4:
		return BandFair
	default:
		return BandPoor
	}
}

// Color returns the background colour for the band, or "" for none.
func (b Band) Color() string {
	switch b {
	case BandGood:
		return "#d0f5e0"
	case BandFair:
		return "#fff9c4"
	case BandPoor:
		return "#ffcdd2"
	default:
		return ""
	}
}

// String names the band.
func (b Band) String() string {
	switch b {
	case BandGood:
		return "good"
	case BandFair:
		return "fair"
	case BandPoor:
		return "poor"
	default:
		return "none"
	}
}

// Scale selects how values are rendered.
type Scale int

const (
	ScalePercent Scale = iota
	ScaleAbsolute
)

// Format renders a value with three decimals, or the placeholder when missing.
func Format(value Value) string {
	n, ok := value.Float()
	if !ok {
		return Placeholder
	}
	return strconv.FormatFloat(n, 'f', 3, 64)
}

// FormatScaled renders a value on the chosen scale: percent with one decimal,
// or absolute with three.
func FormatScaled(value Value, scale Scale) string {
	n, ok := value.Float()
	if !ok {
		return Placeholder
	}
	if scale == ScalePercent {
		return strconv.FormatFloat(n*100, 'f', 1, 64) + "%"
	}
	return strconv.FormatFloat(n, 'f', 3, 64)
}

// Fraction returns value/max clamped to [0,1] for bar widths. Percent scale
// uses a max of 1.
func Fraction(value Value, scale Scale, scaleMax float64) float64 {
	n, ok := value.Float()
	if !ok {
		return 0
	}
	denom := 1.0
	if scale == ScaleAbsolute && scaleMax > 0 {
		denom = scaleMax
	}
	return max(0, min(1, n/denom))
}
