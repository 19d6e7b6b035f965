// Package format holds the display helpers shared by the CLI and the TUI:
// glycemic load bands, number formatting and durations.
package format

// Band is a glycemic load impact category.
type Band int

const (
	// BandLow covers totals up to 10.
	BandLow Band = iota
	// BandModerate covers totals above 10 up to 19.
	BandModerate
	// BandHigh covers totals above 19.
	BandHigh
)

// Band thresholds, inclusive upper bounds.
const (
	LowMax      = 10.0
	ModerateMax = 19.0
)

// ClassifyGL returns the band for a glycemic load value.
func ClassifyGL(gl float64) Band {
	switch {
	case gl <= LowMax:
		return BandLow
	case gl <= ModerateMax:
		return BandModerate
	default:
		return BandHigh
	}
}

// String returns the lower-case band name used by themes and JSON output.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandModerate:
		return "moderate"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Label is the heading shown next to a total, e.g. "Moderate Impact".
func (b Band) Label() string {
	switch b {
	case BandLow:
		return "Low Impact"
	case BandModerate:
		return "Moderate Impact"
	case BandHigh:
		return "High Impact"
	default:
		return "Unknown Impact"
	}
}

// Description is a one-sentence explanation of what the band means.
func (b Band) Description() string {
	switch b {
	case BandLow:
		return "Your blood sugar should rise gently over 2-3 hours. Great choice!"
	case BandModerate:
		return "Your blood sugar will rise moderately. Consider adding more fiber or protein next time."
	case BandHigh:
		return "Your blood sugar may rise quickly. Try smaller portions or add vegetables to balance the meal."
	default:
		return ""
	}
}
