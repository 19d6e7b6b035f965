package format

import (
	"math"
	"strconv"
	"strings"
)

// FormatGL renders a glycemic load value with one decimal place.
func FormatGL(gl float64) string {
	return strconv.FormatFloat(gl, 'f', 1, 64)
}

// FormatQuantity renders a portion count without trailing zeros:
// 1 → "1", 1.5 → "1.5", 0.25 → "0.25".
func FormatQuantity(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return "?"
	}
	s := strconv.FormatFloat(q, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// PreviewGL is the rough per-item estimate shown while portions are being
// adjusted, before the service has computed real values.
func PreviewGL(quantity float64) float64 {
	return 5 * quantity
}

// StepIndicator renders the progress line, e.g. "Step 2 of 4".
func StepIndicator(n, total int) string {
	return "Step " + strconv.Itoa(n) + " of " + strconv.Itoa(total)
}

// ItemNote returns the annotation printed after a per-item GL value, or ""
// for a plain database match. status is the wire status of the item.
func ItemNote(status, message string) string {
	var label string
	switch status {
	case "":
		return ""
	case "ai_estimated":
		return "(AI estimated)"
	case "not_found":
		label = "not found"
	case "invalid_quantity":
		label = "invalid quantity"
	case "invalid_format":
		label = "invalid format"
	default:
		label = status
	}
	if message == "" {
		return "(" + label + ")"
	}
	return "(" + label + ": " + message + ")"
}
