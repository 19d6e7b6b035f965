package format

import (
	"fmt"
	"time"
)

// FormatElapsed renders the wall time of an analysis. Sub-millisecond values
// collapse to "<1ms" and seconds keep one decimal.
func FormatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "0ms"
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
