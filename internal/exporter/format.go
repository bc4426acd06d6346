package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a float64 for CSV output with the shortest
// representation that round-trips, so re-loading an export reproduces the
// exact values. NaN becomes the empty string, the missing-value marker.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 for CSV output.
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
