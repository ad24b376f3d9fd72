package walkplan

import (
	"fmt"
	"math"
)

// Percent converts a fractional probability into a rounded whole percentage.
func Percent(probability float64) int {
	return int(math.Round(probability * 100))
}

// FormatLine renders one list entry, e.g. "14:00 - 🌧 5%".
func FormatLine(rec Recommendation) string {
	return fmt.Sprintf("%s - 🌧 %d%%", rec.TimeOfDay, Percent(rec.Precipitation))
}

// RenderList renders the recommendation list in slot order.
func RenderList(recs []Recommendation) []string {
	lines := make([]string, 0, len(recs))
	for _, rec := range recs {
		lines = append(lines, FormatLine(rec))
	}
	return lines
}
