package walkplan

import (
	"fmt"
	"strconv"
	"strings"
)

// ToMinutes converts an "HH:MM" wall-clock string into a minute-of-day offset.
// Both fields are one or two unsigned digits and minutes must be below 60.
// The hour is not range checked; Preferences.Validate does that.
func ToMinutes(hhmm string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, fmt.Errorf("time %q must be formatted as HH:MM", hhmm)
	}
	hours, err := clockField(hh)
	if err != nil {
		return 0, fmt.Errorf("time %q has invalid hours: %w", hhmm, err)
	}
	minutes, err := clockField(mm)
	if err != nil {
		return 0, fmt.Errorf("time %q has invalid minutes: %w", hhmm, err)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("time %q has minutes outside 00-59", hhmm)
	}
	return hours*60 + minutes, nil
}

func clockField(s string) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("expected one or two digits, got %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("expected digits, got %q", s)
		}
	}
	return strconv.Atoi(s)
}

// ToClock formats a minute-of-day offset as zero padded "HH:MM".
func ToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
