package walkplan

import (
	"fmt"
	"math"

	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

// ParsePreferences converts form values into validated Preferences.
func ParsePreferences(walksPerDay int, startTime, endTime string) (Preferences, error) {
	start, err := ToMinutes(startTime)
	if err != nil {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInvalidInput, "start time must be formatted as HH:MM", err)
	}
	end, err := ToMinutes(endTime)
	if err != nil {
		return Preferences{}, apperrors.Wrap(apperrors.CodeInvalidInput, "end time must be formatted as HH:MM", err)
	}
	prefs := Preferences{WalksPerDay: walksPerDay, StartMinutes: start, EndMinutes: end}
	if err := prefs.Validate(); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// Validate rejects preferences the slot partition cannot serve, including
// ranges too narrow to give every walk at least one minute.
func (p Preferences) Validate() error {
	switch {
	case p.WalksPerDay <= 0:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "walks per day must be positive", nil)
	case p.StartMinutes < 0 || p.StartMinutes >= MinutesPerDay:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "start time must be between 00:00 and 23:59", nil)
	case p.EndMinutes < 0 || p.EndMinutes >= MinutesPerDay:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "end time must be between 00:00 and 23:59", nil)
	case p.EndMinutes <= p.StartMinutes:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "end time must be after start time", nil)
	case p.Interval() == 0:
		return apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("%d walks do not fit into a %d minute range", p.WalksPerDay, p.EndMinutes-p.StartMinutes), nil)
	}
	return nil
}

// Interval is the width in minutes of every slot. Remainder minutes of the
// integer division are dropped from the end of the range.
func (p Preferences) Interval() int {
	if p.WalksPerDay <= 0 {
		return 0
	}
	return (p.EndMinutes - p.StartMinutes) / p.WalksPerDay
}

// Partition splits the preferred range into WalksPerDay adjacent slots.
func (p Preferences) Partition() []Slot {
	interval := p.Interval()
	slots := make([]Slot, 0, max(p.WalksPerDay, 0))
	for i := 0; i < p.WalksPerDay; i++ {
		start := p.StartMinutes + i*interval
		slots = append(slots, Slot{Start: start, End: start + interval})
	}
	return slots
}

// Recommend picks, for every slot, the hour boundary sample with the lowest
// precipitation probability. Samples are taken every 60 minutes from the slot
// start; the first minimum wins ties.
func Recommend(series Series, prefs Preferences) ([]Recommendation, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if len(series) != HoursPerDay {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("forecast must contain %d hourly values, got %d", HoursPerDay, len(series)), nil)
	}

	recommendations := make([]Recommendation, 0, prefs.WalksPerDay)
	for _, slot := range prefs.Partition() {
		best := slot.Start
		lowest := math.Inf(1)
		for m := slot.Start; m < slot.End; m += 60 {
			if p := series[m/60]; p < lowest {
				lowest = p
				best = m
			}
		}
		recommendations = append(recommendations, Recommendation{
			TimeOfDay:     ToClock(best),
			Precipitation: lowest,
		})
	}
	return recommendations, nil
}
