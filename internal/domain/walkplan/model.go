package walkplan

import "time"

const (
	// HoursPerDay is the length of a PrecipitationSeries.
	HoursPerDay = 24
	// MinutesPerDay bounds the minute-of-day offsets accepted as preferences.
	MinutesPerDay = HoursPerDay * 60
)

// Location is a resolved pair of coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a geocoding match for a free-text city name.
type Place struct {
	Name     string   `json:"name"`
	Country  string   `json:"country,omitempty"`
	Location Location `json:"location"`
}

// Series holds one precipitation probability in [0,1] per hour of the day,
// indexed by hour.
type Series []float64

// Preferences are the validated walk settings of one submission.
type Preferences struct {
	WalksPerDay  int
	StartMinutes int
	EndMinutes   int
}

// Slot is one equal-width sub-interval of the preferred range, [Start, End).
type Slot struct {
	Start int
	End   int
}

// Recommendation is the best walk time found inside a slot.
type Recommendation struct {
	TimeOfDay     string  `json:"timeOfDay"`
	Precipitation float64 `json:"precipitation"`
}

// PlanRequest captures the form values accepted by the planner.
type PlanRequest struct {
	WalksPerDay    int      `json:"walksPerDay"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	ManualLocation bool     `json:"manualLocation"`
	City           string   `json:"city"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	SurfaceID      string   `json:"surfaceId,omitempty"`
}

// PlanResponse is serialized back to API consumers.
type PlanResponse struct {
	SurfaceID       string           `json:"surfaceId"`
	Generation      uint64           `json:"generation"`
	Date            string           `json:"date"`
	Location        Location         `json:"location"`
	Place           *Place           `json:"place,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Lines           []string         `json:"lines"`
	Chart           *Chart           `json:"chart"`
}

// View is what a surface currently displays.
type View struct {
	SurfaceID       string           `json:"surfaceId"`
	Generation      uint64           `json:"generation"`
	Date            string           `json:"date"`
	Location        Location         `json:"location"`
	Place           *Place           `json:"place,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Lines           []string         `json:"lines"`
	Chart           *Chart           `json:"chart"`
	RenderedAt      time.Time        `json:"renderedAt"`
}

// Config wires runtime knobs for the walk planning domain.
type Config struct {
	DatasetLabel string
	XAxisTitle   string
	YAxisTitle   string
}
