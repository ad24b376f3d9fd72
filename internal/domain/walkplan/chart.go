package walkplan

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	lineColor      = "rgba(75, 192, 192, 1)"
	fillColor      = "rgba(75, 192, 192, 0.2)"
	highlightColor = "rgba(255, 99, 132, 1)"

	highlightBorderWidth = 2
	highlightRadius      = 5
)

// Chart is a line chart model of the day's precipitation percentages. Its JSON
// form follows the Chart.js data layout so browsers can render it directly.
type Chart struct {
	Type       string    `json:"type"`
	Labels     []string  `json:"labels"`
	Datasets   []Dataset `json:"datasets"`
	XAxisTitle string    `json:"xAxisTitle"`
	YAxisTitle string    `json:"yAxisTitle"`

	percentages []float64
	destroyed   atomic.Bool
}

// Dataset is one plotted series. The point style slices stay nil until the
// first highlight; afterwards they hold one entry per label and nil means
// "no override" for that point.
type Dataset struct {
	Label                string    `json:"label"`
	Data                 []float64 `json:"data"`
	BackgroundColor      string    `json:"backgroundColor"`
	BorderColor          string    `json:"borderColor"`
	BorderWidth          int       `json:"borderWidth"`
	Tension              float64   `json:"tension"`
	Fill                 bool      `json:"fill"`
	PointBackgroundColor []*string `json:"pointBackgroundColor,omitempty"`
	PointBorderColor     []*string `json:"pointBorderColor,omitempty"`
	PointBorderWidth     []*int    `json:"pointBorderWidth,omitempty"`
	PointRadius          []*int    `json:"pointRadius,omitempty"`
}

// HourLabels returns "00:00" through "23:00".
func HourLabels() []string {
	labels := make([]string, HoursPerDay)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d:00", h)
	}
	return labels
}

// NewChart builds the base chart for a series without any highlights.
func NewChart(series Series, cfg Config) *Chart {
	percentages := make([]float64, len(series))
	for i, p := range series {
		percentages[i] = p * 100
	}
	data := make([]float64, len(percentages))
	copy(data, percentages)

	return &Chart{
		Type:   "line",
		Labels: HourLabels(),
		Datasets: []Dataset{{
			Label:           cfg.DatasetLabel,
			Data:            data,
			BackgroundColor: fillColor,
			BorderColor:     lineColor,
			BorderWidth:     1,
			Tension:         0.1,
			Fill:            true,
		}},
		XAxisTitle:  cfg.XAxisTitle,
		YAxisTitle:  cfg.YAxisTitle,
		percentages: percentages,
	}
}

// Annotate highlights the hour of every recommendation. Recommendations whose
// time cannot be parsed or falls outside the axis are skipped.
func (c *Chart) Annotate(recs []Recommendation) {
	for _, rec := range recs {
		minutes, err := ToMinutes(rec.TimeOfDay)
		if err != nil || minutes < 0 {
			continue
		}
		c.Highlight(minutes / 60)
	}
}

// Highlight emphasizes the point at the given hour index in every dataset.
// It reports whether the index exists on the axis.
func (c *Chart) Highlight(hour int) bool {
	if hour < 0 || hour >= len(c.Labels) {
		return false
	}
	for i := range c.Datasets {
		ds := &c.Datasets[i]
		if ds.PointBackgroundColor == nil {
			n := len(c.Labels)
			ds.PointBackgroundColor = make([]*string, n)
			ds.PointBorderColor = make([]*string, n)
			ds.PointBorderWidth = make([]*int, n)
			ds.PointRadius = make([]*int, n)
		}
		color, width, radius := highlightColor, highlightBorderWidth, highlightRadius
		ds.PointBackgroundColor[hour] = &color
		ds.PointBorderColor[hour] = &color
		ds.PointBorderWidth[hour] = &width
		ds.PointRadius[hour] = &radius
		if hour < len(ds.Data) && math.IsNaN(ds.Data[hour]) && hour < len(c.percentages) {
			ds.Data[hour] = c.percentages[hour]
		}
	}
	return true
}

// HighlightedHours lists the emphasized hour indexes of the first dataset.
func (c *Chart) HighlightedHours() []int {
	if len(c.Datasets) == 0 {
		return nil
	}
	var hours []int
	for h, r := range c.Datasets[0].PointRadius {
		if r != nil {
			hours = append(hours, h)
		}
	}
	return hours
}

// Destroy releases the chart. A destroyed chart must not be rendered again.
func (c *Chart) Destroy() {
	c.destroyed.Store(true)
}

// Destroyed reports whether Destroy has been called.
func (c *Chart) Destroyed() bool {
	return c.destroyed.Load()
}
