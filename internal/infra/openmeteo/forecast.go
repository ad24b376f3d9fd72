package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/pkg/util"
)

const (
	defaultForecastURL    = "https://api.open-meteo.com/v1/forecast"
	defaultHourlyVariable = "precipitation"
)

// ForecastClient fetches hourly precipitation forecasts from Open-Meteo.
type ForecastClient struct {
	baseURL    string
	hourly     string
	httpClient *http.Client
}

// NewForecastClient builds a forecast client. hourly names the Open-Meteo
// hourly variable holding the probability series.
func NewForecastClient(baseURL, hourly string, timeout time.Duration) *ForecastClient {
	variable := strings.TrimSpace(hourly)
	if variable == "" {
		variable = defaultHourlyVariable
	}
	return &ForecastClient{
		baseURL:    normalizeBaseURL(baseURL, defaultForecastURL),
		hourly:     variable,
		httpClient: newHTTPClient(timeout),
	}
}

// Fetch retrieves the series for the UTC calendar day containing date. Values
// past the first 24 hours are dropped; fewer than 24 or null entries fail.
func (c *ForecastClient) Fetch(ctx context.Context, loc walkplan.Location, date time.Time) (walkplan.Series, error) {
	start, end := util.DayWindowUTC(date)

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	query.Set("hourly", c.hourly)
	query.Set("start", start.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))

	var raw forecastResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL, query, &raw); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return c.extractSeries(raw)
}

func (c *ForecastClient) extractSeries(raw forecastResponse) (walkplan.Series, error) {
	values, ok := raw.Hourly[c.hourly]
	if !ok {
		return nil, fmt.Errorf("forecast: hourly.%s missing from response", c.hourly)
	}
	var points []*float64
	if err := json.Unmarshal(values, &points); err != nil {
		return nil, fmt.Errorf("forecast: decode hourly.%s: %w", c.hourly, err)
	}
	if len(points) < walkplan.HoursPerDay {
		return nil, fmt.Errorf("forecast: expected %d hourly values, got %d", walkplan.HoursPerDay, len(points))
	}

	series := make(walkplan.Series, walkplan.HoursPerDay)
	for hour := range series {
		if points[hour] == nil {
			return nil, fmt.Errorf("forecast: hourly.%s[%d] is null", c.hourly, hour)
		}
		series[hour] = *points[hour]
	}
	return series, nil
}

type forecastResponse struct {
	Latitude  float64                    `json:"latitude"`
	Longitude float64                    `json:"longitude"`
	Hourly    map[string]json.RawMessage `json:"hourly"`
}
