package openmeteo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

const defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// GeocodingClient resolves city names through the Open-Meteo geocoding API.
type GeocodingClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewGeocodingClient builds a geocoding client; empty values fall back to the
// public endpoint and English results.
func NewGeocodingClient(baseURL, language string, timeout time.Duration) *GeocodingClient {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = "en"
	}
	return &GeocodingClient{
		baseURL:    normalizeBaseURL(baseURL, defaultGeocodingURL),
		language:   lang,
		httpClient: newHTTPClient(timeout),
	}
}

// Search asks for the single best match of name. A missing or empty results
// array yields an empty slice and no error.
func (c *GeocodingClient) Search(ctx context.Context, name string) ([]walkplan.Place, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("count", "1")
	query.Set("language", c.language)
	query.Set("format", "json")

	var raw geocodingResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL, query, &raw); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", name, err)
	}

	places := make([]walkplan.Place, 0, len(raw.Results))
	for _, res := range raw.Results {
		places = append(places, walkplan.Place{
			Name:    res.Name,
			Country: res.Country,
			Location: walkplan.Location{
				Latitude:  res.Latitude,
				Longitude: res.Longitude,
			},
		})
	}
	return places, nil
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
