package ipgeo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

const defaultLocatorURL = "https://ipapi.co/json/"

// ErrLocationLookup is returned when the device position cannot be determined.
var ErrLocationLookup = errors.New("error when trying to get device location")

// Client reports the approximate position of this machine from its public IP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates an IP locator client.
func NewClient(url string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(url)
	if endpoint == "" {
		endpoint = defaultLocatorURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type locatorResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Locate performs one lookup; there is no continuous tracking.
func (c *Client) Locate(ctx context.Context) (walkplan.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return walkplan.Location{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "walkcast/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return walkplan.Location{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return walkplan.Location{}, fmt.Errorf("%w: status=%d", ErrLocationLookup, res.StatusCode)
	}

	var payload locatorResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return walkplan.Location{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	if payload.Error {
		return walkplan.Location{}, fmt.Errorf("%w: %s", ErrLocationLookup, payload.Reason)
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		return walkplan.Location{}, ErrLocationLookup
	}
	return walkplan.Location{
		Latitude:  *payload.Latitude,
		Longitude: *payload.Longitude,
	}, nil
}
