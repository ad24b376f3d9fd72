package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	"github.com/yanqian/walkcast/internal/infra/config"
	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

func TestRouter_PlanSuccess(t *testing.T) {
	resp := walkplan.PlanResponse{
		SurfaceID:       "4d7c1f4e-2a0b-4c55-9d59-9b1f4f3c2a10",
		Generation:      1,
		Date:            "2026-10-18",
		Recommendations: []walkplan.Recommendation{{TimeOfDay: "09:00", Precipitation: 0.1}},
		Lines:           []string{"09:00 - 🌧 10%"},
	}
	svc := &stubPlanner{
		planFn: func(ctx context.Context, req walkplan.PlanRequest) (walkplan.PlanResponse, error) {
			require.Equal(t, 1, req.WalksPerDay)
			require.Equal(t, "08:00", req.StartTime)
			require.True(t, req.ManualLocation)
			require.Equal(t, "Berlin", req.City)
			return resp, nil
		},
	}

	body := `{"walksPerDay":1,"startTime":"08:00","endTime":"10:00","manualLocation":true,"city":"Berlin"}`
	recorder := performRequest(http.MethodPost, "/api/v1/walks/plan", body, newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got walkplan.PlanResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_PlanInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/walks/plan", `{"walksPerDay":"two"}`, newRouterUnderTest(t, &stubPlanner{}, nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_PlanMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"empty city", apperrors.Wrap(apperrors.CodeInvalidInput, "Please enter a city name.", nil), http.StatusBadRequest, "invalid_input", "Please enter a city name."},
		{"unknown city", apperrors.Wrap(apperrors.CodeLocationNotFound, `No coordinates found for the city "Atlantis".`, nil), http.StatusNotFound, "location_not_found", `No coordinates found for the city "Atlantis".`},
		{"no device location", apperrors.Wrap(apperrors.CodeLocationUnavailable, "Your location could not be determined.", nil), http.StatusUnprocessableEntity, "location_unavailable", "Your location could not be determined."},
		{"geocoder down", apperrors.Wrap(apperrors.CodeGeocodingError, "There was an error retrieving the coordinates.", errors.New("dial tcp: refused")), http.StatusBadGateway, "geocoding_error", "There was an error retrieving the coordinates."},
		{"forecast down", apperrors.Wrap(apperrors.CodeForecastError, "There was an error retrieving the forecast.", errors.New("status 500")), http.StatusBadGateway, "forecast_error", "There was an error retrieving the forecast."},
		{"superseded", walkplan.ErrSuperseded, http.StatusConflict, "superseded", "a newer submission replaced this one"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error", "something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPlanner{
				planFn: func(context.Context, walkplan.PlanRequest) (walkplan.PlanResponse, error) {
					return walkplan.PlanResponse{}, tc.err
				},
			}
			recorder := performRequest(http.MethodPost, "/api/v1/walks/plan", `{"walksPerDay":1}`, newRouterUnderTest(t, svc, nil))
			require.Equal(t, tc.status, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tc.code, errBody["error"]["code"])
			require.Equal(t, tc.message, errBody["error"]["message"])
		})
	}
}

func TestRouter_SurfaceNotFound(t *testing.T) {
	svc := &stubPlanner{
		viewFn: func(ctx context.Context, id string) (walkplan.View, error) {
			require.Equal(t, "missing", id)
			return walkplan.View{}, apperrors.Wrap(apperrors.CodeNotFound, "surface not found", nil)
		},
	}
	recorder := performRequest(http.MethodGet, "/api/v1/walks/surfaces/missing", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_SurfaceChartSVG(t *testing.T) {
	series := make(walkplan.Series, walkplan.HoursPerDay)
	chart := walkplan.NewChart(series, walkplan.Config{DatasetLabel: "Precipitation probability"})
	chart.Annotate([]walkplan.Recommendation{{TimeOfDay: "09:00"}})
	svc := &stubPlanner{
		renderChartFn: func(_ context.Context, id string, render func(*walkplan.Chart) error) error {
			require.Equal(t, "s1", id)
			return render(chart)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/walks/surfaces/s1/chart.svg", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "image/svg+xml", recorder.Header().Get("Content-Type"))
	require.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
	require.Contains(t, recorder.Body.String(), "<svg")
}

func TestRouter_SurfaceChartNothingRendered(t *testing.T) {
	svc := &stubPlanner{
		renderChartFn: func(context.Context, string, func(*walkplan.Chart) error) error {
			return apperrors.Wrap(apperrors.CodeNotFound, "surface has nothing rendered yet", nil)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/walks/surfaces/s1/chart.svg", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_SurfaceChartRenderFailure(t *testing.T) {
	chart := walkplan.NewChart(make(walkplan.Series, walkplan.HoursPerDay), walkplan.Config{})
	chart.Destroy()
	svc := &stubPlanner{
		renderChartFn: func(_ context.Context, _ string, render func(*walkplan.Chart) error) error {
			return render(chart)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/walks/surfaces/s1/chart.svg", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "chart_render_failed", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_ConcurrentPlanAndChart(t *testing.T) {
	series := make(walkplan.Series, walkplan.HoursPerDay)
	for h := range series {
		series[h] = float64(h%5) / 10
	}
	svc := walkplan.NewService(
		walkplan.Config{DatasetLabel: "Precipitation probability"},
		nil,
		staticForecast{series: series},
		nil,
		walkplan.NewSurfaceRegistry(0),
		nil,
		newTestLogger(),
	)
	server := newRouterUnderTest(t, svc, nil)

	const surfaceID = "4d7c1f4e-2a0b-4c55-9d59-9b1f4f3c2a10"
	body := `{"walksPerDay":3,"startTime":"06:00","endTime":"20:00","latitude":52.52,"longitude":13.41,"surfaceId":"` + surfaceID + `"}`

	var wg sync.WaitGroup
	statuses := make(chan int, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			statuses <- performRequest(http.MethodPost, "/api/v1/walks/plan", body, server).Code
		}()
		go func() {
			defer wg.Done()
			rec := performRequest(http.MethodGet, "/api/v1/walks/surfaces/"+surfaceID+"/chart.svg", "", server)
			if rec.Code == http.StatusOK && !strings.Contains(rec.Body.String(), "<svg") {
				statuses <- -1
				return
			}
			statuses <- rec.Code
		}()
	}
	wg.Wait()
	close(statuses)

	for code := range statuses {
		require.Contains(t, []int{http.StatusOK, http.StatusConflict, http.StatusNotFound}, code)
	}

	final := performRequest(http.MethodGet, "/api/v1/walks/surfaces/"+surfaceID+"/chart.svg", "", server)
	require.Equal(t, http.StatusOK, final.Code)
	require.Contains(t, final.Body.String(), "<svg")
}

func TestRouter_PlanRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{
		Enabled: true,
		Plan:    config.RouteLimit{RequestsPerMinute: 60, Burst: 1},
	}
	server := newRouterWithConfig(t, &stubPlanner{}, nil, cfg)

	body := `{"walksPerDay":1}`
	require.Equal(t, http.StatusOK, performRequest(http.MethodPost, "/api/v1/walks/plan", body, server).Code)

	limited := performRequest(http.MethodPost, "/api/v1/walks/plan", body, server)
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Equal(t, "1", limited.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, limited.Body.Bytes())["error"]["code"])

	for i := 0; i < 5; i++ {
		rec := performRequest(http.MethodGet, "/api/v1/walks/surfaces/missing", "", server)
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestRouter_SurfacesRateLimitedSeparately(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{
		Enabled:  true,
		Plan:     config.RouteLimit{RequestsPerMinute: 60, Burst: 1},
		Surfaces: config.RouteLimit{RequestsPerMinute: 60, Burst: 2},
	}
	server := newRouterWithConfig(t, &stubPlanner{}, nil, cfg)

	require.Equal(t, http.StatusNotFound, performRequest(http.MethodGet, "/api/v1/walks/surfaces/a", "", server).Code)
	require.Equal(t, http.StatusNotFound, performRequest(http.MethodGet, "/api/v1/walks/surfaces/a/chart.svg", "", server).Code)
	require.Equal(t, http.StatusTooManyRequests, performRequest(http.MethodGet, "/api/v1/walks/surfaces/a", "", server).Code)

	require.Equal(t, http.StatusOK, performRequest(http.MethodPost, "/api/v1/walks/plan", `{"walksPerDay":1}`, server).Code)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, map[string]Pinger{"geocache": stubPinger{err: errors.New("connection refused")}})

	live := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, live.Code)

	ready := performRequest(http.MethodGet, "/readyz", "", server)
	require.Equal(t, http.StatusServiceUnavailable, ready.Code)
	require.Contains(t, ready.Body.String(), "connection refused")
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/walks/plan", nil)
	req.Header.Set("Origin", "https://walks.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://walks.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
	require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/walks/plan", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc walkplan.Service, deps map[string]Pinger) *http.Server {
	t.Helper()
	return newRouterWithConfig(t, svc, deps, testConfig())
}

func newRouterWithConfig(t *testing.T, svc walkplan.Service, deps map[string]Pinger, cfg *config.Config) *http.Server {
	t.Helper()
	handler := NewHandler(svc, chartimg.NewRenderer(320, 200), newTestLogger())
	return NewRouter(cfg, handler, NewHealthChecker(deps))
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"https://walks.example"},
		},
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubPlanner struct {
	planFn        func(ctx context.Context, req walkplan.PlanRequest) (walkplan.PlanResponse, error)
	viewFn        func(ctx context.Context, id string) (walkplan.View, error)
	renderChartFn func(ctx context.Context, id string, render func(*walkplan.Chart) error) error
}

func (s *stubPlanner) Plan(ctx context.Context, req walkplan.PlanRequest) (walkplan.PlanResponse, error) {
	if s.planFn != nil {
		return s.planFn(ctx, req)
	}
	return walkplan.PlanResponse{}, nil
}

func (s *stubPlanner) View(ctx context.Context, id string) (walkplan.View, error) {
	if s.viewFn != nil {
		return s.viewFn(ctx, id)
	}
	return walkplan.View{}, apperrors.Wrap(apperrors.CodeNotFound, "surface not found", nil)
}

func (s *stubPlanner) RenderChart(ctx context.Context, id string, render func(*walkplan.Chart) error) error {
	if s.renderChartFn != nil {
		return s.renderChartFn(ctx, id, render)
	}
	return apperrors.Wrap(apperrors.CodeNotFound, "surface not found", nil)
}

type staticForecast struct {
	series walkplan.Series
}

func (f staticForecast) Fetch(context.Context, walkplan.Location, time.Time) (walkplan.Series, error) {
	out := make(walkplan.Series, len(f.series))
	copy(out, f.series)
	return out, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
