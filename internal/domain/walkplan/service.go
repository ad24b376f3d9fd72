package walkplan

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/walkcast/pkg/errors"
	"github.com/yanqian/walkcast/pkg/metrics"
	"github.com/yanqian/walkcast/pkg/util"
)

const msgForecastFailed = "There was an error retrieving the forecast."

// Service exposes walk planning capabilities.
type Service interface {
	Plan(ctx context.Context, req PlanRequest) (PlanResponse, error)
	View(ctx context.Context, surfaceID string) (View, error)
	RenderChart(ctx context.Context, surfaceID string, render func(*Chart) error) error
}

// Geocoder resolves a city name into at most a handful of places, best first.
// An empty result means the name is unknown.
type Geocoder interface {
	Search(ctx context.Context, name string) ([]Place, error)
}

// ForecastClient fetches the hourly precipitation series of the UTC day that
// contains date.
type ForecastClient interface {
	Fetch(ctx context.Context, loc Location, date time.Time) (Series, error)
}

// DeviceLocator reports the current position of the device running the
// planner. It is asked once per submission.
type DeviceLocator interface {
	Locate(ctx context.Context) (Location, error)
}

type service struct {
	cfg      Config
	geocoder Geocoder
	forecast ForecastClient
	locator  DeviceLocator
	surfaces *SurfaceRegistry
	metrics  *metrics.WalkMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the walk planning domain. locator may be nil, in which
// case automatic mode requires coordinates in the request.
func NewService(
	cfg Config,
	geocoder Geocoder,
	forecast ForecastClient,
	locator DeviceLocator,
	surfaces *SurfaceRegistry,
	walkMetrics *metrics.WalkMetrics,
	logger *slog.Logger,
) Service {
	return &service{
		cfg:      cfg,
		geocoder: geocoder,
		forecast: forecast,
		locator:  locator,
		surfaces: surfaces,
		metrics:  walkMetrics,
		logger:   logger.With("component", "walkplan.service"),
		now:      util.NowUTC,
	}
}

func (s *service) Plan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	started := time.Now()
	resp, err := s.plan(ctx, req)
	outcome := "ok"
	if err != nil {
		if outcome = apperrors.CodeOf(err); outcome == "" {
			outcome = "internal"
		}
	}
	s.metrics.RecordPlan(ctx, outcome, time.Since(started))
	return resp, err
}

func (s *service) plan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	prefs, err := ParsePreferences(req.WalksPerDay, req.StartTime, req.EndTime)
	if err != nil {
		return PlanResponse{}, err
	}
	input, err := s.checkLocationInput(req)
	if err != nil {
		return PlanResponse{}, err
	}
	surface, err := s.surfaces.Acquire(req.SurfaceID)
	if err != nil {
		return PlanResponse{}, err
	}

	ticket, release := surface.Begin(ctx)
	defer release()
	logger := s.logger.With("surface", surface.ID(), "generation", ticket.Generation())

	loc, place, err := s.resolveLocation(ticket.Context(), input)
	if err != nil {
		return PlanResponse{}, s.supersededOr(surface, ticket, err)
	}

	date := s.now().UTC()
	series, err := s.forecast.Fetch(ticket.Context(), loc, date)
	if err != nil {
		if !surface.Current(ticket) {
			return PlanResponse{}, ErrSuperseded
		}
		logger.Error("forecast fetch failed", "latitude", loc.Latitude, "longitude", loc.Longitude, "error", err)
		return PlanResponse{}, apperrors.Wrap(apperrors.CodeForecastError, msgForecastFailed, err)
	}
	logger.Info("walk plan forecast fetched", "date", date.Format(util.DateLayout), "hours", len(series))

	recs, err := Recommend(series, prefs)
	if err != nil {
		return PlanResponse{}, apperrors.Wrap(apperrors.CodeForecastError, msgForecastFailed, err)
	}

	chart := NewChart(series, s.cfg)
	chart.Annotate(recs)
	view := View{
		Date:            date.Format(util.DateLayout),
		Location:        loc,
		Place:           place,
		Recommendations: recs,
		Lines:           RenderList(recs),
		Chart:           chart,
		RenderedAt:      s.now(),
	}
	if err := surface.Commit(ticket, view); err != nil {
		logger.Info("walk plan superseded before render")
		return PlanResponse{}, err
	}

	return PlanResponse{
		SurfaceID:       surface.ID(),
		Generation:      ticket.Generation(),
		Date:            view.Date,
		Location:        loc,
		Place:           place,
		Recommendations: recs,
		Lines:           view.Lines,
		Chart:           chart,
	}, nil
}

func (s *service) View(_ context.Context, surfaceID string) (View, error) {
	surface, ok := s.surfaces.Lookup(surfaceID)
	if !ok {
		return View{}, apperrors.Wrap(apperrors.CodeNotFound, "surface not found", nil)
	}
	view, rendered := surface.Snapshot()
	if !rendered {
		return View{}, errNothingRendered
	}
	return view, nil
}

func (s *service) RenderChart(_ context.Context, surfaceID string, render func(*Chart) error) error {
	surface, ok := s.surfaces.Lookup(surfaceID)
	if !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "surface not found", nil)
	}
	return surface.RenderChart(render)
}

// supersededOr hides failures caused by a newer submission cancelling this one.
func (s *service) supersededOr(surface *Surface, ticket Ticket, err error) error {
	if !surface.Current(ticket) {
		return ErrSuperseded
	}
	return err
}
