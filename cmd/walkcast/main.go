package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	"github.com/yanqian/walkcast/internal/infra/config"
	"github.com/yanqian/walkcast/internal/infra/geocache"
	"github.com/yanqian/walkcast/internal/infra/ipgeo"
	"github.com/yanqian/walkcast/internal/infra/openmeteo"
	"github.com/yanqian/walkcast/internal/interface/cli"
	"github.com/yanqian/walkcast/pkg/logger"
	"github.com/yanqian/walkcast/pkg/metrics"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	log := logger.NewWriter(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	walkMetrics, err := metrics.NewWalkMetrics()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	geocoder := geocache.NewCachingGeocoder(
		openmeteo.NewGeocodingClient(cfg.OpenMeteo.GeocodingURL, cfg.OpenMeteo.Language, cfg.OpenMeteo.Timeout),
		geocache.NewMemoryStore(),
		cfg.Geocache.TTL,
		walkMetrics,
		log,
	)
	planner := walkplan.NewService(
		walkplan.Config{
			DatasetLabel: cfg.Chart.DatasetLabel,
			XAxisTitle:   cfg.Chart.XAxisTitle,
			YAxisTitle:   cfg.Chart.YAxisTitle,
		},
		geocoder,
		openmeteo.NewForecastClient(cfg.OpenMeteo.ForecastURL, cfg.OpenMeteo.HourlyVariable, cfg.OpenMeteo.Timeout),
		ipgeo.NewClient(cfg.DeviceLocation.IPLocatorURL, cfg.DeviceLocation.Timeout),
		walkplan.NewSurfaceRegistry(cfg.Surfaces.IdleTTL),
		walkMetrics,
		log,
	)

	deps := cli.Dependencies{
		Planner: planner,
		Charts:  chartimg.NewRenderer(cfg.Chart.Width, cfg.Chart.Height),
		Version: version,
	}

	exitCode := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}
