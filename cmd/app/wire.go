//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/walkcast/internal/bootstrap"
	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	"github.com/yanqian/walkcast/internal/infra/config"
	"github.com/yanqian/walkcast/internal/infra/openmeteo"
	httpiface "github.com/yanqian/walkcast/internal/interface/http"
	"github.com/yanqian/walkcast/pkg/logger"
	"github.com/yanqian/walkcast/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewWalkMetrics,
		provideWalkPlanConfig,
		provideGeocodingClient,
		provideForecastClient,
		provideGeocacheStore,
		provideGeocoder,
		provideDeviceLocator,
		provideSurfaceRegistry,
		provideChartRenderer,
		provideHealthChecker,
		walkplan.NewService,
		wire.Bind(new(walkplan.ForecastClient), new(*openmeteo.ForecastClient)),
		wire.Bind(new(httpiface.ChartRenderer), new(*chartimg.Renderer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
