package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	"github.com/yanqian/walkcast/internal/infra/config"
	"github.com/yanqian/walkcast/internal/infra/geocache"
	"github.com/yanqian/walkcast/internal/infra/openmeteo"
	httpiface "github.com/yanqian/walkcast/internal/interface/http"
	"github.com/yanqian/walkcast/pkg/metrics"
)

func provideWalkPlanConfig(cfg *config.Config) walkplan.Config {
	return walkplan.Config{
		DatasetLabel: cfg.Chart.DatasetLabel,
		XAxisTitle:   cfg.Chart.XAxisTitle,
		YAxisTitle:   cfg.Chart.YAxisTitle,
	}
}

func provideGeocodingClient(cfg *config.Config) *openmeteo.GeocodingClient {
	return openmeteo.NewGeocodingClient(cfg.OpenMeteo.GeocodingURL, cfg.OpenMeteo.Language, cfg.OpenMeteo.Timeout)
}

func provideForecastClient(cfg *config.Config) *openmeteo.ForecastClient {
	return openmeteo.NewForecastClient(cfg.OpenMeteo.ForecastURL, cfg.OpenMeteo.HourlyVariable, cfg.OpenMeteo.Timeout)
}

func provideGeocoder(cfg *config.Config, client *openmeteo.GeocodingClient, store geocache.Store, walkMetrics *metrics.WalkMetrics, logger *slog.Logger) walkplan.Geocoder {
	return geocache.NewCachingGeocoder(client, store, cfg.Geocache.TTL, walkMetrics, logger)
}

// provideDeviceLocator returns nil: a server has no device of its own, so
// automatic mode over HTTP needs the browser's coordinates in the request.
func provideDeviceLocator() walkplan.DeviceLocator {
	return nil
}

func provideSurfaceRegistry(cfg *config.Config) *walkplan.SurfaceRegistry {
	return walkplan.NewSurfaceRegistry(cfg.Surfaces.IdleTTL)
}

func provideChartRenderer(cfg *config.Config) *chartimg.Renderer {
	return chartimg.NewRenderer(cfg.Chart.Width, cfg.Chart.Height)
}

func provideHealthChecker(store geocache.Store) *httpiface.HealthChecker {
	return httpiface.NewHealthChecker(map[string]httpiface.Pinger{"geocache": store})
}

func provideGeocacheStore(cfg *config.Config, logger *slog.Logger) geocache.Store {
	if cfg.Geocache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return geocache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return geocache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("geocache valkey store enabled", "addr", cfg.Geocache.Valkey.Addr)
			return geocache.NewValkeyStore(client, "walkcast:geocode")
		}
	}
	return geocache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Geocache.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Geocache.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Geocache.Valkey.Addr}}, nil
}
