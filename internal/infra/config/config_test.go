package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  address: ":9090"
  allowedOrigins: ["https://walks.example"]
geocache:
  ttl: 2h
surfaces:
  idleTtl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OPEN_METEO_TIMEOUT", "3s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HTTP_RATE_LIMIT_PLAN_RPM", "12")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 2*time.Hour, cfg.Geocache.TTL)
	require.Equal(t, 5*time.Minute, cfg.Surfaces.IdleTTL)
	require.Equal(t, 3*time.Second, cfg.OpenMeteo.Timeout)
	require.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Equal(t, "precipitation", cfg.OpenMeteo.HourlyVariable)
	require.Equal(t, RouteLimit{RequestsPerMinute: 12, Burst: 10}, cfg.HTTP.RateLimit.Plan)
	require.Zero(t, cfg.HTTP.RateLimit.Surfaces.RequestsPerMinute)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty address":       func(c *Config) { c.HTTP.Address = "" },
		"zero shutdown":       func(c *Config) { c.HTTP.ShutdownTimeout = 0 },
		"relative forecast":   func(c *Config) { c.OpenMeteo.ForecastURL = "/v1/forecast" },
		"valkey without addr": func(c *Config) { c.Geocache.Valkey.Enabled = true },
		"zero idle ttl":       func(c *Config) { c.Surfaces.IdleTTL = 0 },
		"zero plan burst":     func(c *Config) { c.HTTP.RateLimit.Plan.Burst = 0 },
		"negative surfaces":   func(c *Config) { c.HTTP.RateLimit.Surfaces.RequestsPerMinute = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
