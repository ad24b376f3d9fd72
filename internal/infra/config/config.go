package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	OpenMeteo      OpenMeteoConfig      `yaml:"openMeteo"`
	Geocache       GeocacheConfig       `yaml:"geocache"`
	DeviceLocation DeviceLocationConfig `yaml:"deviceLocation"`
	Chart          ChartConfig          `yaml:"chart"`
	Surfaces       SurfacesConfig       `yaml:"surfaces"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware, one bucket per
// route group and client IP.
type RateLimitConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Plan     RouteLimit `yaml:"plan"`
	Surfaces RouteLimit `yaml:"surfaces"`
}

// RouteLimit is a per client token bucket. RequestsPerMinute 0 means unlimited.
type RouteLimit struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	Burst             int `yaml:"burst"`
}

// OpenMeteoConfig points the geocoding and forecast clients at their APIs.
type OpenMeteoConfig struct {
	GeocodingURL   string        `yaml:"geocodingUrl"`
	ForecastURL    string        `yaml:"forecastUrl"`
	Language       string        `yaml:"language"`
	HourlyVariable string        `yaml:"hourlyVariable"`
	Timeout        time.Duration `yaml:"timeout"`
}

// GeocacheConfig controls caching of city lookups.
type GeocacheConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DeviceLocationConfig configures the IP based locator used by the CLI.
type DeviceLocationConfig struct {
	IPLocatorURL string        `yaml:"ipLocatorUrl"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ChartConfig sizes exported chart images and labels the plotted series.
type ChartConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	DatasetLabel string `yaml:"datasetLabel"`
	XAxisTitle   string `yaml:"xAxisTitle"`
	YAxisTitle   string `yaml:"yAxisTitle"`
}

// SurfacesConfig bounds how long an idle display surface is kept.
type SurfacesConfig struct {
	IdleTTL time.Duration `yaml:"idleTtl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ShutdownTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_PLAN_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Plan.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_PLAN_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Plan.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_SURFACES_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Surfaces.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_SURFACES_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Surfaces.Burst = parsed
		}
	}
	if v := os.Getenv("OPEN_METEO_GEOCODING_URL"); v != "" {
		cfg.OpenMeteo.GeocodingURL = v
	}
	if v := os.Getenv("OPEN_METEO_FORECAST_URL"); v != "" {
		cfg.OpenMeteo.ForecastURL = v
	}
	if v := os.Getenv("OPEN_METEO_LANGUAGE"); v != "" {
		cfg.OpenMeteo.Language = v
	}
	if v := os.Getenv("OPEN_METEO_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.OpenMeteo.Timeout = parsed
		}
	}
	if v := os.Getenv("GEOCACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocache.TTL = parsed
		}
	}
	if v := os.Getenv("GEOCACHE_VALKEY_ENABLED"); v != "" {
		cfg.Geocache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("GEOCACHE_VALKEY_ADDR"); v != "" {
		cfg.Geocache.Valkey.Addr = v
	}
	if v := os.Getenv("DEVICE_LOCATION_URL"); v != "" {
		cfg.DeviceLocation.IPLocatorURL = v
	}
	if v := os.Getenv("SURFACES_IDLE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Surfaces.IdleTTL = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// Default returns the built-in configuration before file and env overrides.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:  true,
				Plan:     RouteLimit{RequestsPerMinute: 30, Burst: 10},
				Surfaces: RouteLimit{RequestsPerMinute: 0},
			},
		},
		OpenMeteo: OpenMeteoConfig{
			GeocodingURL:   "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:    "https://api.open-meteo.com/v1/forecast",
			Language:       "en",
			HourlyVariable: "precipitation",
			Timeout:        10 * time.Second,
		},
		Geocache: GeocacheConfig{
			TTL: 24 * time.Hour,
		},
		DeviceLocation: DeviceLocationConfig{
			IPLocatorURL: "https://ipapi.co/json/",
			Timeout:      5 * time.Second,
		},
		Chart: ChartConfig{
			Width:        960,
			Height:       400,
			DatasetLabel: "Precipitation probability",
			XAxisTitle:   "Time",
			YAxisTitle:   "Precipitation (%)",
		},
		Surfaces: SurfacesConfig{
			IdleTTL: 30 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdownTimeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if err := c.HTTP.RateLimit.Plan.validate("http.rateLimit.plan"); err != nil {
			return err
		}
		if err := c.HTTP.RateLimit.Surfaces.validate("http.rateLimit.surfaces"); err != nil {
			return err
		}
	}
	if err := validateURL("openMeteo.geocodingUrl", c.OpenMeteo.GeocodingURL); err != nil {
		return err
	}
	if err := validateURL("openMeteo.forecastUrl", c.OpenMeteo.ForecastURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.OpenMeteo.HourlyVariable) == "" {
		return errors.New("openMeteo.hourlyVariable cannot be empty")
	}
	if c.OpenMeteo.Timeout < 0 {
		return errors.New("openMeteo.timeout cannot be negative")
	}
	if c.Geocache.TTL < 0 {
		return errors.New("geocache.ttl cannot be negative")
	}
	if c.Geocache.Valkey.Enabled && strings.TrimSpace(c.Geocache.Valkey.Addr) == "" {
		return errors.New("geocache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return errors.New("chart.width and chart.height cannot be negative")
	}
	if c.Surfaces.IdleTTL <= 0 {
		return errors.New("surfaces.idleTtl must be positive")
	}
	return nil
}

func (l RouteLimit) validate(field string) error {
	if l.RequestsPerMinute < 0 {
		return fmt.Errorf("%s.requestsPerMinute cannot be negative", field)
	}
	if l.RequestsPerMinute > 0 && l.Burst <= 0 {
		return fmt.Errorf("%s.burst must be positive when the route is limited", field)
	}
	return nil
}

func validateURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute url", field)
	}
	return nil
}
