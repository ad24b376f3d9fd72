package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/walkcast/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, health *HealthChecker) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)

	router.GET("/healthz", health.Live)
	router.GET("/readyz", health.Ready)

	limits := cfg.HTTP.RateLimit
	planLimit := rateLimitMiddleware("plan", limits.Enabled, limits.Plan, handler.logger)
	surfacesLimit := rateLimitMiddleware("surfaces", limits.Enabled, limits.Surfaces, handler.logger)

	api := router.Group("/api/v1")
	api.Use(errorHandlingMiddleware(handler.logger))
	{
		api.POST("/walks/plan", planLimit, handler.Plan)

		surfaces := api.Group("/walks/surfaces/:id", surfacesLimit)
		surfaces.GET("", handler.Surface)
		surfaces.GET("/chart.svg", handler.SurfaceChart)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
