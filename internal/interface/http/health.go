package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthChecker answers liveness and readiness checks.
type HealthChecker struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthChecker pings deps by name on every readiness request.
func NewHealthChecker(deps map[string]Pinger) *HealthChecker {
	return &HealthChecker{deps: deps, timeout: 2 * time.Second}
}

// Live always answers ok while the process serves requests.
func (h *HealthChecker) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 when any dependency fails its ping.
func (h *HealthChecker) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "ok"
	checks := make(map[string]CheckResult, len(h.deps))
	for name, dep := range h.deps {
		start := time.Now()
		if err := dep.Ping(ctx); err != nil {
			status = "unavailable"
			checks[name] = CheckResult{Status: "unhealthy", Error: err.Error()}
			continue
		}
		checks[name] = CheckResult{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}
