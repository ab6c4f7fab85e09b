package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthController struct {
	checks  map[string]Pinger
	started time.Time
}

func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks, started: time.Now()}
}

type healthStatus struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services"`
}

// HealthCheck reports 503 when any registered dependency fails its ping.
func (hc *HealthController) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := healthStatus{
		Status:   "OK",
		Uptime:   time.Since(hc.started).Round(time.Second).String(),
		Services: make(map[string]string, len(hc.checks)),
	}
	code := http.StatusOK
	for name, check := range hc.checks {
		if err := check.Ping(ctx); err != nil {
			body.Services[name] = "down"
			body.Status = "DEGRADED"
			code = http.StatusServiceUnavailable
			continue
		}
		body.Services[name] = "up"
	}

	return c.JSON(code, body)
}
