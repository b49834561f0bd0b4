package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is implemented by *sql.DB and by the Redis client adapter.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and the state of the backing services.
type HealthHandler struct {
	DB    Pinger
	Redis Pinger // optional
}

type healthResp struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health returns 200 when the database answers and 503 otherwise.  Redis
// is reported but never fails the check: without it the service only
// loses caching and rate limiting.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := healthResp{Status: "ok", Checks: map[string]string{}}
	status := http.StatusOK

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["database"] = "up"
		}
	}
	if h.Redis != nil {
		if err := h.Redis.PingContext(ctx); err != nil {
			resp.Checks["redis"] = "down"
		} else {
			resp.Checks["redis"] = "up"
		}
	} else {
		resp.Checks["redis"] = "disabled"
	}
	return c.JSON(status, resp)
}
