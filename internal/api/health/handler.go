// Package health provides Kubernetes-style probe endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"matchpulse/pkg/logger"
)

// Handler reports service and dependency health. ClickHouse and Redis
// are optional dependencies; a nil handle skips the check.
type Handler struct {
	log         *logger.Logger
	postgres    *sqlx.DB
	clickhouse  driver.Conn
	redis       *redis.Client
	startTime   time.Time
	serviceName string
	version     string
}

func New(
	log *logger.Logger,
	postgres *sqlx.DB,
	clickhouse driver.Conn,
	redisClient *redis.Client,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		postgres:    postgres,
		clickhouse:  clickhouse,
		redis:       redisClient,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// Status is the overall health report
type Status struct {
	Status    string                     `json:"status"` // healthy | degraded | unhealthy
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is health of a single dependency
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK while the process runs
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// HandleReadiness fails when the required dependency (Postgres) is down
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy, total := h.runChecks(ctx)

	status := h.buildStatus(checks, healthy, total)
	statusCode := http.StatusOK
	if checks["postgres"].Status != "healthy" {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", checks)
	}

	writeJSON(w, statusCode, status)
}

// HandleHealth returns the detailed dependency report. Optional backends
// degrade the status without failing it.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, healthy, total := h.runChecks(ctx)

	status := h.buildStatus(checks, healthy, total)
	statusCode := http.StatusOK
	if healthy == 0 {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, status)
}

func (h *Handler) runChecks(ctx context.Context) (map[string]ComponentHealth, int, int) {
	checks := make(map[string]ComponentHealth)
	healthy, total := 0, 0

	total++
	pg := h.check(ctx, func(ctx context.Context) error { return h.postgres.PingContext(ctx) })
	checks["postgres"] = pg
	if pg.Status == "healthy" {
		healthy++
	}

	if h.clickhouse != nil {
		total++
		ch := h.check(ctx, h.clickhouse.Ping)
		checks["clickhouse"] = ch
		if ch.Status == "healthy" {
			healthy++
		}
	}

	if h.redis != nil {
		total++
		rd := h.check(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() })
		checks["redis"] = rd
		if rd.Status == "healthy" {
			healthy++
		}
	}

	return checks, healthy, total
}

func (h *Handler) check(ctx context.Context, ping func(context.Context) error) ComponentHealth {
	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}
	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func (h *Handler) buildStatus(checks map[string]ComponentHealth, healthy, total int) Status {
	status := Status{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
	if healthy == 0 {
		status.Status = "unhealthy"
	} else if healthy < total {
		status.Status = "degraded"
	}
	return status
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
