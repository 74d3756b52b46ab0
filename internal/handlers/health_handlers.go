package handlers

import (
	"context"
	"net/http"
	"time"

	"toolcare/internal/caching"
	"toolcare/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	db         *pgxpool.Pool
	cacheSvc   caching.CacheService
	storageSvc services.StorageService
}

func NewHealthHandlers(db *pgxpool.Pool, cacheSvc caching.CacheService, storageSvc services.StorageService) *HealthHandlers {
	return &HealthHandlers{
		db:         db,
		cacheSvc:   cacheSvc,
		storageSvc: storageSvc,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck reports connectivity to the database, cache and object
// storage. Any failing dependency degrades the overall status.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.cacheSvc.SetString(ctx, "health:probe", "ok", time.Minute); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	if err := h.storageSvc.EnsureBucketExists(ctx); err != nil {
		health.Services["storage"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["storage"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// DetailedHealthCheck extends HealthCheck with connection pool statistics.
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats := h.db.Stat()
	detail := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database": map[string]interface{}{
			"total_conns":    stats.TotalConns(),
			"idle_conns":     stats.IdleConns(),
			"acquired_conns": stats.AcquiredConns(),
			"max_conns":      stats.MaxConns(),
		},
	}

	if err := h.db.Ping(ctx); err != nil {
		detail["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, detail)
	}
	detail["status"] = "healthy"
	return c.JSON(http.StatusOK, detail)
}

// ReadinessCheck is the cheap probe used by orchestration.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}
