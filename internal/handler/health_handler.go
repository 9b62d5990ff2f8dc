package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"blogapi/internal/cache"
	"blogapi/internal/config"
)

// HealthHandler serves the index and liveness endpoints.
type HealthHandler struct {
	app   config.AppConfig
	db    *gorm.DB
	cache *cache.Client
}

func NewHealthHandler(app config.AppConfig, db *gorm.DB, cache *cache.Client) *HealthHandler {
	return &HealthHandler{app: app, db: db, cache: cache}
}

// IndexResponse describes the running service.
type IndexResponse struct {
	Name    string `json:"name"`
	Env     string `json:"env"`
	Version string `json:"version"`
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Index reports the service name, environment and version.
func (h *HealthHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, IndexResponse{Name: h.app.Name, Env: h.app.Env, Version: h.app.Version})
}

// Healthz answers 503 when the database is unreachable. Redis is reported but optional.
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "up", Redis: "up"}
	code := http.StatusOK

	if err := h.pingDB(ctx); err != nil {
		resp.Status, resp.Database = "degraded", "down"
		code = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		resp.Redis = "down"
	}
	return c.JSON(code, resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
