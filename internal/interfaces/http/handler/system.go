package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventory-hub/backend/internal/infrastructure/migration"
	"github.com/inventory-hub/backend/internal/interfaces/http/dto"
)

// healthCheckTimeout bounds the database ping of a health probe
const healthCheckTimeout = 2 * time.Second

// DatabasePinger checks database connectivity
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// SchemaReporter reports the migration state of the schema
type SchemaReporter interface {
	Status() (migration.Status, error)
}

// SystemHandler serves health and system information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        DatabasePinger
	schema    SchemaReporter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. schema may be nil when the
// schema is managed outside the service.
func NewSystemHandler(name, version string, db DatabasePinger, schema SchemaReporter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		schema:    schema,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of a health probe
type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Schema   *migration.Status `json:"schema,omitempty"`
	Uptime   string            `json:"uptime"`
}

// Health handles GET /health. It answers 503 when the database is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Database unavailable"},
		})
		return
	}

	if h.schema != nil {
		if status, err := h.schema.Status(); err == nil {
			resp.Schema = &status
			if status.Dirty || status.Pending {
				resp.Status = "migrations_pending"
			}
		}
	}

	h.Success(c, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
