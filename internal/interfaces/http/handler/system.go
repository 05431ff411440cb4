package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/appsnxt/platform/internal/infrastructure/config"
	"github.com/appsnxt/platform/internal/infrastructure/persistence"
	"github.com/appsnxt/platform/internal/interfaces/http/dto"
)

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	cfg       *config.AppConfig
	db        *persistence.Database
	redis     redis.UniversalClient
	startTime time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(cfg *config.AppConfig, db *persistence.Database, redisClient redis.UniversalClient) *SystemHandler {
	return &SystemHandler{
		cfg:       cfg,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}
}

// HealthResponse reports the service and its dependencies
// @name HandlerHealthResponse
type HealthResponse struct {
	Status      string            `json:"status" example:"ok"`
	Version     string            `json:"version" example:"1.0.0"`
	Environment string            `json:"environment" example:"production"`
	Checks      map[string]string `json:"checks"`
}

// Health godoc
// @ID           healthCheck
// @Summary      Health check
// @Description  Reports service health including database and cache connectivity
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	checks := make(map[string]string, 2)
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	resp := HealthResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Environment: h.cfg.Env,
		Checks:      checks,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"platform-api"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.cfg.Name,
		Version:   h.cfg.Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	h.Success(c, info)
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
	}
}
