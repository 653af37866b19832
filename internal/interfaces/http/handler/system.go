package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/seafreight/internal/interfaces/http/dto"
)

// ProviderStatus reports the configured rate provider.
type ProviderStatus interface {
	ProviderName() string
	Enabled() bool
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	provider  ProviderStatus
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, provider ProviderStatus) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		provider:  provider,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string `json:"status" example:"ok"`
	Provider        string `json:"provider,omitempty" example:"cargofive"`
	ProviderEnabled bool   `json:"provider_enabled"`
}

// Health godoc
// @ID           health
// @Summary      Liveness probe
// @Description  Reports the process as up; status is "degraded" when the rate provider is disabled
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h.provider != nil {
		resp.Provider = h.provider.ProviderName()
		resp.ProviderEnabled = h.provider.Enabled()
	}
	if !resp.ProviderEnabled {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"seafreight"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
