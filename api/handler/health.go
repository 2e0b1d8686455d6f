package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// LLMStatus reports whether model-backed features are available.
type LLMStatus interface {
	Enabled() bool
}

// HealthInfo describes the optional features configured at startup.
type HealthInfo struct {
	LLM             LLMStatus
	LinkedInSession bool
	Browser         bool
}

// Health returns a handler for GET /health.
func Health(info HealthInfo, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     "healthy",
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			Version:    Version,
			LLMEnabled: info.LLM != nil && info.LLM.Enabled(),
			LinkedIn:   info.LinkedInSession,
			Browser:    info.Browser,
		})
	}
}
