package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuildInfo is stamped at link time
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// HealthHandler serves liveness and version endpoints
type HealthHandler struct {
	build BuildInfo
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(build BuildInfo) *HealthHandler {
	return &HealthHandler{build: build}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"service":    "skybridge-agent",
		"version":    h.build.Version,
		"build_time": h.build.BuildTime,
		"git_commit": h.build.GitCommit,
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.build.Version,
		"build_time": h.build.BuildTime,
		"git_commit": h.build.GitCommit,
	})
}
