package handler

import (
	"errors"
	"net/http"
	"strconv"

	"skybridge/internal/service"

	"github.com/gin-gonic/gin"
)

// FillsHandler exposes the confirmed-fill audit log
type FillsHandler struct {
	agent *service.AgentService
}

// NewFillsHandler creates a new fills handler
func NewFillsHandler(agent *service.AgentService) *FillsHandler {
	return &FillsHandler{agent: agent}
}

// List handles GET /api/v1/fills
func (h *FillsHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	fills, err := h.agent.RecentFills(c.Request.Context(), limit)
	if errors.Is(err, service.ErrFillLogDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Fill log is not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fills: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fills": fills, "count": len(fills)})
}
