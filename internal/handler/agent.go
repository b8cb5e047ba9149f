package handler

import (
	"errors"
	"net/http"

	"skybridge/internal/model"
	"skybridge/internal/repository"
	"skybridge/internal/service"

	"github.com/gin-gonic/gin"
)

// AgentHandler handles dialogue HTTP requests
type AgentHandler struct {
	agent *service.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(agent *service.AgentService) *AgentHandler {
	return &AgentHandler{agent: agent}
}

// Turn handles POST /api/agent
func (h *AgentHandler) Turn(c *gin.Context) {
	var req model.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Encode(service.MalformedRequest()))
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetHeader(SessionHeader)
	}

	resp, sessionID := h.agent.HandleTurn(c.Request.Context(), req)
	c.Header(SessionHeader, sessionID)
	c.JSON(StatusFor(resp), model.Encode(resp))
}

// GetSession handles GET /api/agent/sessions/:id
func (h *AgentHandler) GetSession(c *gin.Context) {
	state, err := h.agent.Session(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":            state.SessionID,
		"phase":                 state.Phase(),
		"pending_fields":        state.PendingFields,
		"awaiting_confirmation": state.AwaitingConfirmation,
		"last_proposed":         state.LastProposed,
		"updated_at":            state.UpdatedAt,
	})
}

// ResetSession handles DELETE /api/agent/sessions/:id
func (h *AgentHandler) ResetSession(c *gin.Context) {
	if err := h.agent.ResetSession(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// StatusFor maps a turn response onto its HTTP status
func StatusFor(resp model.Response) int {
	switch r := resp.(type) {
	case model.Unavailable:
		return http.StatusServiceUnavailable
	case model.NeedInfo:
		if r.ProposedFields == nil {
			return http.StatusBadRequest
		}
	}
	return http.StatusOK
}
