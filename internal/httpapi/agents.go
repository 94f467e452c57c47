package httpapi

import (
	"context"
	"net/http"

	"voice-dashboard/internal/agents"
	"voice-dashboard/internal/audit"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListAgents(c *gin.Context) {
	list, err := h.Agents.List(c.Request.Context())
	if err != nil {
		h.fail(c, "agents.list", err, failed())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agents": list})
}

func (h Handlers) UpsertAgent(c *gin.Context) {
	var in agents.UpsertInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Agents.Upsert(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "agents.upsert", err, failed())
		return
	}

	h.recordAudit(c, func(ctx context.Context, s *audit.Service) error {
		return s.LogAgentUpsert(ctx, actor(c), res.AgentID, res.Created)
	})

	msg := "Agent updated successfully"
	if res.Created {
		msg = "Agent created successfully"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "agent_id": res.AgentID})
}

func (h Handlers) DeleteAgent(c *gin.Context) {
	agentID := c.Query("agent_id")
	if err := h.Agents.Delete(c.Request.Context(), agentID); err != nil {
		h.fail(c, "agents.delete", err, failed())
		return
	}

	h.recordAudit(c, func(ctx context.Context, s *audit.Service) error {
		return s.LogAgentDelete(ctx, actor(c), agentID)
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Agent deleted successfully"})
}
