package httpapi

import (
	"net/http"

	"voice-dashboard/internal/reporting"

	"github.com/gin-gonic/gin"
)

func (h Handlers) DashboardStats(c *gin.Context) {
	t, err := h.Reporting.Totals(c.Request.Context())
	if err != nil {
		h.fail(c, "dashboard.stats", err, gin.H{"totalCalls": 0, "activeAgents": 0, "totalMinutes": 0, "revenue": 0})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h Handlers) RecentActivity(c *gin.Context) {
	a, err := h.Reporting.RecentActivity(c.Request.Context(), reporting.DefaultRecentLimit)
	if err != nil {
		h.fail(c, "dashboard.recent", err, gin.H{"calls": []reporting.RecentCall{}})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h Handlers) QuickStats(c *gin.Context) {
	q, err := h.Reporting.QuickStats(c.Request.Context())
	if err != nil {
		h.fail(c, "dashboard.quick", err, gin.H{"successRate": 0, "avgDuration": 0, "agentUtilization": 0})
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h Handlers) LiveUsersSnapshot(c *gin.Context) {
	snap, err := h.LiveUsers.Fetch(c.Request.Context())
	if err != nil {
		h.fail(c, "liveusers.fetch", err, gin.H{"success": false, "liveUsers": 0, "byAgent": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "liveUsers": snap.LiveUsers, "byAgent": snap.ByAgent})
}
