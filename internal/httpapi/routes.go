package httpapi

import (
	"voice-dashboard/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Register mounts every endpoint on r. With a nil authMW the API stays open, as the
// dashboard has always run; otherwise each route is gated by role.
func (h Handlers) Register(r *gin.Engine, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Healthz)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	r.POST("/seed", h.RunSeed)

	api := r.Group("/")
	if authMW != nil {
		api.Use(authMW)
	}

	read := roles(authMW, rbac.RoleViewer)
	runtime := roles(authMW, rbac.RoleAgentRuntime)
	admin := roles(authMW, rbac.RoleAdmin)

	api.GET("/agents", append(read, h.ListAgents)...)
	api.DELETE("/agents", append(admin, h.DeleteAgent)...)
	api.POST("/agents/upsert", append(admin, h.UpsertAgent)...)

	api.POST("/calls/create", append(runtime, h.CreateCall)...)
	api.PATCH("/calls/update", append(runtime, h.UpdateCall)...)
	api.GET("/calls/history", append(read, h.CallHistory)...)

	api.GET("/calls/live", append(read, h.ListLiveCalls)...)
	api.GET("/calls/live/stream", append(read, h.StreamLiveCalls)...)
	api.POST("/calls/live/update", append(runtime, h.UpdateLiveCall)...)
	api.POST("/calls/live/end", append(runtime, h.EndLiveCall)...)

	api.GET("/dashboard/stats", append(read, h.DashboardStats)...)
	api.GET("/dashboard/recent-activity", append(read, h.RecentActivity)...)
	api.GET("/dashboard/quick-stats", append(read, h.QuickStats)...)
	api.GET("/live-users", append(read, h.LiveUsersSnapshot)...)
}

// roles returns the role gate for a route, or nothing when auth is off.
func roles(authMW gin.HandlerFunc, allowed ...string) []gin.HandlerFunc {
	if authMW == nil {
		return nil
	}
	return []gin.HandlerFunc{rbac.RequireAnyRole(allowed...)}
}
