package httpapi

import (
	"net/http"

	"voice-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handlers) Healthz(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunSeed fills the store with sample data. When a seed secret is configured the
// ?secret= query parameter must match it.
func (h Handlers) RunSeed(c *gin.Context) {
	if err := h.Seeder.Authorize(c.Query("secret")); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sum, err := h.Seeder.Seed(c.Request.Context())
	if err != nil {
		h.fail(c, "seed", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data seeded successfully", "summary": sum})
}
