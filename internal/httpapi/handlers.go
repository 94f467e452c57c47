package httpapi

import (
	"context"
	"net/http"
	"time"

	"voice-dashboard/internal/agents"
	"voice-dashboard/internal/apperr"
	"voice-dashboard/internal/audit"
	"voice-dashboard/internal/auth"
	"voice-dashboard/internal/calls"
	"voice-dashboard/internal/livecalls"
	"voice-dashboard/internal/liveusers"
	"voice-dashboard/internal/metrics"
	"voice-dashboard/internal/reporting"
	"voice-dashboard/internal/seed"
	"voice-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthFunc reports whether the backing stores are reachable.
type HealthFunc func(ctx context.Context) error

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call internal services, return JSON.
type Handlers struct {
	Agents    *agents.Service
	Calls     *calls.Service
	Live      *livecalls.Service
	Reporting *reporting.Service
	LiveUsers *liveusers.Client
	Seeder    *seed.Service

	// Optional.
	Audit   *audit.Service
	Metrics *metrics.Metrics
	Health  HealthFunc

	// StreamInterval is the push cadence of GET /calls/live/stream.
	StreamInterval time.Duration
}

// bindJSON decodes the request body into dst or writes 400 invalid json.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

// fail writes err. Validation errors are always {error} with 400; everything else
// merges error into body, which carries the endpoint's fixed failure fields.
func (h Handlers) fail(c *gin.Context, op string, err error, body gin.H) {
	msg := apperr.Message(err)
	kind := apperr.KindOf(err)
	h.Metrics.RecordError(op, err)

	switch kind {
	case apperr.KindValidation:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	case apperr.KindNotFound:
		logger.FromGin(c).Info("not found", zap.String("op", op), zap.String("error", msg))
	default:
		logger.FromGin(c).Error("store operation failed",
			zap.String("op", op),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}

	out := gin.H{}
	for k, v := range body {
		out[k] = v
	}
	out["error"] = msg

	status := http.StatusInternalServerError
	if kind == apperr.KindNotFound {
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, out)
}

func failed() gin.H { return gin.H{"success": false} }

func actor(c *gin.Context) audit.Actor {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	return audit.Actor{UserID: uid, Role: role, IP: c.ClientIP()}
}

// recordAudit appends best-effort; failures are logged and never surface to the caller.
func (h Handlers) recordAudit(c *gin.Context, fn func(ctx context.Context, s *audit.Service) error) {
	if h.Audit == nil {
		return
	}
	if err := fn(c.Request.Context(), h.Audit); err != nil {
		logger.FromGin(c).Warn("audit append failed", zap.Error(err))
	}
}
