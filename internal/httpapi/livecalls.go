package httpapi

import (
	"net/http"
	"time"

	"voice-dashboard/internal/livecalls"
	"voice-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultStreamInterval = 5 * time.Second

func liveFailure() gin.H {
	return gin.H{"success": false, "live_calls": []livecalls.LiveCall{}, "count": 0}
}

func (h Handlers) ListLiveCalls(c *gin.Context) {
	rows, err := h.Live.List(c.Request.Context())
	if err != nil {
		h.fail(c, "livecalls.list", err, liveFailure())
		return
	}
	h.Metrics.SetLiveCalls(len(rows))
	c.JSON(http.StatusOK, gin.H{"success": true, "live_calls": rows, "count": len(rows)})
}

func (h Handlers) UpdateLiveCall(c *gin.Context) {
	var in livecalls.UpsertInput
	if !bindJSON(c, &in) {
		return
	}
	created, err := h.Live.Upsert(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "livecalls.update", err, failed())
		return
	}
	msg := "Live call updated successfully"
	if created {
		msg = "Live call created successfully"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func (h Handlers) EndLiveCall(c *gin.Context) {
	var in struct {
		CallID string `json:"call_id"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Live.End(c.Request.Context(), in.CallID); err != nil {
		h.fail(c, "livecalls.end", err, failed())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Live call ended and removed from tracking"})
}

// StreamLiveCalls pushes the live listing as server-sent events until the client goes away.
// Each event carries the same payload as GET /calls/live.
func (h Handlers) StreamLiveCalls(c *gin.Context) {
	interval := h.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	log := logger.FromGin(c)

	// The server write timeout is a per-connection deadline; a stream outlives it.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("live stream write deadline not cleared", zap.Error(err))
	}
	log.Debug("live stream opened")

	send := func() {
		rows, err := h.Live.List(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.Metrics.RecordError("livecalls.stream", err)
			log.Error("live stream listing failed", zap.Error(err))
			body := liveFailure()
			body["error"] = err.Error()
			c.SSEvent("live_calls", body)
		} else {
			h.Metrics.SetLiveCalls(len(rows))
			c.SSEvent("live_calls", gin.H{"success": true, "live_calls": rows, "count": len(rows)})
		}
		c.Writer.Flush()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	send()
	for {
		select {
		case <-ctx.Done():
			log.Debug("live stream closed")
			return
		case <-ticker.C:
			send()
		}
	}
}
