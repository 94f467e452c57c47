package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"voice-dashboard/internal/calls"
	"voice-dashboard/pkg/pagination"

	"github.com/gin-gonic/gin"
)

func (h Handlers) CreateCall(c *gin.Context) {
	var in calls.RecordInput
	if !bindJSON(c, &in) {
		return
	}
	callID, err := h.Calls.Record(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "calls.create", err, failed())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Call record created successfully", "call_id": callID})
}

// UpdateCall applies a sparse patch. Numbers are kept as json.Number so integer and
// decimal columns convert without float rounding.
func (h Handlers) UpdateCall(c *gin.Context) {
	var fields map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	callID, _ := fields["call_id"].(string)
	if err := h.Calls.Patch(c.Request.Context(), strings.TrimSpace(callID), fields); err != nil {
		h.fail(c, "calls.update", err, failed())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Call record updated successfully"})
}

func (h Handlers) CallHistory(c *gin.Context) {
	p := pagination.History.Parse(c.Query("limit"), c.Query("offset"))
	entries, err := h.Calls.History(c.Request.Context(), p)
	if err != nil {
		h.fail(c, "calls.history", err, failed())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "calls": entries, "total": len(entries)})
}
