package handlers

import (
	"net/http"

	"kpitracker/services/entry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler lets a softphone log calls.
type WebhookHandler struct {
	Entries entry.EntryService
}

func NewWebhookHandler(entries entry.EntryService) *WebhookHandler {
	return &WebhookHandler{Entries: entries}
}

// CallHandler adds one call to today's record. Any request body is ignored.
func (h *WebhookHandler) CallHandler(c *gin.Context) {
	rec, err := h.Entries.LogCall(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to log call", err)
		return
	}
	getLogger(c).Debug("Webhook call logged", zap.String("date", rec.Date), zap.Int("total", rec.CallsReceived))
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Call logged",
		"date":        rec.Date,
		"total_calls": rec.CallsReceived,
	})
}

func (h *WebhookHandler) TestHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Webhook endpoint is ready",
		"usage": gin.H{
			"endpoint":    "POST /api/webhook/call",
			"description": "Increments today's call count by 1",
			"auth":        "Optional - set WEBHOOK_API_KEY to require X-API-Key",
		},
	})
}
