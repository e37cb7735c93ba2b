package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers and the route-level guards.
type HandlerBundle struct {
	Info    *InfoHandler
	Entries *EntryHandler
	Periods *PeriodHandler
	Stats   *StatsHandler
	Webhook *WebhookHandler
	Admin   *AdminHandler

	AdminAuth   gin.HandlerFunc
	WebhookAuth gin.HandlerFunc
}
