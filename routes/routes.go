package routes

import (
	"net/http"
	"time"

	"kpitracker/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterEntryRoutes registers daily record endpoints.
func RegisterEntryRoutes(r *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := r.Group("/entries")
	{
		api.GET("", hb.Entries.ListHandler)
		api.GET("/today", hb.Entries.TodayHandler)
		api.GET("/:date", hb.Entries.GetByDateHandler)
		api.PUT("/:date/calls", hb.Entries.SetCallsHandler)
		api.POST("/:date/bookings", hb.Entries.AddBookingHandler)
		api.DELETE("/:date/bookings/:id", hb.Entries.DeleteBookingHandler)
		api.POST("/:date/spins", hb.Entries.AddSpinHandler)
		api.POST("/:date/bonuses", hb.Entries.AddSpinHandler) // legacy alias
		api.DELETE("/:date/spins/:id", hb.Entries.DeleteSpinHandler)
		api.POST("/:date/misc", hb.Entries.AddMiscHandler)
		api.DELETE("/:date/misc/:id", hb.Entries.DeleteMiscHandler)
	}
}

// RegisterPeriodRoutes registers period info and snapshot endpoints.
func RegisterPeriodRoutes(r *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := r.Group("/periods")
	{
		api.GET("", hb.Periods.ListHandler)
		api.GET("/current", hb.Periods.CurrentHandler)
		api.POST("/archive/previous", hb.Periods.ArchivePreviousHandler)
		api.GET("/:id", hb.Periods.GetHandler)
	}
}

func RegisterStatsRoutes(r *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := r.Group("/stats")
	{
		api.GET("/daily/:date", hb.Stats.DailyHandler)
		api.GET("/biweekly", hb.Stats.BiweeklyHandler)
	}
}

func RegisterWebhookRoutes(r *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := r.Group("/webhook")
	{
		api.GET("/test", hb.Webhook.TestHandler)
		api.POST("/call", hb.WebhookAuth, hb.Webhook.CallHandler)
	}
}

// RegisterAdminRoutes registers maintenance endpoints (Require admin token).
func RegisterAdminRoutes(r *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := r.Group("/admin")
	api.Use(hb.AdminAuth)
	{
		api.POST("/migrate-legacy", hb.Admin.MigrateLegacyHandler)
		api.POST("/force-archive", hb.Admin.ForceArchiveHandler)
		api.POST("/periods/:id/archive", hb.Admin.ArchivePeriodHandler)
		api.GET("/scheduler-status", hb.Admin.SchedulerStatusHandler)
		api.DELETE("/periods/:id", hb.Admin.DeleteSnapshotHandler)
		api.DELETE("/entries/:date", hb.Admin.DeleteEntryHandler)
	}
}

// RegisterRoutes mounts every API group under /api.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	api := r.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "KPI Tracker API"})
	})
	api.GET("/health", hb.Info.HealthHandler)
	api.GET("/goals", hb.Info.GoalsHandler)

	RegisterEntryRoutes(api, hb)
	RegisterPeriodRoutes(api, hb)
	RegisterStatsRoutes(api, hb)
	RegisterWebhookRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
