package handlers

import (
	"net/http"

	"kpitracker/models"
	"kpitracker/services/period"
	"kpitracker/utils"

	"github.com/gin-gonic/gin"
)

// InfoHandler serves health and configured goals.
type InfoHandler struct {
	Calendar *period.Calendar
	Goals    models.Goals
	Env      string
}

func NewInfoHandler(cal *period.Calendar, goals models.Goals, env string) *InfoHandler {
	return &InfoHandler{Calendar: cal, Goals: goals, Env: env}
}

// HealthHandler reports the last background health check.
func (h *InfoHandler) HealthHandler(c *gin.Context) {
	health := utils.GetHealthStatus()
	status := "healthy"
	if !health.CheckedAt.IsZero() && (!health.Mongo || (health.Redis != nil && !*health.Redis)) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"env":            h.Env,
		"current_period": h.Calendar.Current().ID,
		"dependencies":   health,
	})
}

func (h *InfoHandler) GoalsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Goals)
}
