package handlers

import (
	"net/http"

	"kpitracker/services/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	Service stats.StatsService
}

func NewStatsHandler(svc stats.StatsService) *StatsHandler {
	return &StatsHandler{Service: svc}
}

func (h *StatsHandler) DailyHandler(c *gin.Context) {
	st, err := h.Service.Daily(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, "Failed to compute daily stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// BiweeklyHandler covers the open period only; archived periods are served
// from their snapshots.
func (h *StatsHandler) BiweeklyHandler(c *gin.Context) {
	st, err := h.Service.CurrentPeriod(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute period stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
