package handlers

import (
	"net/http"
	"strconv"

	"kpitracker/services/period"

	"github.com/gin-gonic/gin"
)

// PeriodHandler serves current period info and archived snapshots.
type PeriodHandler struct {
	Archive period.ArchiveService
}

func NewPeriodHandler(archive period.ArchiveService) *PeriodHandler {
	return &PeriodHandler{Archive: archive}
}

func (h *PeriodHandler) CurrentHandler(c *gin.Context) {
	info, err := h.Archive.PeriodInfo(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load period info", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ListHandler returns snapshots newest first.
func (h *PeriodHandler) ListHandler(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	snapshots, err := h.Archive.Snapshots(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Failed to list periods", err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// GetHandler returns the stored snapshot, never a recomputation.
func (h *PeriodHandler) GetHandler(c *gin.Context) {
	snapshot, err := h.Archive.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Period log not found", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *PeriodHandler) ArchivePreviousHandler(c *gin.Context) {
	snapshot, err := h.Archive.ClosePrevious(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to archive previous period", err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
