package handlers

import (
	"net/http"
	"strconv"

	"kpitracker/models"
	"kpitracker/services/entry"

	"github.com/gin-gonic/gin"
)

// EntryHandler serves daily record CRUD.
type EntryHandler struct {
	Service entry.EntryService
}

func NewEntryHandler(svc entry.EntryService) *EntryHandler {
	return &EntryHandler{Service: svc}
}

func (h *EntryHandler) TodayHandler(c *gin.Context) {
	rec, err := h.Service.Today(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load today's entry", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) GetByDateHandler(c *gin.Context) {
	rec, err := h.Service.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, "Entry not found", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListHandler accepts start_date, end_date, archived and limit query params.
func (h *EntryHandler) ListHandler(c *gin.Context) {
	filter := models.RecordFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "archived must be true or false"})
			return
		}
		filter.Archived = &archived
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	records, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list entries", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type setCallsRequest struct {
	CallsReceived *int `json:"calls_received"`
}

// SetCallsHandler takes calls_received from the query string or a JSON body.
func (h *EntryHandler) SetCallsHandler(c *gin.Context) {
	var calls int
	if raw := c.Query("calls_received"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "calls_received must be an integer"})
			return
		}
		calls = n
	} else {
		var req setCallsRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.CallsReceived == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "calls_received is required"})
			return
		}
		calls = *req.CallsReceived
	}

	rec, err := h.Service.SetCalls(c.Request.Context(), c.Param("date"), calls)
	if err != nil {
		respondError(c, "Failed to update calls", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) AddBookingHandler(c *gin.Context) {
	var in models.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	rec, err := h.Service.AddBooking(c.Request.Context(), c.Param("date"), in)
	if err != nil {
		respondError(c, "Failed to add booking", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) DeleteBookingHandler(c *gin.Context) {
	rec, err := h.Service.DeleteBooking(c.Request.Context(), c.Param("date"), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to delete booking", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddSpinHandler also serves the legacy /bonuses route.
func (h *EntryHandler) AddSpinHandler(c *gin.Context) {
	var in models.SpinInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	rec, err := h.Service.AddSpin(c.Request.Context(), c.Param("date"), in)
	if err != nil {
		respondError(c, "Failed to add spin", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) DeleteSpinHandler(c *gin.Context) {
	rec, err := h.Service.DeleteSpin(c.Request.Context(), c.Param("date"), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to delete spin", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) AddMiscHandler(c *gin.Context) {
	var in models.MiscIncomeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	rec, err := h.Service.AddMisc(c.Request.Context(), c.Param("date"), in)
	if err != nil {
		respondError(c, "Failed to add misc income", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntryHandler) DeleteMiscHandler(c *gin.Context) {
	rec, err := h.Service.DeleteMisc(c.Request.Context(), c.Param("date"), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to delete misc income", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
