package handlers

import (
	"errors"
	"net/http"

	"kpitracker/services/entry"
	"kpitracker/services/period"
	"kpitracker/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entry.ErrInvalidInput),
		errors.Is(err, period.ErrInvalidDate),
		errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, entry.ErrRecordNotFound),
		errors.Is(err, entry.ErrSubRecordNotFound),
		errors.Is(err, period.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, period.ErrAlreadyArchived),
		errors.Is(err, entry.ErrRecordArchived),
		errors.Is(err, period.ErrPeriodOpen):
		return http.StatusConflict
	case errors.Is(err, period.ErrArchiveInProgress):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Storage failures are logged
// with the cause and reported without it.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		getLogger(c).Error(message, zap.Error(err))
		utils.JSONError(c, status, message, "internal error")
		return
	}
	utils.JSONError(c, status, message, err.Error())
}
