package period

import (
	"errors"
	"fmt"

	"kpitracker/models"
)

var (
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidPeriod     = errors.New("invalid period id")
	ErrPeriodOpen        = errors.New("period has not ended")
	ErrAlreadyArchived   = errors.New("period already archived")
	ErrArchiveInProgress = errors.New("period archival already in progress")
	ErrSnapshotNotFound  = errors.New("period snapshot not found")
)

// AlreadyArchivedError rejects an archival whose snapshot exists. It
// carries the stored snapshot so callers can report it.
type AlreadyArchivedError struct {
	PeriodID string
	Snapshot *models.PeriodSnapshot
}

func (e *AlreadyArchivedError) Error() string {
	return fmt.Sprintf("period %s already archived", e.PeriodID)
}

func (e *AlreadyArchivedError) Unwrap() error {
	return ErrAlreadyArchived
}
