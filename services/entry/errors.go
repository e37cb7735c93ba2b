package entry

import (
	"errors"

	recordsRepo "kpitracker/database/repository/records"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// Re-exported so callers need not import the repository.
	ErrRecordNotFound    = recordsRepo.ErrRecordNotFound
	ErrRecordArchived    = recordsRepo.ErrRecordArchived
	ErrSubRecordNotFound = recordsRepo.ErrSubRecordNotFound
)
