package period

import (
	"context"
	"time"

	"kpitracker/models"
)

// ArchiveService closes periods into snapshots and answers questions about them.
type ArchiveService interface {
	Archive(ctx context.Context, p models.Period) (*models.PeriodSnapshot, error)
	EnsurePreviousClosed(ctx context.Context) (*models.PeriodSnapshot, error)
	ClosePrevious(ctx context.Context) (*models.PeriodSnapshot, error)
	PeriodInfo(ctx context.Context) (models.PeriodInfo, error)
	Snapshot(ctx context.Context, periodID string) (*models.PeriodSnapshot, error)
	Snapshots(ctx context.Context, limit int64) ([]models.PeriodSnapshot, error)
	DeleteSnapshot(ctx context.Context, periodID string) error
}

// MigrationService backfills period ids onto records written before periods existed.
type MigrationService interface {
	MigrateLegacy(ctx context.Context) (models.MigrationResult, error)
}

// Locker serializes archival across instances. ok is false when another
// holder has the key; unlock is only set when ok is true.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}
