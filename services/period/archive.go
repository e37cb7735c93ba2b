package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockPrefix = "kpi:archive:"
	lockTTL    = 30 * time.Second
)

// ArchiveManager implements ArchiveService.
type ArchiveManager struct {
	Calendar   *Calendar
	Aggregator *Aggregator
	Records    recordsRepo.DailyRecordRepository
	Store      periodsRepo.SnapshotRepository
	Goals      models.Goals
	// Optional. Without it the unique period index alone decides which
	// concurrent archival wins.
	Locker Locker
	Logger *zap.Logger
}

func NewArchiveManager(cal *Calendar, records recordsRepo.DailyRecordRepository, store periodsRepo.SnapshotRepository, goals models.Goals, locker Locker, logger *zap.Logger) *ArchiveManager {
	if logger == nil {
		logger = zap.L()
	}
	return &ArchiveManager{
		Calendar:   cal,
		Aggregator: NewAggregator(records),
		Records:    records,
		Store:      store,
		Goals:      goals,
		Locker:     locker,
		Logger:     logger.Named("archive"),
	}
}

// Archive closes p into a snapshot and freezes its records. Only ended
// periods can be archived, and each at most once.
func (m *ArchiveManager) Archive(ctx context.Context, p models.Period) (*models.PeriodSnapshot, error) {
	p, err := ParseID(p.ID)
	if err != nil {
		return nil, err
	}
	if !m.Calendar.IsClosed(p) {
		return nil, fmt.Errorf("archive %s: %w", p.ID, ErrPeriodOpen)
	}
	if err := m.rejectExisting(ctx, p); err != nil {
		return nil, err
	}

	if m.Locker != nil {
		unlock, ok, err := m.Locker.TryLock(ctx, lockPrefix+p.ID, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("archive %s: obtain lock: %w", p.ID, err)
		}
		if !ok {
			return nil, fmt.Errorf("archive %s: %w", p.ID, ErrArchiveInProgress)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.Logger.Warn("Failed to release archive lock", zap.String("periodID", p.ID), zap.Error(err))
			}
		}()
		// The previous holder may have finished while we waited.
		if err := m.rejectExisting(ctx, p); err != nil {
			return nil, err
		}
	}

	summary, err := m.Aggregator.Aggregate(ctx, p, true)
	if err != nil {
		return nil, err
	}

	snapshot := BuildSnapshot(uuid.New().String(), p, summary, m.Goals)
	snapshot.ArchivedAt = m.Calendar.Now().UTC()

	if err := m.Store.Insert(ctx, snapshot); err != nil {
		if errors.Is(err, periodsRepo.ErrSnapshotExists) {
			stored, getErr := m.Store.GetByPeriodID(ctx, p.ID)
			if getErr != nil {
				m.Logger.Warn("Lost archive race; stored snapshot unreadable", zap.String("periodID", p.ID), zap.Error(getErr))
			}
			if err := m.refreeze(ctx, p); err != nil {
				return nil, err
			}
			return nil, &AlreadyArchivedError{PeriodID: p.ID, Snapshot: stored}
		}
		return nil, fmt.Errorf("archive %s: insert snapshot: %w", p.ID, err)
	}

	marked, err := m.Records.MarkArchived(ctx, p)
	if err != nil {
		m.Logger.Error("Snapshot stored but records not frozen",
			zap.String("periodID", p.ID), zap.Error(err))
		return &snapshot, fmt.Errorf("archive %s: mark records: %w", p.ID, err)
	}

	m.Logger.Info("Period archived",
		zap.String("periodID", p.ID),
		zap.Int("entries", snapshot.EntryCount),
		zap.Int64("recordsMarked", marked),
		zap.Float64("combined", snapshot.Totals.Combined))
	return &snapshot, nil
}

// EnsurePreviousClosed archives the previous period on boundary days. It
// returns a snapshot only when this call created it.
func (m *ArchiveManager) EnsurePreviousClosed(ctx context.Context) (*models.PeriodSnapshot, error) {
	if !m.Calendar.IsBoundaryDay() {
		return nil, nil
	}
	snapshot, err := m.Archive(ctx, m.Calendar.Previous())
	switch {
	case errors.Is(err, ErrAlreadyArchived):
		return nil, nil
	case errors.Is(err, ErrArchiveInProgress):
		m.Logger.Debug("Previous period archival held by another instance")
		return nil, nil
	case err != nil:
		return nil, err
	}
	return snapshot, nil
}

// ClosePrevious archives the previous period whatever today is.
func (m *ArchiveManager) ClosePrevious(ctx context.Context) (*models.PeriodSnapshot, error) {
	return m.Archive(ctx, m.Calendar.Previous())
}

func (m *ArchiveManager) PeriodInfo(ctx context.Context) (models.PeriodInfo, error) {
	current := m.Calendar.Current()
	previous := m.Calendar.Previous()

	stored, err := m.Store.GetByPeriodID(ctx, previous.ID)
	if err != nil {
		return models.PeriodInfo{}, fmt.Errorf("period info: %w", err)
	}
	return models.PeriodInfo{
		Period:        current,
		IsBoundaryDay: m.Calendar.IsBoundaryDay(),
		DaysRemaining: m.Calendar.DaysRemaining(current),
		PreviousPeriod: models.PreviousPeriodInfo{
			PeriodID:   previous.ID,
			IsArchived: stored != nil,
		},
	}, nil
}

// Snapshot returns the stored snapshot verbatim; it is never recomputed.
func (m *ArchiveManager) Snapshot(ctx context.Context, periodID string) (*models.PeriodSnapshot, error) {
	if _, err := ParseID(periodID); err != nil {
		return nil, err
	}
	stored, err := m.Store.GetByPeriodID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", periodID, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, periodID)
	}
	return stored, nil
}

func (m *ArchiveManager) Snapshots(ctx context.Context, limit int64) ([]models.PeriodSnapshot, error) {
	return m.Store.List(ctx, limit)
}

// DeleteSnapshot removes a snapshot. Records stay frozen; this is an admin
// repair tool, not an unarchive.
func (m *ArchiveManager) DeleteSnapshot(ctx context.Context, periodID string) error {
	if _, err := ParseID(periodID); err != nil {
		return err
	}
	if err := m.Store.Delete(ctx, periodID); err != nil {
		if errors.Is(err, periodsRepo.ErrSnapshotNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, periodID)
		}
		return err
	}
	m.Logger.Warn("Period snapshot deleted", zap.String("periodID", periodID))
	return nil
}

// rejectExisting reports an existing snapshot. The period's records are
// frozen again first, so retrying an archival whose mark step failed
// completes it.
func (m *ArchiveManager) rejectExisting(ctx context.Context, p models.Period) error {
	stored, err := m.Store.GetByPeriodID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("archive %s: lookup snapshot: %w", p.ID, err)
	}
	if stored == nil {
		return nil
	}
	if err := m.refreeze(ctx, p); err != nil {
		return err
	}
	return &AlreadyArchivedError{PeriodID: p.ID, Snapshot: stored}
}

// refreeze marks any still-open records of an archived period. It never
// touches the snapshot.
func (m *ArchiveManager) refreeze(ctx context.Context, p models.Period) error {
	marked, err := m.Records.MarkArchived(ctx, p)
	if err != nil {
		return fmt.Errorf("archive %s: mark records: %w", p.ID, err)
	}
	if marked > 0 {
		m.Logger.Warn("Froze records left open by an earlier archival",
			zap.String("periodID", p.ID), zap.Int64("recordsMarked", marked))
	}
	return nil
}
