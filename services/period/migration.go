package period

import (
	"context"
	"errors"
	"fmt"
	"sort"

	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const noLegacyMessage = "No legacy entries found"

// Migrator assigns period ids to records that predate them and archives
// every ended period it finds. Running it again only touches records that
// are still unassigned.
type Migrator struct {
	Calendar *Calendar
	Records  recordsRepo.DailyRecordRepository
	Archiver ArchiveService
	Logger   *zap.Logger
}

func NewMigrator(cal *Calendar, records recordsRepo.DailyRecordRepository, archiver ArchiveService, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.L()
	}
	return &Migrator{Calendar: cal, Records: records, Archiver: archiver, Logger: logger.Named("migration")}
}

type legacyGroup struct {
	period models.Period
	ids    []primitive.ObjectID
}

func (m *Migrator) MigrateLegacy(ctx context.Context) (models.MigrationResult, error) {
	legacy, err := m.Records.FindUnassigned(ctx)
	if err != nil {
		return models.MigrationResult{}, fmt.Errorf("find legacy records: %w", err)
	}
	if len(legacy) == 0 {
		return models.MigrationResult{Message: noLegacyMessage}, nil
	}

	var result models.MigrationResult
	groups := map[string]*legacyGroup{}
	for _, rec := range legacy {
		p, err := ResolveDate(rec.Date)
		if err != nil {
			m.Logger.Warn("Skipping legacy record with malformed date",
				zap.String("recordID", rec.ID), zap.String("date", rec.Date))
			result.SkippedEntries++
			continue
		}
		g, ok := groups[p.ID]
		if !ok {
			g = &legacyGroup{period: p}
			groups[p.ID] = g
		}
		g.ids = append(g.ids, rec.ObjectID)
	}

	keys := make([]string, 0, len(groups))
	for id := range groups {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	for _, id := range keys {
		g := groups[id]
		closed := m.Calendar.IsClosed(g.period)

		if closed {
			// Archive before assigning so a failed archive leaves the group
			// unassigned and the next run retries it.
			_, err := m.Archiver.Archive(ctx, g.period)
			switch {
			case err == nil:
				result.PeriodsCreated++
			case errors.Is(err, ErrAlreadyArchived):
			default:
				return result, fmt.Errorf("migrate %s: %w", id, err)
			}
		}

		if _, err := m.Records.AssignPeriod(ctx, g.ids, id, closed); err != nil {
			return result, fmt.Errorf("migrate %s: %w", id, err)
		}
		result.MigratedEntries += len(g.ids)
		result.PeriodsFound++

		m.Logger.Info("Legacy period migrated",
			zap.String("periodID", id),
			zap.Int("entries", len(g.ids)),
			zap.Bool("archived", closed))
	}

	result.Message = fmt.Sprintf("Migration complete. %d entries assigned to %d periods.",
		result.MigratedEntries, result.PeriodsFound)
	return result, nil
}
