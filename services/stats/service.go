package stats

import (
	"context"
	"fmt"

	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"
	"kpitracker/services/period"

	"go.uber.org/zap"
)

// StatsService reports progress against goals. Archived periods are not
// served here; their snapshots are read verbatim through the archive.
type StatsService interface {
	Daily(ctx context.Context, date string) (models.DailyStats, error)
	CurrentPeriod(ctx context.Context) (models.BiweeklyStats, error)
}

type DefaultStatsService struct {
	Calendar   *period.Calendar
	Records    recordsRepo.DailyRecordRepository
	Aggregator *period.Aggregator
	Archiver   period.ArchiveService
	Goals      models.Goals
	Logger     *zap.Logger
}

func NewStatsService(cal *period.Calendar, records recordsRepo.DailyRecordRepository, archiver period.ArchiveService, goals models.Goals, logger *zap.Logger) *DefaultStatsService {
	if logger == nil {
		logger = zap.L()
	}
	return &DefaultStatsService{
		Calendar:   cal,
		Records:    records,
		Aggregator: period.NewAggregator(records),
		Archiver:   archiver,
		Goals:      goals,
		Logger:     logger.Named("stats"),
	}
}

// Daily scores one date against the daily goals. A day with no record
// scores as zero activity.
func (s *DefaultStatsService) Daily(ctx context.Context, date string) (models.DailyStats, error) {
	if _, err := period.ParseDate(date); err != nil {
		return models.DailyStats{}, err
	}
	rec, err := s.Records.GetByDate(ctx, date)
	if err != nil {
		return models.DailyStats{}, fmt.Errorf("daily stats %s: %w", date, err)
	}
	var records []models.DailyRecord
	if rec != nil {
		records = append(records, *rec)
	}
	return period.BuildDailyStats(date, period.Reduce(records), s.Goals), nil
}

// CurrentPeriod scores the open period's unarchived records.
func (s *DefaultStatsService) CurrentPeriod(ctx context.Context) (models.BiweeklyStats, error) {
	if snapshot, err := s.Archiver.EnsurePreviousClosed(ctx); err != nil {
		s.Logger.Warn("Lazy close of previous period failed", zap.Error(err))
	} else if snapshot != nil {
		s.Logger.Info("Previous period closed on first request", zap.String("periodID", snapshot.PeriodID))
	}

	current := s.Calendar.Current()
	summary, err := s.Aggregator.Aggregate(ctx, current, false)
	if err != nil {
		return models.BiweeklyStats{}, err
	}
	return period.BuildBiweeklyStats(current, summary, s.Goals), nil
}
