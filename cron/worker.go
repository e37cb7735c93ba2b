package cron

import (
	"context"
	"errors"
	"fmt"

	"kpitracker/services/period"
	"kpitracker/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PeriodWorker runs background period jobs from the Redis task queue.
type PeriodWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewPeriodWorker(redisOpt asynq.RedisClientOpt, archiver period.ArchiveService, migrator period.MigrationService, logger *zap.Logger) *PeriodWorker {
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("worker")
	srv := asynq.NewServer(redisOpt, asynq.Config{
		// Archival is serialized by the snapshot index; one worker is plenty.
		Concurrency: 1,
		Queues:      map[string]int{tasks.QueuePeriods: 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Period task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeMigrateLegacy, handleMigrateTask(migrator, logger))
	mux.HandleFunc(tasks.TypeClosePrevious, handleClosePreviousTask(archiver, logger))

	return &PeriodWorker{srv: srv, mux: mux, logger: logger}
}

// Start begins processing in the background.
func (w *PeriodWorker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start period worker: %w", err)
	}
	w.logger.Info("Period worker started")
	return nil
}

func (w *PeriodWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("Period worker stopped")
}

func handleMigrateTask(migrator period.MigrationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePayload(task)
		if err != nil {
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		res, err := migrator.MigrateLegacy(ctx)
		if err != nil {
			return err
		}
		logger.Info("Legacy migration finished",
			zap.String("requestedBy", p.RequestedBy),
			zap.Int("migrated", res.MigratedEntries),
			zap.Int("periodsCreated", res.PeriodsCreated),
			zap.Int("skipped", res.SkippedEntries))
		return nil
	}
}

func handleClosePreviousTask(archiver period.ArchiveService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParsePayload(task)
		if err != nil {
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		snapshot, err := archiver.ClosePrevious(ctx)
		switch {
		case errors.Is(err, period.ErrAlreadyArchived):
			logger.Info("Previous period already archived", zap.String("requestedBy", p.RequestedBy))
			return nil
		case err != nil:
			// ErrArchiveInProgress included: the retry will see the snapshot.
			return err
		}
		logger.Info("Previous period archived by task",
			zap.String("periodID", snapshot.PeriodID),
			zap.String("requestedBy", p.RequestedBy))
		return nil
	}
}
