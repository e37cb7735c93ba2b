package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kpitracker/services/period"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const archiveJobName = "period_archive_check"

// SchedulerStatus is what the admin status endpoint reports.
type SchedulerStatus struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

type JobStatus struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Spec    string     `json:"spec"`
	NextRun *time.Time `json:"next_run"`
	LastRun *time.Time `json:"last_run,omitempty"`
	LastErr string     `json:"last_error,omitempty"`
}

// ArchiveScheduler runs the daily previous-period check.
type ArchiveScheduler struct {
	cron     *cron.Cron
	archiver period.ArchiveService
	logger   *zap.Logger
	spec     string
	timeout  time.Duration

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
	lastRun *time.Time
	lastErr string
}

// DailySpec is the five-field cron spec for hour:minute every day.
func DailySpec(hour, minute int) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid archive time %02d:%02d", hour, minute)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

func NewArchiveScheduler(archiver period.ArchiveService, loc *time.Location, hour, minute int, logger *zap.Logger) (*ArchiveScheduler, error) {
	spec, err := DailySpec(hour, minute)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("scheduler")
	s := &ArchiveScheduler{
		archiver: archiver,
		logger:   logger,
		spec:     spec,
		timeout:  2 * time.Minute,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(zapCronLogger{logger}),
			cron.WithChain(cron.Recover(zapCronLogger{logger}), cron.SkipIfStillRunning(zapCronLogger{logger})),
		),
	}
	id, err := s.cron.AddFunc(spec, s.runCheck)
	if err != nil {
		return nil, fmt.Errorf("schedule archive check: %w", err)
	}
	s.entryID = id
	return s, nil
}

func (s *ArchiveScheduler) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("Archive scheduler started", zap.String("spec", s.spec))
}

// Stop waits for a running check to finish.
func (s *ArchiveScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info("Archive scheduler stopped")
}

func (s *ArchiveScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := JobStatus{
		ID:      fmt.Sprintf("%d", s.entryID),
		Name:    archiveJobName,
		Spec:    s.spec,
		LastRun: s.lastRun,
		LastErr: s.lastErr,
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			job.NextRun = &next
		}
	}
	return SchedulerStatus{Running: s.running, Jobs: []JobStatus{job}}
}

func (s *ArchiveScheduler) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := s.archiver.EnsurePreviousClosed(ctx)

	s.mu.Lock()
	s.lastRun = &start
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()

	switch {
	case err != nil:
		s.logger.Error("Scheduled archive check failed", zap.Error(err))
	case snapshot == nil:
		s.logger.Debug("Scheduled archive check: nothing to close")
	default:
		s.logger.Info("Scheduled archive closed period",
			zap.String("periodID", snapshot.PeriodID),
			zap.Int("entries", snapshot.EntryCount))
	}
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	l *zap.Logger
}

func (z zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Sugar().Debugw(msg, keysAndValues...)
}

func (z zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	z.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
