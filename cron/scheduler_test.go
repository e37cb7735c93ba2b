package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"kpitracker/models"
	"kpitracker/services/period"
	"kpitracker/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// stubArchiver implements period.ArchiveService with canned results.
type stubArchiver struct {
	period.ArchiveService
	ensureCalls int
	closeErr    error
	snapshot    *models.PeriodSnapshot
}

func (s *stubArchiver) EnsurePreviousClosed(context.Context) (*models.PeriodSnapshot, error) {
	s.ensureCalls++
	return s.snapshot, nil
}

func (s *stubArchiver) ClosePrevious(context.Context) (*models.PeriodSnapshot, error) {
	if s.closeErr != nil {
		return nil, s.closeErr
	}
	return s.snapshot, nil
}

type stubMigrator struct {
	calls int
	err   error
}

func (m *stubMigrator) MigrateLegacy(context.Context) (models.MigrationResult, error) {
	m.calls++
	return models.MigrationResult{MigratedEntries: 3}, m.err
}

func TestDailySpec(t *testing.T) {
	spec, err := DailySpec(0, 5)
	if err != nil || spec != "5 0 * * *" {
		t.Fatalf("DailySpec(0, 5) expected \"5 0 * * *\", got %q, %v", spec, err)
	}
	for _, bad := range [][2]int{{24, 0}, {-1, 0}, {0, 60}} {
		if _, err := DailySpec(bad[0], bad[1]); err == nil {
			t.Fatalf("DailySpec(%d, %d) expected error", bad[0], bad[1])
		}
	}
}

func TestArchiveScheduler_StatusAndRun(t *testing.T) {
	arch := &stubArchiver{snapshot: &models.PeriodSnapshot{PeriodID: "2026-02-01_to_2026-02-14"}}
	s, err := NewArchiveScheduler(arch, time.UTC, 0, 5, zap.NewNop())
	if err != nil {
		t.Fatalf("NewArchiveScheduler error: %v", err)
	}

	if st := s.Status(); st.Running || st.Jobs[0].NextRun != nil {
		t.Fatalf("stopped scheduler should have no next run, got %+v", st)
	}

	s.Start()
	st := s.Status()
	s.Stop()
	if !st.Running || st.Jobs[0].NextRun == nil {
		t.Fatalf("running scheduler should report next run, got %+v", st)
	}
	next := st.Jobs[0].NextRun.In(time.UTC)
	if next.Hour() != 0 || next.Minute() != 5 {
		t.Fatalf("expected next run at 00:05, got %s", next)
	}

	s.runCheck()
	if arch.ensureCalls != 1 {
		t.Fatalf("expected one EnsurePreviousClosed call, got %d", arch.ensureCalls)
	}
	if st := s.Status(); st.Jobs[0].LastRun == nil || st.Jobs[0].LastErr != "" {
		t.Fatalf("expected a clean last run, got %+v", st.Jobs[0])
	}
}

func TestNewArchiveScheduler_RejectsBadTime(t *testing.T) {
	if _, err := NewArchiveScheduler(&stubArchiver{}, time.UTC, 25, 0, zap.NewNop()); err == nil {
		t.Fatalf("expected error for hour 25")
	}
}

func TestHandleClosePreviousTask(t *testing.T) {
	task, _, _ := tasks.NewClosePreviousTask(tasks.TriggerPayload{RequestedBy: "test"})

	cases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"archived now", nil, false},
		{"already archived", &period.AlreadyArchivedError{PeriodID: "x"}, false},
		{"lock held", period.ErrArchiveInProgress, true},
	}
	for _, tc := range cases {
		arch := &stubArchiver{closeErr: tc.err, snapshot: &models.PeriodSnapshot{PeriodID: "x"}}
		err := handleClosePreviousTask(arch, zap.NewNop())(context.Background(), task)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: wantErr=%v, got %v", tc.name, tc.wantErr, err)
		}
	}

	bad := asynq.NewTask(tasks.TypeClosePrevious, []byte("not json"))
	err := handleClosePreviousTask(&stubArchiver{}, zap.NewNop())(context.Background(), bad)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("bad payload should skip retry, got %v", err)
	}
}

func TestHandleMigrateTask(t *testing.T) {
	task, _, _ := tasks.NewMigrateTask(tasks.TriggerPayload{RequestedBy: "test"})

	m := &stubMigrator{}
	if err := handleMigrateTask(m, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("migrate task error: %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("expected one migration, got %d", m.calls)
	}

	failing := &stubMigrator{err: errors.New("mongo down")}
	if err := handleMigrateTask(failing, zap.NewNop())(context.Background(), task); err == nil {
		t.Fatalf("expected migration error to propagate for retry")
	}
}
