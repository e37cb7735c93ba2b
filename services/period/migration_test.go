package period

import (
	"context"
	"testing"
	"time"

	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"

	"go.uber.org/zap"
)

func newMigrator(t *testing.T, today string) (*Migrator, *recordsRepo.MemoryRecordRepo, *periodsRepo.MemorySnapshotRepo) {
	t.Helper()
	records := recordsRepo.NewMemoryRecordRepo()
	store := periodsRepo.NewMemorySnapshotRepo()
	cal := NewCalendar(time.UTC, clockAt(t, today))
	archiver := NewArchiveManager(cal, records, store, models.DefaultGoals(), nil, zap.NewNop())
	return NewMigrator(cal, records, archiver, zap.NewNop()), records, store
}

func TestMigrateLegacy_ArchivesClosedAndKeepsCurrentOpen(t *testing.T) {
	m, records, store := newMigrator(t, "2026-02-20")
	records.Seed(
		models.DailyRecord{Date: "2026-02-05", CallsReceived: 40},
		models.DailyRecord{Date: "2026-02-20", CallsReceived: 3},
	)
	ctx := context.Background()

	res, err := m.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy error: %v", err)
	}
	if res.MigratedEntries != 2 || res.PeriodsCreated != 1 || res.PeriodsFound != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	closed, _ := records.GetByDate(ctx, "2026-02-05")
	if !closed.Archived || closed.PeriodID != "2026-02-01_to_2026-02-14" {
		t.Fatalf("closed-period record not archived: %+v", closed)
	}
	snap, _ := store.GetByPeriodID(ctx, "2026-02-01_to_2026-02-14")
	if snap == nil || snap.Totals.Calls != 40 {
		t.Fatalf("expected snapshot with 40 calls, got %+v", snap)
	}

	today, _ := records.GetByDate(ctx, "2026-02-20")
	if today.Archived || today.PeriodID != "2026-02-15_to_2026-02-28" {
		t.Fatalf("current record must be assigned but open: %+v", today)
	}
	if s, _ := store.GetByPeriodID(ctx, today.PeriodID); s != nil {
		t.Fatalf("current period must not be archived")
	}
}

func TestMigrateLegacy_RepeatSafe(t *testing.T) {
	m, records, store := newMigrator(t, "2026-02-20")
	records.Seed(
		models.DailyRecord{Date: "2026-01-03"},
		models.DailyRecord{Date: "2026-01-20"},
		models.DailyRecord{Date: "2026-02-16"},
	)
	ctx := context.Background()

	if _, err := m.MigrateLegacy(ctx); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	before, _ := store.List(ctx, 0)

	res, err := m.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if res.MigratedEntries != 0 || res.PeriodsCreated != 0 || res.Message != noLegacyMessage {
		t.Fatalf("second run should find nothing, got %+v", res)
	}
	after, _ := store.List(ctx, 0)
	if len(before) != 2 || len(after) != len(before) {
		t.Fatalf("snapshot count changed: before=%d after=%d", len(before), len(after))
	}
}

func TestMigrateLegacy_ExistingSnapshotIsReused(t *testing.T) {
	m, records, store := newMigrator(t, "2026-02-20")
	ctx := context.Background()
	p := mustPeriod(t, "2026-02-01")
	if err := store.Insert(ctx, models.PeriodSnapshot{ID: "old", PeriodID: p.ID}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	records.Seed(models.DailyRecord{Date: "2026-02-03"})

	res, err := m.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy error: %v", err)
	}
	if res.PeriodsCreated != 0 || res.MigratedEntries != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	rec, _ := records.GetByDate(ctx, "2026-02-03")
	if !rec.Archived || rec.PeriodID != p.ID {
		t.Fatalf("record should be linked and frozen, got %+v", rec)
	}
}

func TestMigrateLegacy_SkipsMalformedDates(t *testing.T) {
	m, records, _ := newMigrator(t, "2026-02-20")
	records.Seed(
		models.DailyRecord{Date: "not-a-date"},
		models.DailyRecord{Date: "2026-02-18"},
	)

	res, err := m.MigrateLegacy(context.Background())
	if err != nil {
		t.Fatalf("MigrateLegacy error: %v", err)
	}
	if res.SkippedEntries != 1 || res.MigratedEntries != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}
