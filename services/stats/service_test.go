package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"
	"kpitracker/services/period"

	"go.uber.org/zap"
)

func newStats(t *testing.T, today string) (*DefaultStatsService, *recordsRepo.MemoryRecordRepo) {
	t.Helper()
	d, err := time.Parse(period.DateLayout, today)
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}
	cal := period.NewCalendar(time.UTC, func() time.Time { return d })
	records := recordsRepo.NewMemoryRecordRepo()
	archiver := period.NewArchiveManager(cal, records, periodsRepo.NewMemorySnapshotRepo(), models.DefaultGoals(), nil, zap.NewNop())
	return NewStatsService(cal, records, archiver, models.DefaultGoals(), zap.NewNop()), records
}

func TestDaily(t *testing.T) {
	svc, records := newStats(t, "2026-02-10")
	records.Seed(models.DailyRecord{
		Date:          "2026-02-10",
		CallsReceived: 142,
		Bookings: []models.Booking{
			{Profit: 40, TimeSinceLast: 20},
			{Profit: 32.08, TimeSinceLast: 30},
		},
	})

	st, err := svc.Daily(context.Background(), "2026-02-10")
	if err != nil {
		t.Fatalf("Daily error: %v", err)
	}
	if st.Calls.Status != models.StatusOnTrack || st.Calls.ProgressPercent != 100 {
		t.Fatalf("unexpected calls stat %+v", st.Calls)
	}
	if st.Profit.Total != 72.08 || !st.Profit.OnTrack {
		t.Fatalf("unexpected profit stat %+v", st.Profit)
	}
	if st.AvgTime.Average != 25 || !st.AvgTime.OnTrack {
		t.Fatalf("unexpected avg time %+v", st.AvgTime)
	}
}

func TestDaily_MissingRecordIsZero(t *testing.T) {
	svc, _ := newStats(t, "2026-02-10")
	st, err := svc.Daily(context.Background(), "2026-02-09")
	if err != nil {
		t.Fatalf("Daily error: %v", err)
	}
	if st.Calls.Total != 0 || st.Calls.Status != models.StatusBehind {
		t.Fatalf("unexpected stats %+v", st.Calls)
	}
	if _, err := svc.Daily(context.Background(), "yesterday"); !errors.Is(err, period.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestCurrentPeriod_IgnoresArchivedAndOtherPeriods(t *testing.T) {
	svc, records := newStats(t, "2026-02-20")
	records.Seed(
		models.DailyRecord{Date: "2026-02-16", CallsReceived: 100, Spins: []models.Spin{{Amount: 5}, {Amount: 49, IsMega: true}}},
		models.DailyRecord{Date: "2026-02-17", CallsReceived: 50, Archived: true},
		models.DailyRecord{Date: "2026-02-10", CallsReceived: 999},
	)

	st, err := svc.CurrentPeriod(context.Background())
	if err != nil {
		t.Fatalf("CurrentPeriod error: %v", err)
	}
	if st.Period != "biweekly" || st.PeriodID != "2026-02-15_to_2026-02-28" {
		t.Fatalf("unexpected header %+v", st)
	}
	if st.Calls.Total != 100 || st.DaysTracked != 1 {
		t.Fatalf("expected only the open record, got calls=%v days=%d", st.Calls.Total, st.DaysTracked)
	}
	if st.SpinAverages.Regular != 5 || st.SpinAverages.Mega != 49 || st.Combined.Total != 54 {
		t.Fatalf("unexpected spin figures %+v combined=%v", st.SpinAverages, st.Combined.Total)
	}
}
