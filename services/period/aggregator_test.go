package period

import (
	"context"
	"math/rand"
	"testing"

	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"
)

func TestAggregate_TwoRecordPeriod(t *testing.T) {
	repo := recordsRepo.NewMemoryRecordRepo()
	repo.Seed(
		models.DailyRecord{
			Date:          "2026-02-03",
			CallsReceived: 50,
			Bookings:      []models.Booking{{ID: "b1", Profit: 40}},
		},
		models.DailyRecord{
			Date:          "2026-02-04",
			CallsReceived: 60,
			Spins:         []models.Spin{{ID: "s1", Amount: 5}},
		},
		// Outside the period.
		models.DailyRecord{Date: "2026-02-15", CallsReceived: 999},
	)

	p, _ := ResolveDate("2026-02-01")
	s, err := NewAggregator(repo).Aggregate(context.Background(), p, false)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if s.Calls != 110 {
		t.Fatalf("expected 110 calls, got %d", s.Calls)
	}
	if s.Bookings != 1 {
		t.Fatalf("expected 1 booking, got %d", s.Bookings)
	}
	if s.Profit != 40.00 {
		t.Fatalf("expected profit 40.00, got %v", s.Profit)
	}
	if s.Spins != 5.00 {
		t.Fatalf("expected spins 5.00, got %v", s.Spins)
	}
	if s.AvgMegaSpin != 0 {
		t.Fatalf("expected avg mega 0, got %v", s.AvgMegaSpin)
	}
	if s.AvgRegularSpin != 5 {
		t.Fatalf("expected avg regular 5, got %v", s.AvgRegularSpin)
	}
	if s.Combined != 45 {
		t.Fatalf("expected combined 45, got %v", s.Combined)
	}
	if s.RecordCount != 2 {
		t.Fatalf("expected 2 records, got %d", s.RecordCount)
	}
}

func TestAggregate_PicksUpRecordsLinkedByPeriodID(t *testing.T) {
	repo := recordsRepo.NewMemoryRecordRepo()
	p, _ := ResolveDate("2026-02-01")
	repo.Seed(models.DailyRecord{Date: "2026-01-31", PeriodID: p.ID, CallsReceived: 7})

	s, err := NewAggregator(repo).Aggregate(context.Background(), p, true)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if s.Calls != 7 {
		t.Fatalf("expected the linked record to count, got %d calls", s.Calls)
	}
}

func TestAggregate_ExcludesArchivedForLiveReporting(t *testing.T) {
	repo := recordsRepo.NewMemoryRecordRepo()
	repo.Seed(
		models.DailyRecord{Date: "2026-02-02", CallsReceived: 10, Archived: true},
		models.DailyRecord{Date: "2026-02-03", CallsReceived: 5},
	)
	p, _ := ResolveDate("2026-02-01")
	agg := NewAggregator(repo)

	live, _ := agg.Aggregate(context.Background(), p, false)
	all, _ := agg.Aggregate(context.Background(), p, true)
	if live.Calls != 5 || all.Calls != 15 {
		t.Fatalf("expected live=5 all=15, got live=%d all=%d", live.Calls, all.Calls)
	}
}

func TestReduce_CommutativeOverRecordOrder(t *testing.T) {
	records := []models.DailyRecord{
		{Date: "2026-02-01", CallsReceived: 12, Bookings: []models.Booking{
			{Profit: 0.1, TimeSinceLast: 12, IsPrepaid: true},
			{Profit: 0.2, TimeSinceLast: 0},
		}},
		{Date: "2026-02-02", CallsReceived: 31, Spins: []models.Spin{
			{Amount: 5.55}, {Amount: 49.01, IsMega: true},
		}},
		{Date: "2026-02-03", CallsReceived: 7, Bookings: []models.Booking{
			{Profit: 19.99, TimeSinceLast: 45, HasRefundProtection: true},
		}, MiscIncome: []models.MiscIncome{{Amount: 3.3}}},
		{Date: "2026-02-04", Spins: []models.Spin{{Amount: 4.45}}, MiscIncome: []models.MiscIncome{{Amount: 0.7}}},
	}
	want := Reduce(records)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.DailyRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := Reduce(shuffled); got != want {
			t.Fatalf("shuffle %d changed the summary:\nwant %+v\ngot  %+v", i, want, got)
		}
	}

	if want.Profit != 20.29 {
		t.Fatalf("expected exact profit 20.29, got %v", want.Profit)
	}
	if want.Misc != 4 {
		t.Fatalf("expected misc 4, got %v", want.Misc)
	}
	if want.AvgTimeBetweenBookings != 28.5 {
		t.Fatalf("expected avg time 28.5 over gaps > 0, got %v", want.AvgTimeBetweenBookings)
	}
	if want.AvgRegularSpin != 5 || want.AvgMegaSpin != 49.01 {
		t.Fatalf("unexpected spin averages %+v", want)
	}
	if want.PrepaidCount != 1 || want.RefundProtectionCount != 1 {
		t.Fatalf("unexpected flag counts %+v", want)
	}
}

func TestReduce_Empty(t *testing.T) {
	s := Reduce(nil)
	if s != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummary_GoalsMet(t *testing.T) {
	g := models.DefaultGoals()
	s := Summary{Calls: 1710, Bookings: 269, Profit: 900, Spins: 100, Combined: 1000, Misc: 35}
	met := s.GoalsMet(g)
	if !met.Calls || met.Reservations || !met.Profit || met.Spins || met.Combined || !met.Misc {
		t.Fatalf("unexpected goals met %+v", met)
	}
}
