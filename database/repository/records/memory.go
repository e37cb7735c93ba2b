package recordsRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"kpitracker/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRecordRepo is an in-process DailyRecordRepository with the same
// archived-record rules as the Mongo implementation. Used by tests and
// dry runs.
type MemoryRecordRepo struct {
	mu     sync.Mutex
	byDate map[string]models.DailyRecord
	now    func() time.Time
}

func NewMemoryRecordRepo() *MemoryRecordRepo {
	return &MemoryRecordRepo{byDate: map[string]models.DailyRecord{}, now: time.Now}
}

// Seed stores records as given, overwriting any with the same date.
func (r *MemoryRecordRepo) Seed(records ...models.DailyRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if rec.ObjectID.IsZero() {
			rec.ObjectID = primitive.NewObjectID()
		}
		if rec.ID == "" {
			rec.ID = rec.ObjectID.Hex()
		}
		r.byDate[rec.Date] = clone(rec)
	}
}

func (r *MemoryRecordRepo) GetByDate(_ context.Context, date string) (*models.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byDate[date]
	if !ok {
		return nil, nil
	}
	out := clone(rec)
	return &out, nil
}

func (r *MemoryRecordRepo) List(_ context.Context, f models.RecordFilter) ([]models.DailyRecord, error) {
	out := r.collect(func(rec models.DailyRecord) bool {
		if f.StartDate != "" && rec.Date < f.StartDate {
			return false
		}
		if f.EndDate != "" && rec.Date > f.EndDate {
			return false
		}
		return f.Archived == nil || *f.Archived == rec.Archived
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRecordRepo) FindForPeriod(_ context.Context, p models.Period, includeArchived bool) ([]models.DailyRecord, error) {
	return r.collect(func(rec models.DailyRecord) bool {
		if !includeArchived && rec.Archived {
			return false
		}
		inRange := rec.Date >= p.StartDate && rec.Date <= p.EndDate
		return inRange || rec.PeriodID == p.ID
	}), nil
}

func (r *MemoryRecordRepo) FindUnassigned(_ context.Context) ([]models.DailyRecord, error) {
	return r.collect(func(rec models.DailyRecord) bool { return rec.PeriodID == "" }), nil
}

func (r *MemoryRecordRepo) Ensure(_ context.Context, date, periodID string) (*models.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byDate[date]
	if !ok {
		rec = r.newRecord(date, periodID)
		r.byDate[date] = rec
	}
	out := clone(rec)
	return &out, nil
}

func (r *MemoryRecordRepo) SetCalls(ctx context.Context, date, periodID string, calls int) (*models.DailyRecord, error) {
	return r.mutate(date, periodID, true, func(rec *models.DailyRecord) error {
		rec.CallsReceived = calls
		return nil
	})
}

func (r *MemoryRecordRepo) IncrementCalls(ctx context.Context, date, periodID string, delta int) (*models.DailyRecord, error) {
	return r.mutate(date, periodID, true, func(rec *models.DailyRecord) error {
		rec.CallsReceived += delta
		return nil
	})
}

func (r *MemoryRecordRepo) PushBooking(ctx context.Context, date, periodID string, b models.Booking) (*models.DailyRecord, error) {
	return r.mutate(date, periodID, true, func(rec *models.DailyRecord) error {
		rec.Bookings = append(rec.Bookings, b)
		return nil
	})
}

func (r *MemoryRecordRepo) PushSpin(ctx context.Context, date, periodID string, s models.Spin) (*models.DailyRecord, error) {
	return r.mutate(date, periodID, true, func(rec *models.DailyRecord) error {
		rec.Spins = append(rec.Spins, s)
		return nil
	})
}

func (r *MemoryRecordRepo) PushMisc(ctx context.Context, date, periodID string, m models.MiscIncome) (*models.DailyRecord, error) {
	return r.mutate(date, periodID, true, func(rec *models.DailyRecord) error {
		rec.MiscIncome = append(rec.MiscIncome, m)
		return nil
	})
}

func (r *MemoryRecordRepo) PullBooking(ctx context.Context, date, id string) (*models.DailyRecord, error) {
	return r.mutate(date, "", false, func(rec *models.DailyRecord) error {
		for i, b := range rec.Bookings {
			if b.ID == id {
				rec.Bookings = append(rec.Bookings[:i], rec.Bookings[i+1:]...)
				return nil
			}
		}
		return ErrSubRecordNotFound
	})
}

func (r *MemoryRecordRepo) PullSpin(ctx context.Context, date, id string) (*models.DailyRecord, error) {
	return r.mutate(date, "", false, func(rec *models.DailyRecord) error {
		for i, s := range rec.Spins {
			if s.ID == id {
				rec.Spins = append(rec.Spins[:i], rec.Spins[i+1:]...)
				return nil
			}
		}
		return ErrSubRecordNotFound
	})
}

func (r *MemoryRecordRepo) PullMisc(ctx context.Context, date, id string) (*models.DailyRecord, error) {
	return r.mutate(date, "", false, func(rec *models.DailyRecord) error {
		for i, m := range rec.MiscIncome {
			if m.ID == id {
				rec.MiscIncome = append(rec.MiscIncome[:i], rec.MiscIncome[i+1:]...)
				return nil
			}
		}
		return ErrSubRecordNotFound
	})
}

func (r *MemoryRecordRepo) MarkArchived(_ context.Context, p models.Period) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for date, rec := range r.byDate {
		inRange := rec.Date >= p.StartDate && rec.Date <= p.EndDate
		if !inRange && rec.PeriodID != p.ID {
			continue
		}
		if !rec.Archived || rec.PeriodID != p.ID {
			n++
		}
		rec.Archived = true
		rec.PeriodID = p.ID
		rec.UpdatedAt = r.now().UTC()
		r.byDate[date] = rec
	}
	return n, nil
}

func (r *MemoryRecordRepo) AssignPeriod(_ context.Context, ids []primitive.ObjectID, periodID string, archived bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for date, rec := range r.byDate {
		if !want[rec.ObjectID] {
			continue
		}
		n++
		rec.PeriodID = periodID
		rec.Archived = archived
		rec.UpdatedAt = r.now().UTC()
		r.byDate[date] = rec
	}
	return n, nil
}

func (r *MemoryRecordRepo) DeleteByDate(_ context.Context, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byDate[date]; !ok {
		return ErrRecordNotFound
	}
	delete(r.byDate, date)
	return nil
}

func (r *MemoryRecordRepo) EnsureIndexes() error { return nil }

// mutate applies fn to the unarchived record for date. create controls
// whether a missing record is inserted first.
func (r *MemoryRecordRepo) mutate(date, periodID string, create bool, fn func(*models.DailyRecord) error) (*models.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byDate[date]
	switch {
	case !ok && !create:
		return nil, ErrRecordNotFound
	case !ok:
		rec = r.newRecord(date, periodID)
	case rec.Archived:
		return nil, ErrRecordArchived
	}
	rec = clone(rec)
	if err := fn(&rec); err != nil {
		return nil, err
	}
	if rec.CallsReceived < 0 {
		rec.CallsReceived = 0
	}
	rec.UpdatedAt = r.now().UTC()
	r.byDate[date] = rec
	out := clone(rec)
	return &out, nil
}

func (r *MemoryRecordRepo) newRecord(date, periodID string) models.DailyRecord {
	now := r.now().UTC()
	oid := primitive.NewObjectID()
	return models.DailyRecord{
		ObjectID:   oid,
		ID:         uuid.New().String(),
		Date:       date,
		PeriodID:   periodID,
		Bookings:   []models.Booking{},
		Spins:      []models.Spin{},
		MiscIncome: []models.MiscIncome{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r *MemoryRecordRepo) collect(keep func(models.DailyRecord) bool) []models.DailyRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DailyRecord{}
	for _, rec := range r.byDate {
		if keep(rec) {
			out = append(out, clone(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func clone(rec models.DailyRecord) models.DailyRecord {
	rec.Bookings = append([]models.Booking{}, rec.Bookings...)
	rec.Spins = append([]models.Spin{}, rec.Spins...)
	rec.MiscIncome = append([]models.MiscIncome{}, rec.MiscIncome...)
	return rec
}
