package periodsRepo

import (
	"context"
	"sort"
	"sync"

	"kpitracker/models"
)

// MemorySnapshotRepo is an in-process SnapshotRepository. Insert is
// insert-if-absent, like the unique period_id index.
type MemorySnapshotRepo struct {
	mu       sync.Mutex
	byPeriod map[string]models.PeriodSnapshot
}

func NewMemorySnapshotRepo() *MemorySnapshotRepo {
	return &MemorySnapshotRepo{byPeriod: map[string]models.PeriodSnapshot{}}
}

func (r *MemorySnapshotRepo) GetByPeriodID(_ context.Context, periodID string) (*models.PeriodSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byPeriod[periodID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemorySnapshotRepo) Insert(_ context.Context, snapshot models.PeriodSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPeriod[snapshot.PeriodID]; ok {
		return ErrSnapshotExists
	}
	r.byPeriod[snapshot.PeriodID] = snapshot
	return nil
}

func (r *MemorySnapshotRepo) List(_ context.Context, limit int64) ([]models.PeriodSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PeriodSnapshot, 0, len(r.byPeriod))
	for _, s := range r.byPeriod {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	if limit <= 0 {
		limit = defaultLimit
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemorySnapshotRepo) Delete(_ context.Context, periodID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPeriod[periodID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(r.byPeriod, periodID)
	return nil
}

func (r *MemorySnapshotRepo) EnsureIndexes() error { return nil }
