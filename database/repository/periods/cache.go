package periodsRepo

import (
	"context"
	"encoding/json"
	"time"

	"kpitracker/models"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "kpi:snapshot:"

// Cache is the byte store behind CachedSnapshotRepo. A miss reports
// ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// cachedSnapshotRepo serves single snapshot reads from Cache. Snapshots are
// write-once, so only Delete has to invalidate. Cache failures fall through
// to the wrapped repository.
type cachedSnapshotRepo struct {
	SnapshotRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSnapshotRepo wraps inner with a read-through cache.
func NewCachedSnapshotRepo(inner SnapshotRepository, cache Cache, ttl time.Duration, logger *zap.Logger) SnapshotRepository {
	if logger == nil {
		logger = zap.L()
	}
	return &cachedSnapshotRepo{SnapshotRepository: inner, cache: cache, ttl: ttl, logger: logger.Named("snapshot-cache")}
}

func cacheKey(periodID string) string {
	return cacheKeyPrefix + periodID
}

func (r *cachedSnapshotRepo) GetByPeriodID(ctx context.Context, periodID string) (*models.PeriodSnapshot, error) {
	key := cacheKey(periodID)
	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("Snapshot cache read failed", zap.String("periodID", periodID), zap.Error(err))
	} else if ok {
		var snapshot models.PeriodSnapshot
		if err := json.Unmarshal(raw, &snapshot); err == nil {
			return &snapshot, nil
		}
		r.logger.Warn("Dropping undecodable cached snapshot", zap.String("periodID", periodID))
		_ = r.cache.Del(ctx, key)
	}

	snapshot, err := r.SnapshotRepository.GetByPeriodID(ctx, periodID)
	if err != nil || snapshot == nil {
		return snapshot, err
	}
	r.store(ctx, *snapshot)
	return snapshot, nil
}

func (r *cachedSnapshotRepo) Insert(ctx context.Context, snapshot models.PeriodSnapshot) error {
	if err := r.SnapshotRepository.Insert(ctx, snapshot); err != nil {
		return err
	}
	r.store(ctx, snapshot)
	return nil
}

func (r *cachedSnapshotRepo) Delete(ctx context.Context, periodID string) error {
	if err := r.cache.Del(ctx, cacheKey(periodID)); err != nil {
		r.logger.Warn("Snapshot cache invalidation failed", zap.String("periodID", periodID), zap.Error(err))
	}
	return r.SnapshotRepository.Delete(ctx, periodID)
}

func (r *cachedSnapshotRepo) store(ctx context.Context, snapshot models.PeriodSnapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(snapshot.PeriodID), raw, r.ttl); err != nil {
		r.logger.Warn("Snapshot cache write failed", zap.String("periodID", snapshot.PeriodID), zap.Error(err))
	}
}
