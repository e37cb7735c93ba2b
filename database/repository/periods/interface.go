package periodsRepo

import (
	"context"
	"errors"
	"time"

	"kpitracker/models"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	collectionName = "period_logs"
	opTimeout      = 5 * time.Second
	defaultLimit   = 100
)

var (
	ErrSnapshotExists   = errors.New("period snapshot already exists")
	ErrSnapshotNotFound = errors.New("period snapshot not found")
)

// SnapshotRepository stores write-once period snapshots keyed by period id.
type SnapshotRepository interface {
	GetByPeriodID(ctx context.Context, periodID string) (*models.PeriodSnapshot, error)
	// Insert fails with ErrSnapshotExists when the period is already stored.
	Insert(ctx context.Context, snapshot models.PeriodSnapshot) error
	List(ctx context.Context, limit int64) ([]models.PeriodSnapshot, error)
	Delete(ctx context.Context, periodID string) error
	EnsureIndexes() error
}

type mongoSnapshotRepo struct {
	coll *mongo.Collection
}

// NewMongoSnapshotRepo returns a SnapshotRepository backed by MongoDB.
func NewMongoSnapshotRepo(db *mongo.Database) SnapshotRepository {
	return &mongoSnapshotRepo{
		coll: db.Collection(collectionName),
	}
}
