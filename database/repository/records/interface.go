package recordsRepo

import (
	"context"
	"errors"
	"time"

	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	collectionName = "daily_entries"
	opTimeout      = 5 * time.Second
	defaultLimit   = 1000
)

var (
	ErrRecordNotFound    = errors.New("daily record not found")
	ErrRecordArchived    = errors.New("daily record is archived")
	ErrSubRecordNotFound = errors.New("sub-record not found")
)

// DailyRecordRepository stores one activity document per calendar date.
// Every read is normalized; every mutation skips archived records.
type DailyRecordRepository interface {
	GetByDate(ctx context.Context, date string) (*models.DailyRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error)
	FindForPeriod(ctx context.Context, period models.Period, includeArchived bool) ([]models.DailyRecord, error)
	FindUnassigned(ctx context.Context) ([]models.DailyRecord, error)

	Ensure(ctx context.Context, date, periodID string) (*models.DailyRecord, error)
	SetCalls(ctx context.Context, date, periodID string, calls int) (*models.DailyRecord, error)
	IncrementCalls(ctx context.Context, date, periodID string, delta int) (*models.DailyRecord, error)
	PushBooking(ctx context.Context, date, periodID string, booking models.Booking) (*models.DailyRecord, error)
	PushSpin(ctx context.Context, date, periodID string, spin models.Spin) (*models.DailyRecord, error)
	PushMisc(ctx context.Context, date, periodID string, misc models.MiscIncome) (*models.DailyRecord, error)
	PullBooking(ctx context.Context, date, bookingID string) (*models.DailyRecord, error)
	PullSpin(ctx context.Context, date, spinID string) (*models.DailyRecord, error)
	PullMisc(ctx context.Context, date, miscID string) (*models.DailyRecord, error)

	MarkArchived(ctx context.Context, period models.Period) (int64, error)
	AssignPeriod(ctx context.Context, ids []primitive.ObjectID, periodID string, archived bool) (int64, error)
	DeleteByDate(ctx context.Context, date string) error

	EnsureIndexes() error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a DailyRecordRepository backed by MongoDB.
func NewMongoRecordRepo(db *mongo.Database) DailyRecordRepository {
	return &mongoRecordRepo{
		coll: db.Collection(collectionName),
	}
}
