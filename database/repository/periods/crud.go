package periodsRepo

import (
	"context"
	"errors"
	"fmt"

	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSnapshotRepo) GetByPeriodID(ctx context.Context, periodID string) (*models.PeriodSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var snapshot models.PeriodSnapshot
	err := r.coll.FindOne(ctx, bson.M{"period_id": periodID}).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find period snapshot %s: %w", periodID, err)
	}
	return &snapshot, nil
}

func (r *mongoSnapshotRepo) Insert(ctx context.Context, snapshot models.PeriodSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, snapshot)
	if mongo.IsDuplicateKeyError(err) {
		return ErrSnapshotExists
	}
	if err != nil {
		return fmt.Errorf("insert period snapshot %s: %w", snapshot.PeriodID, err)
	}
	return nil
}

// List returns snapshots newest period first.
func (r *mongoSnapshotRepo) List(ctx context.Context, limit int64) ([]models.PeriodSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find period snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []models.PeriodSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("decode period snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *mongoSnapshotRepo) Delete(ctx context.Context, periodID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"period_id": periodID})
	if err != nil {
		return fmt.Errorf("delete period snapshot %s: %w", periodID, err)
	}
	if res.DeletedCount == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
