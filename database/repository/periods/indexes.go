package periodsRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the period snapshot indexes. The unique period_id
// index is the guard that lets only one concurrent archival win.
func (r *mongoSnapshotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "period_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_period_id"),
		},
		{
			Keys:    bson.D{{Key: "start_date", Value: -1}},
			Options: options.Index().SetName("start_date_desc_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create period snapshot indexes: %w", err)
	}
	return nil
}
