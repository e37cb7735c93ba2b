package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the daily records collection. The
// unique date index is what turns a write against an archived day into a
// rejected upsert.
func (r *mongoRecordRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_date"),
		},
		{
			Keys:    bson.D{{Key: "period_id", Value: 1}},
			Options: options.Index().SetName("period_idx"),
		},
		{
			Keys:    bson.D{{Key: "archived", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("archived_date_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create daily record indexes: %w", err)
	}
	return nil
}
