package recordsRepo

import (
	"context"
	"errors"
	"fmt"

	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// GetByDate returns the record for date, or nil if none exists.
func (r *mongoRecordRepo) GetByDate(ctx context.Context, date string) (*models.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var stored storedRecord
	err := r.coll.FindOne(ctx, bson.M{"date": date}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find daily record %s: %w", date, err)
	}
	rec := normalize(stored)
	return &rec, nil
}

// List returns records matching filter, newest date first.
func (r *mongoRecordRepo) List(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	return r.find(ctx, listFilter(filter), opts)
}

// FindForPeriod returns every record inside the period's date range or
// already linked to its id.
func (r *mongoRecordRepo) FindForPeriod(ctx context.Context, period models.Period, includeArchived bool) ([]models.DailyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, periodFilter(period, includeArchived), opts)
}

// FindUnassigned returns records with an absent, empty or null period id.
func (r *mongoRecordRepo) FindUnassigned(ctx context.Context) ([]models.DailyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return r.find(ctx, unassignedFilter(), opts)
}

func (r *mongoRecordRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find daily records: %w", err)
	}
	defer cursor.Close(ctx)

	// Decode one document at a time so a malformed legacy record is
	// skipped instead of failing the whole read.
	records := []models.DailyRecord{}
	for cursor.Next(ctx) {
		rec, err := decodeRecord(cursor.Current)
		if err != nil {
			zap.L().Warn("Skipping undecodable daily record",
				zap.String("id", cursor.Current.Lookup("_id").String()), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily records: %w", err)
	}
	return records, nil
}

func decodeRecord(raw bson.Raw) (models.DailyRecord, error) {
	var stored storedRecord
	if err := bson.Unmarshal(raw, &stored); err != nil {
		return models.DailyRecord{}, err
	}
	return normalize(stored), nil
}
