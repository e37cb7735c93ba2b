package recordsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kpitracker/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ensure returns the record for date, creating an empty one if needed.
// Archived records are returned as-is.
func (r *mongoRecordRepo) Ensure(ctx context.Context, date, periodID string) (*models.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$setOnInsert": newRecordTemplate(date, periodID, time.Now().UTC(), nil)}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored storedRecord
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"date": date}, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("ensure daily record %s: %w", date, err)
	}
	rec := normalize(stored)
	return &rec, nil
}

func (r *mongoRecordRepo) SetCalls(ctx context.Context, date, periodID string, calls int) (*models.DailyRecord, error) {
	return r.upsert(ctx, date, periodID, bson.M{
		"$set": bson.M{"calls_received": calls},
	})
}

func (r *mongoRecordRepo) IncrementCalls(ctx context.Context, date, periodID string, delta int) (*models.DailyRecord, error) {
	return r.upsert(ctx, date, periodID, bson.M{
		"$inc": bson.M{"calls_received": delta},
	})
}

func (r *mongoRecordRepo) PushBooking(ctx context.Context, date, periodID string, booking models.Booking) (*models.DailyRecord, error) {
	return r.upsert(ctx, date, periodID, bson.M{"$push": bson.M{"bookings": booking}})
}

func (r *mongoRecordRepo) PushSpin(ctx context.Context, date, periodID string, spin models.Spin) (*models.DailyRecord, error) {
	return r.upsert(ctx, date, periodID, bson.M{"$push": bson.M{"spins": spin}})
}

func (r *mongoRecordRepo) PushMisc(ctx context.Context, date, periodID string, misc models.MiscIncome) (*models.DailyRecord, error) {
	return r.upsert(ctx, date, periodID, bson.M{"$push": bson.M{"misc_income": misc}})
}

func (r *mongoRecordRepo) PullBooking(ctx context.Context, date, bookingID string) (*models.DailyRecord, error) {
	return r.pull(ctx, date, "bookings", bookingID)
}

func (r *mongoRecordRepo) PullSpin(ctx context.Context, date, spinID string) (*models.DailyRecord, error) {
	return r.pull(ctx, date, "spins", spinID)
}

func (r *mongoRecordRepo) PullMisc(ctx context.Context, date, miscID string) (*models.DailyRecord, error) {
	return r.pull(ctx, date, "misc_income", miscID)
}

// MarkArchived freezes every record of the period and backfills its id.
// Records already frozen under the id are left alone, so a rerun reports 0.
func (r *mongoRecordRepo) MarkArchived(ctx context.Context, period models.Period) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := periodFilter(period, true)
	filter["$nor"] = bson.A{bson.M{"archived": true, "period_id": period.ID}}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"archived":   true,
			"period_id":  period.ID,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("mark period %s archived: %w", period.ID, err)
	}
	return res.ModifiedCount, nil
}

// AssignPeriod backfills the period id and archived flag on the given records.
func (r *mongoRecordRepo) AssignPeriod(ctx context.Context, ids []primitive.ObjectID, periodID string, archived bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{
		"$set": bson.M{
			"period_id":  periodID,
			"archived":   archived,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("assign period %s: %w", periodID, err)
	}
	return res.MatchedCount, nil
}

func (r *mongoRecordRepo) DeleteByDate(ctx context.Context, date string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"date": date})
	if err != nil {
		return fmt.Errorf("delete daily record %s: %w", date, err)
	}
	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// upsert applies update to the unarchived record for date, creating it when
// absent. An archived record fails the filter, so the implied insert hits
// the unique date index and is reported as ErrRecordArchived.
func (r *mongoRecordRepo) upsert(ctx context.Context, date, periodID string, update bson.M) (*models.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	touched := touchedFields(update)
	touched["updated_at"] = true

	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = now
	update["$set"] = set
	update["$setOnInsert"] = newRecordTemplate(date, periodID, now, touched)

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored storedRecord
	err := r.coll.FindOneAndUpdate(ctx, mutableFilter(date), update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrRecordArchived
	}
	if err != nil {
		return nil, fmt.Errorf("update daily record %s: %w", date, err)
	}
	rec := normalize(stored)
	return &rec, nil
}

func (r *mongoRecordRepo) pull(ctx context.Context, date, field, id string) (*models.DailyRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := mutableFilter(date)
	filter[field+".id"] = id
	update := bson.M{
		"$pull": bson.M{field: bson.M{"id": id}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stored storedRecord
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.explainMiss(ctx, date)
	}
	if err != nil {
		return nil, fmt.Errorf("pull %s from daily record %s: %w", field, date, err)
	}
	rec := normalize(stored)
	return &rec, nil
}

// explainMiss tells apart a missing record, an archived one and a missing
// sub-record after a filtered update matched nothing.
func (r *mongoRecordRepo) explainMiss(ctx context.Context, date string) error {
	rec, err := r.GetByDate(ctx, date)
	if err != nil {
		return err
	}
	switch {
	case rec == nil:
		return ErrRecordNotFound
	case rec.Archived:
		return ErrRecordArchived
	default:
		return ErrSubRecordNotFound
	}
}

// newRecordTemplate is the $setOnInsert document for a new day, minus any
// field the accompanying update already writes.
func newRecordTemplate(date, periodID string, now time.Time, skip map[string]bool) bson.M {
	doc := bson.M{
		"id":             uuid.New().String(),
		"date":           date,
		"period_id":      periodID,
		"archived":       false,
		"calls_received": 0,
		"bookings":       bson.A{},
		"spins":          bson.A{},
		"misc_income":    bson.A{},
		"created_at":     now,
		"updated_at":     now,
	}
	for field := range skip {
		delete(doc, field)
	}
	return doc
}

func touchedFields(update bson.M) map[string]bool {
	touched := map[string]bool{}
	for _, op := range update {
		if fields, ok := op.(bson.M); ok {
			for field := range fields {
				touched[field] = true
			}
		}
	}
	return touched
}
