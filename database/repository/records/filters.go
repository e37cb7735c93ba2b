package recordsRepo

import (
	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson"
)

// periodFilter matches records by date range OR period id, so records
// written before period ids existed are still picked up.
func periodFilter(period models.Period, includeArchived bool) bson.M {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"date": bson.M{"$gte": period.StartDate, "$lte": period.EndDate}},
			bson.M{"period_id": period.ID},
		},
	}
	if !includeArchived {
		filter["archived"] = bson.M{"$ne": true}
	}
	return filter
}

func unassignedFilter() bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"period_id": bson.M{"$exists": false}},
			bson.M{"period_id": ""},
			bson.M{"period_id": nil},
		},
	}
}

// mutableFilter matches the record for date only while it is not archived.
func mutableFilter(date string) bson.M {
	return bson.M{"date": date, "archived": bson.M{"$ne": true}}
}

func listFilter(f models.RecordFilter) bson.M {
	filter := bson.M{}
	dateRange := bson.M{}
	if f.StartDate != "" {
		dateRange["$gte"] = f.StartDate
	}
	if f.EndDate != "" {
		dateRange["$lte"] = f.EndDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	if f.Archived != nil {
		if *f.Archived {
			filter["archived"] = true
		} else {
			filter["archived"] = bson.M{"$ne": true}
		}
	}
	return filter
}
